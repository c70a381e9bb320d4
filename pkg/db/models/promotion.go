package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/evdock/evdock-backend/pkg/db/types"
	"github.com/evdock/evdock-backend/pkg/enums"
)

// Promotion is a discount campaign applied when quoting vehicles.
// PercentOff is used for percent campaigns, AmountOffCents for fixed ones.
// An empty DealerIDs list means the campaign applies network-wide.
type Promotion struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name           string                `gorm:"column:name;not null"`
	Description    *string               `gorm:"column:description"`
	Kind           enums.PromotionKind   `gorm:"column:kind;type:promotion_kind;not null"`
	PercentOff     decimal.Decimal       `gorm:"column:percent_off;type:numeric(5,2);not null;default:0"`
	AmountOffCents int64                 `gorm:"column:amount_off_cents;not null;default:0"`
	VehicleModel   *string               `gorm:"column:vehicle_model"`
	DealerTier     *enums.DealerTier     `gorm:"column:dealer_tier;type:dealer_tier"`
	DealerIDs      dbtypes.UUIDArray     `gorm:"column:dealer_ids;type:uuid[];not null;default:'{}'"`
	Status         enums.PromotionStatus `gorm:"column:status;type:promotion_status;not null;default:'draft'"`
	StartsAt       time.Time             `gorm:"column:starts_at;not null"`
	EndsAt         time.Time             `gorm:"column:ends_at;not null"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
