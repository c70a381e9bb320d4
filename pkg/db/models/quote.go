package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/evdock/evdock-backend/pkg/enums"
	"github.com/evdock/evdock-backend/pkg/types"
)

// Quote is a priced quotation for a dealer buying a quantity of one vehicle.
type Quote struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	DealerID       uuid.UUID              `gorm:"column:dealer_id;type:uuid;not null;index"`
	VehicleID      uuid.UUID              `gorm:"column:vehicle_id;type:uuid;not null"`
	VehicleModel   string                 `gorm:"column:vehicle_model;not null"`
	Color          string                 `gorm:"column:color;not null"`
	Quantity       int                    `gorm:"column:quantity;not null"`
	UnitPriceCents int64                  `gorm:"column:unit_price_cents;not null"`
	SubtotalCents  int64                  `gorm:"column:subtotal_cents;not null"`
	DiscountCents  int64                  `gorm:"column:discount_cents;not null;default:0"`
	TotalCents     int64                  `gorm:"column:total_cents;not null"`
	PromotionID    *uuid.UUID             `gorm:"column:promotion_id;type:uuid"`
	Discounts      types.AppliedDiscounts `gorm:"column:discounts;type:applied_discount[]"`
	Status         enums.QuoteStatus      `gorm:"column:status;type:quote_status;not null;default:'issued'"`
	ValidUntil     time.Time              `gorm:"column:valid_until;not null"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
