package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/evdock/evdock-backend/pkg/enums"
)

// Dealer represents a dealership in the network.
type Dealer struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code          string             `gorm:"column:code;not null;uniqueIndex"`
	Name          string             `gorm:"column:name;not null"`
	Region        string             `gorm:"column:region;not null"`
	Address       *string            `gorm:"column:address"`
	Phone         *string            `gorm:"column:phone"`
	Email         *string            `gorm:"column:email"`
	Status        enums.DealerStatus `gorm:"column:status;type:dealer_status;not null;default:'active'"`
	Tier          enums.DealerTier   `gorm:"column:tier;type:dealer_tier;not null;default:'standard'"`
	CreditLimitCents int64           `gorm:"column:credit_limit_cents;not null;default:0"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
