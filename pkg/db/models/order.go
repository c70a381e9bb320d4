package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/evdock/evdock-backend/pkg/enums"
)

// Order is a dealer's request for vehicles, progressed through the
// pending → pending_allocation → allocated → shipped → delivered lifecycle.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	DealerID        uuid.UUID           `gorm:"column:dealer_id;type:uuid;not null;index"`
	DealerName      string              `gorm:"column:dealer_name;not null"`
	VehicleModel    string              `gorm:"column:vehicle_model;not null"`
	Color           string              `gorm:"column:color;not null"`
	Quantity        int                 `gorm:"column:quantity;not null"`
	Status          enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	Priority        enums.OrderPriority `gorm:"column:priority;type:order_priority;not null;default:'medium'"`
	TotalValueCents int64               `gorm:"column:total_value_cents;not null"`
	OrderDate       time.Time           `gorm:"column:order_date;not null"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
