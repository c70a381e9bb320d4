package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/evdock/evdock-backend/pkg/enums"
)

// Allocation commits a specific warehouse's inventory to fulfill an order.
// Its existence implies inventory was decremented by Quantity when it was
// created. The order survives independently of its allocation.
type Allocation struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OrderID           uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	DealerID          uuid.UUID              `gorm:"column:dealer_id;type:uuid;not null"`
	VehicleModel      string                 `gorm:"column:vehicle_model;not null"`
	Color             string                 `gorm:"column:color;not null"`
	Quantity          int                    `gorm:"column:quantity;not null"`
	WarehouseLocation string                 `gorm:"column:warehouse_location;not null"`
	Status            enums.AllocationStatus `gorm:"column:status;type:allocation_status;not null;default:'allocated'"`
	EstimatedDelivery *time.Time             `gorm:"column:estimated_delivery"`
	AllocatedAt       time.Time              `gorm:"column:allocated_at;not null"`
	ShippedAt         *time.Time             `gorm:"column:shipped_at"`
	DeliveredAt       *time.Time             `gorm:"column:delivered_at"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// AllocationIntent is the write-ahead record guarding the allocation saga.
// It is inserted with status reducing before any inventory change, and moved
// to a terminal status for every outcome so a crash between the reduce and
// the allocation insert is detectable and reconcilable.
type AllocationIntent struct {
	ID                uuid.UUID                    `gorm:"column:id;type:uuid;primaryKey"`
	OrderID           uuid.UUID                    `gorm:"column:order_id;type:uuid;not null;index"`
	VehicleModel      string                       `gorm:"column:vehicle_model;not null"`
	Color             string                       `gorm:"column:color;not null"`
	WarehouseLocation string                       `gorm:"column:warehouse_location;not null"`
	Quantity          int                          `gorm:"column:quantity;not null"`
	Status            enums.AllocationIntentStatus `gorm:"column:status;type:allocation_intent_status;not null;default:'reducing'"`
	AllocationID      *uuid.UUID                   `gorm:"column:allocation_id;type:uuid"`
	LastError         *string                      `gorm:"column:last_error"`
	AttemptCount      int                          `gorm:"column:attempt_count;not null;default:0"`
	CreatedAt         time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}
