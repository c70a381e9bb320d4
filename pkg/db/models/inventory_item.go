package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/evdock/evdock-backend/pkg/enums"
)

// InventoryItem tracks the quantity on hand for one
// (vehicle model, color, warehouse) tuple. Status is always derived from
// Quantity; repositories must recompute it on every write.
type InventoryItem struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	VehicleModel      string                `gorm:"column:vehicle_model;not null;uniqueIndex:ux_inventory_tuple"`
	Color             string                `gorm:"column:color;not null;uniqueIndex:ux_inventory_tuple"`
	WarehouseLocation string                `gorm:"column:warehouse_location;not null;uniqueIndex:ux_inventory_tuple"`
	Quantity          int                   `gorm:"column:quantity;not null;default:0"`
	PriceCents        int64                 `gorm:"column:price_cents;not null"`
	Status            enums.InventoryStatus `gorm:"column:status;type:inventory_status;not null"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
}

// StockMovement is the append-only audit trail for inventory mutations.
// ReferenceID points at the allocation or allocation intent that drove the
// movement, when one exists.
type StockMovement struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	InventoryItemID uuid.UUID  `gorm:"column:inventory_item_id;type:uuid;not null;index"`
	Delta           int        `gorm:"column:delta;not null"`
	QuantityAfter   int        `gorm:"column:quantity_after;not null"`
	Reason          string     `gorm:"column:reason;not null"`
	ReferenceID     *uuid.UUID `gorm:"column:reference_id;type:uuid"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
}
