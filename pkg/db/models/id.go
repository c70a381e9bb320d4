package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDs are assigned app-side so the schema works on both postgres and the
// sqlite driver used in tests.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *Vehicle) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *VehicleColor) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *Dealer) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *Warehouse) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *InventoryItem) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *StockMovement) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *Order) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *Allocation) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *AllocationIntent) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *Promotion) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *Quote) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *OutboxEvent) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
func (m *OutboxDLQ) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
