package models

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestModelsMigrateOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:mdl_%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	if err := conn.AutoMigrate(
		&Vehicle{}, &VehicleColor{}, &Dealer{}, &Warehouse{},
		&InventoryItem{}, &StockMovement{}, &Order{},
		&Allocation{}, &AllocationIntent{}, &Promotion{}, &Quote{},
		&OutboxEvent{}, &OutboxDLQ{},
	); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}

	warehouse := &Warehouse{Code: "HAN-01", Name: "Hanoi Central", Region: "north"}
	if err := conn.Create(warehouse).Error; err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	if warehouse.ID == uuid.Nil {
		t.Fatal("expected an id to be assigned on create")
	}
}
