package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/evdock/evdock-backend/pkg/enums"
)

// Vehicle represents a catalog entry for a sellable EV model/trim.
type Vehicle struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Model          string               `gorm:"column:model;not null"`
	Trim           string               `gorm:"column:trim;not null"`
	Segment        enums.VehicleSegment `gorm:"column:segment;type:vehicle_segment;not null"`
	BatteryKWh     float64              `gorm:"column:battery_kwh;type:numeric(6,2);not null"`
	RangeKM        int                  `gorm:"column:range_km;not null"`
	MotorPowerKW   int                  `gorm:"column:motor_power_kw;not null"`
	BasePriceCents int64                `gorm:"column:base_price_cents;not null"`
	Colors         []VehicleColor       `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
	IsActive       bool                 `gorm:"column:is_active;not null;default:true"`
	ReleasedAt     *time.Time           `gorm:"column:released_at"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// VehicleColor is a paint option offered for a vehicle, with an optional
// surcharge on top of the base price.
type VehicleColor struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	VehicleID      uuid.UUID `gorm:"column:vehicle_id;type:uuid;not null"`
	Name           string    `gorm:"column:name;not null"`
	SurchargeCents int64     `gorm:"column:surcharge_cents;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
