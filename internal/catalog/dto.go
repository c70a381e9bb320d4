package catalog

import (
	"time"

	"github.com/evdock/evdock-backend/pkg/enums"
	"github.com/evdock/evdock-backend/pkg/pagination"
)

// ColorInput is a paint option submitted alongside a vehicle.
type ColorInput struct {
	Name           string `json:"name" validate:"required"`
	SurchargeCents int64  `json:"surcharge_cents" validate:"gte=0"`
}

// CreateVehicleInput carries the fields needed to add a catalog entry.
type CreateVehicleInput struct {
	Model          string               `json:"model" validate:"required"`
	Trim           string               `json:"trim" validate:"required"`
	Segment        enums.VehicleSegment `json:"segment" validate:"required"`
	BatteryKWh     float64              `json:"battery_kwh" validate:"gt=0"`
	RangeKM        int                  `json:"range_km" validate:"gt=0"`
	MotorPowerKW   int                  `json:"motor_power_kw" validate:"gt=0"`
	BasePriceCents int64                `json:"base_price_cents" validate:"gt=0"`
	Colors         []ColorInput         `json:"colors" validate:"dive"`
	ReleasedAt     *time.Time           `json:"released_at,omitempty"`
}

// UpdateVehicleInput applies a partial update; nil fields are left as-is.
type UpdateVehicleInput struct {
	Trim           *string  `json:"trim,omitempty"`
	BatteryKWh     *float64 `json:"battery_kwh,omitempty" validate:"omitempty,gt=0"`
	RangeKM        *int     `json:"range_km,omitempty" validate:"omitempty,gt=0"`
	MotorPowerKW   *int     `json:"motor_power_kw,omitempty" validate:"omitempty,gt=0"`
	BasePriceCents *int64   `json:"base_price_cents,omitempty" validate:"omitempty,gt=0"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

// ListFilters describe the supported filter knobs for the catalog listing.
type ListFilters struct {
	Model         *string               `json:"model,omitempty"`
	Segment       *enums.VehicleSegment `json:"segment,omitempty"`
	MaxPriceCents *int64                `json:"max_price_cents,omitempty"`
	ActiveOnly    bool                  `json:"active_only,omitempty"`
}

// ListInput captures the inputs needed to paginate/filter vehicles.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}
