package inventory

import (
	"github.com/google/uuid"

	"github.com/evdock/evdock-backend/pkg/enums"
	"github.com/evdock/evdock-backend/pkg/pagination"
	"github.com/evdock/evdock-backend/pkg/types"
)

// CreateItemInput carries the fields needed to register a stock row.
type CreateItemInput struct {
	VehicleModel      string `json:"vehicle_model" validate:"required"`
	Color             string `json:"color" validate:"required"`
	WarehouseLocation string `json:"warehouse_location" validate:"required"`
	Quantity          int    `json:"quantity" validate:"gte=0"`
	PriceCents        int64  `json:"price_cents" validate:"gte=0"`
}

// UpdateItemInput carries the mutable stock row fields. Quantity changes go
// through Adjust so every movement stays journaled.
type UpdateItemInput struct {
	PriceCents *int64 `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
}

// AdjustInput describes a manual quantity adjustment. ReferenceID may point
// at the allocation or order the correction relates to.
type AdjustInput struct {
	ItemID      uuid.UUID
	Delta       int                `json:"delta" validate:"required"`
	Reason      string             `json:"reason" validate:"required"`
	ReferenceID types.NullableUUID `json:"reference_id,omitempty"`
	ActorUserID uuid.UUID
}

// ListFilters describe the supported filter knobs for the stock listing.
type ListFilters struct {
	VehicleModel string                 `json:"vehicle_model,omitempty"`
	Warehouse    string                 `json:"warehouse,omitempty"`
	Status       *enums.InventoryStatus `json:"status,omitempty"`
}

// ListInput captures the inputs needed to paginate/filter inventory rows.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// CreateWarehouseInput registers a stocking location.
type CreateWarehouseInput struct {
	Code    string  `json:"code" validate:"required"`
	Name    string  `json:"name" validate:"required"`
	Region  string  `json:"region" validate:"required"`
	Address *string `json:"address,omitempty"`
}

// ItemView is the read model returned by browse endpoints.
type ItemView struct {
	ID                uuid.UUID             `json:"id"`
	VehicleModel      string                `json:"vehicle_model"`
	Color             string                `json:"color"`
	WarehouseLocation string                `json:"warehouse_location"`
	Quantity          int                   `json:"quantity"`
	PriceCents        int64                 `json:"price_cents"`
	Status            enums.InventoryStatus `json:"status"`
}
