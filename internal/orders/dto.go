package orders

import (
	"github.com/google/uuid"

	"github.com/evdock/evdock-backend/pkg/enums"
	"github.com/evdock/evdock-backend/pkg/pagination"
)

// CreateOrderInput carries the fields a dealer submits when ordering vehicles.
type CreateOrderInput struct {
	DealerID     uuid.UUID           `json:"dealer_id" validate:"required"`
	VehicleModel string              `json:"vehicle_model" validate:"required"`
	Color        string              `json:"color" validate:"required"`
	Quantity     int                 `json:"quantity" validate:"gt=0"`
	Priority     enums.OrderPriority `json:"priority,omitempty"`
	ActorUserID  uuid.UUID           `json:"-"`
}

// UpdateStatusInput moves an order along its lifecycle.
type UpdateStatusInput struct {
	OrderID     uuid.UUID
	Status      enums.OrderStatus `json:"status" validate:"required"`
	ActorUserID uuid.UUID
}

// CancelInput cancels a non-terminal order.
type CancelInput struct {
	OrderID     uuid.UUID
	Reason      string `json:"reason,omitempty"`
	ActorUserID uuid.UUID
}

// ListFilters describe the supported filter knobs for the order listing.
type ListFilters struct {
	DealerID *uuid.UUID           `json:"dealer_id,omitempty"`
	Status   *enums.OrderStatus   `json:"status,omitempty"`
	Priority *enums.OrderPriority `json:"priority,omitempty"`
}

// ListInput captures the inputs needed to paginate/filter orders.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}
