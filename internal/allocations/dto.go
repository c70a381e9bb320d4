package allocations

import (
	"github.com/google/uuid"

	"github.com/evdock/evdock-backend/pkg/enums"
	"github.com/evdock/evdock-backend/pkg/pagination"
)

// AllocateInput carries the fields needed to run the allocation saga.
type AllocateInput struct {
	OrderID           uuid.UUID `json:"order_id" validate:"required"`
	WarehouseLocation string    `json:"warehouse_location" validate:"required"`
	ActorUserID       uuid.UUID `json:"-"`
}

// UpdateStatusInput moves a committed allocation through shipping.
type UpdateStatusInput struct {
	AllocationID uuid.UUID
	Status       enums.AllocationStatus `json:"status" validate:"required"`
	ActorUserID  uuid.UUID
}

// ListFilters describe the supported filter knobs for the allocation listing.
type ListFilters struct {
	OrderID  *uuid.UUID              `json:"order_id,omitempty"`
	DealerID *uuid.UUID              `json:"dealer_id,omitempty"`
	Status   *enums.AllocationStatus `json:"status,omitempty"`
}

// ListInput captures the inputs needed to paginate/filter allocations.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}
