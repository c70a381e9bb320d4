package quotes

import (
	"github.com/google/uuid"

	"github.com/evdock/evdock-backend/pkg/enums"
	"github.com/evdock/evdock-backend/pkg/pagination"
)

// ComputeInput carries the fields needed to price a quotation.
type ComputeInput struct {
	DealerID     uuid.UUID `json:"dealer_id" validate:"required"`
	VehicleModel string    `json:"vehicle_model" validate:"required"`
	Color        string    `json:"color" validate:"required"`
	Quantity     int       `json:"quantity" validate:"gt=0"`
	ActorUserID  uuid.UUID `json:"-"`
}

// ListFilters describe the supported filter knobs for the quote listing.
type ListFilters struct {
	DealerID *uuid.UUID         `json:"dealer_id,omitempty"`
	Status   *enums.QuoteStatus `json:"status,omitempty"`
}

// ListInput captures the inputs needed to paginate/filter quotes.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}
