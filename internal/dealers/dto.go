package dealers

import (
	"github.com/evdock/evdock-backend/pkg/enums"
	"github.com/evdock/evdock-backend/pkg/pagination"
)

// CreateDealerInput carries the fields needed to register a dealership.
type CreateDealerInput struct {
	Code             string           `json:"code" validate:"required"`
	Name             string           `json:"name" validate:"required"`
	Region           string           `json:"region" validate:"required"`
	Address          *string          `json:"address,omitempty"`
	Phone            *string          `json:"phone,omitempty"`
	Email            *string          `json:"email,omitempty" validate:"omitempty,email"`
	Tier             enums.DealerTier `json:"tier,omitempty"`
	CreditLimitCents int64            `json:"credit_limit_cents" validate:"gte=0"`
}

// UpdateDealerInput applies a partial update; nil fields are left as-is.
type UpdateDealerInput struct {
	Name             *string             `json:"name,omitempty"`
	Region           *string             `json:"region,omitempty"`
	Address          *string             `json:"address,omitempty"`
	Phone            *string             `json:"phone,omitempty"`
	Email            *string             `json:"email,omitempty" validate:"omitempty,email"`
	Status           *enums.DealerStatus `json:"status,omitempty"`
	Tier             *enums.DealerTier   `json:"tier,omitempty"`
	CreditLimitCents *int64              `json:"credit_limit_cents,omitempty" validate:"omitempty,gte=0"`
}

// ListFilters describe the supported filter knobs for the dealer listing.
type ListFilters struct {
	Region *string             `json:"region,omitempty"`
	Status *enums.DealerStatus `json:"status,omitempty"`
	Tier   *enums.DealerTier   `json:"tier,omitempty"`
}

// ListInput captures the inputs needed to paginate/filter dealers.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}
