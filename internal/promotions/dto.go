package promotions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evdock/evdock-backend/pkg/enums"
	"github.com/evdock/evdock-backend/pkg/pagination"
)

// CreatePromotionInput carries the fields needed to draft a campaign.
type CreatePromotionInput struct {
	Name           string              `json:"name" validate:"required"`
	Description    *string             `json:"description,omitempty"`
	Kind           enums.PromotionKind `json:"kind" validate:"required"`
	PercentOff     decimal.Decimal     `json:"percent_off,omitempty"`
	AmountOffCents int64               `json:"amount_off_cents,omitempty" validate:"gte=0"`
	VehicleModel   *string             `json:"vehicle_model,omitempty"`
	DealerTier     *enums.DealerTier   `json:"dealer_tier,omitempty"`
	DealerIDs      []uuid.UUID         `json:"dealer_ids,omitempty"`
	StartsAt       time.Time           `json:"starts_at" validate:"required"`
	EndsAt         time.Time           `json:"ends_at" validate:"required"`
}

// UpdatePromotionInput applies a partial update to a draft or paused campaign.
type UpdatePromotionInput struct {
	Name           *string          `json:"name,omitempty"`
	Description    *string          `json:"description,omitempty"`
	PercentOff     *decimal.Decimal `json:"percent_off,omitempty"`
	AmountOffCents *int64           `json:"amount_off_cents,omitempty" validate:"omitempty,gte=0"`
	VehicleModel   *string          `json:"vehicle_model,omitempty"`
	StartsAt       *time.Time       `json:"starts_at,omitempty"`
	EndsAt         *time.Time       `json:"ends_at,omitempty"`
}

// ListFilters describe the supported filter knobs for the campaign listing.
type ListFilters struct {
	Status       *enums.PromotionStatus `json:"status,omitempty"`
	VehicleModel *string                `json:"vehicle_model,omitempty"`
	ActiveAt     *time.Time             `json:"active_at,omitempty"`
}

// ListInput captures the inputs needed to paginate/filter campaigns.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// EligibilityInput identifies the dealer/vehicle pair a quote is priced for.
type EligibilityInput struct {
	DealerID     uuid.UUID
	DealerTier   enums.DealerTier
	VehicleModel string
	At           time.Time
}
