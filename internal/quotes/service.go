package quotes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/internal/promotions"
	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
	pkgerrors "github.com/evdock/evdock-backend/pkg/errors"
	"github.com/evdock/evdock-backend/pkg/outbox"
	"github.com/evdock/evdock-backend/pkg/outbox/payloads"
	"github.com/evdock/evdock-backend/pkg/types"
)

const discountSourcePromotion = "promotion"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// DealerReader exposes the dealer fields quoting needs.
type DealerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
}

// VehicleReader resolves the catalog entry backing a quoted model.
type VehicleReader interface {
	FindActiveByModel(ctx context.Context, model string) (*models.Vehicle, error)
}

// DiscountFinder picks the best active campaign for a dealer/vehicle pair.
type DiscountFinder interface {
	BestDiscount(ctx context.Context, input promotions.EligibilityInput, subtotalCents int64) (*promotions.Discount, error)
}

// Service defines quotation operations.
type Service interface {
	Compute(ctx context.Context, input ComputeInput) (*models.Quote, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, input ListInput) ([]models.Quote, string, error)
	Accept(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	Reject(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	Convert(ctx context.Context, id uuid.UUID) (*models.Quote, error)
}

type service struct {
	repo         Repository
	dealers      DealerReader
	vehicles     VehicleReader
	discounts    DiscountFinder
	tx           txRunner
	outbox       outboxPublisher
	validityDays int
}

// NewService builds a quote service with the required dependencies.
func NewService(repo Repository, dealers DealerReader, vehicles VehicleReader, discounts DiscountFinder, tx txRunner, publisher outboxPublisher, validityDays int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if dealers == nil {
		return nil, fmt.Errorf("dealer reader required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicle reader required")
	}
	if discounts == nil {
		return nil, fmt.Errorf("discount finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if validityDays <= 0 {
		return nil, fmt.Errorf("validity days must be positive")
	}
	return &service{
		repo:         repo,
		dealers:      dealers,
		vehicles:     vehicles,
		discounts:    discounts,
		tx:           tx,
		outbox:       publisher,
		validityDays: validityDays,
	}, nil
}

func (s *service) Compute(ctx context.Context, input ComputeInput) (*models.Quote, error) {
	if input.DealerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dealer id required")
	}
	if strings.TrimSpace(input.VehicleModel) == "" || strings.TrimSpace(input.Color) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle model and color required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	dealer, err := s.dealers.FindByID(ctx, input.DealerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
	}
	if dealer.Status != enums.DealerStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "dealer is not active")
	}

	vehicle, err := s.vehicles.FindActiveByModel(ctx, strings.TrimSpace(input.VehicleModel))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle model not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}

	unitPrice := vehicle.BasePriceCents
	wanted := strings.ToLower(strings.TrimSpace(input.Color))
	for _, option := range vehicle.Colors {
		if strings.ToLower(option.Name) == wanted {
			unitPrice += option.SurchargeCents
			break
		}
	}
	subtotal := unitPrice * int64(input.Quantity)

	now := time.Now().UTC()
	best, err := s.discounts.BestDiscount(ctx, promotions.EligibilityInput{
		DealerID:     dealer.ID,
		DealerTier:   dealer.Tier,
		VehicleModel: vehicle.Model,
		At:           now,
	}, subtotal)
	if err != nil {
		return nil, err
	}

	quote := &models.Quote{
		DealerID:       dealer.ID,
		VehicleID:      vehicle.ID,
		VehicleModel:   vehicle.Model,
		Color:          strings.TrimSpace(input.Color),
		Quantity:       input.Quantity,
		UnitPriceCents: unitPrice,
		SubtotalCents:  subtotal,
		TotalCents:     subtotal,
		Discounts:      types.AppliedDiscounts{},
		Status:         enums.QuoteStatusIssued,
		ValidUntil:     now.AddDate(0, 0, s.validityDays),
	}
	if best != nil {
		quote.DiscountCents = best.AmountCents
		quote.TotalCents = subtotal - best.AmountCents
		quote.PromotionID = &best.Promotion.ID
		quote.Discounts = types.AppliedDiscounts{snapshotDiscount(best.Promotion)}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, quote)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
		}
		quote = created

		event := outbox.DomainEvent{
			EventType:     enums.EventQuoteIssued,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quote.ID,
			Version:       1,
			Data: payloads.QuoteIssuedEvent{
				QuoteID:       quote.ID,
				DealerID:      quote.DealerID,
				VehicleModel:  quote.VehicleModel,
				Quantity:      quote.Quantity,
				TotalCents:    quote.TotalCents,
				DiscountCents: quote.DiscountCents,
				ValidUntil:    quote.ValidUntil,
			},
		}
		if input.ActorUserID != uuid.Nil {
			dealerID := dealer.ID
			event.Actor = &outbox.ActorRef{UserID: input.ActorUserID, DealerID: &dealerID}
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	quote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	return quote, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Quote, string, error) {
	if input.Filters.Status != nil && !input.Filters.Status.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	rows, next, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}
	return rows, next, nil
}

func (s *service) Accept(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	return s.transition(ctx, id, enums.QuoteStatusAccepted, enums.QuoteStatusIssued)
}

func (s *service) Reject(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	return s.transition(ctx, id, enums.QuoteStatusRejected, enums.QuoteStatusIssued)
}

func (s *service) Convert(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	return s.transition(ctx, id, enums.QuoteStatusConverted, enums.QuoteStatusIssued, enums.QuoteStatusAccepted)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, to enums.QuoteStatus, allowedFrom ...enums.QuoteStatus) (*models.Quote, error) {
	quote, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.ValidUntil.Before(time.Now().UTC()) && to != enums.QuoteStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quote has expired")
	}

	allowed := false
	for _, from := range allowedFrom {
		if quote.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move quote from %s to %s", quote.Status, to))
	}

	moved, err := s.repo.UpdateStatus(ctx, id, quote.Status, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote status")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quote changed concurrently, retry")
	}
	quote.Status = to
	return quote, nil
}

func snapshotDiscount(promotion *models.Promotion) types.AppliedDiscount {
	source := discountSourcePromotion
	snapshot := types.AppliedDiscount{
		Source:      &source,
		Name:        promotion.Name,
		PromotionID: promotion.ID,
	}
	switch promotion.Kind {
	case enums.PromotionKindPercent:
		snapshot.Value = promotion.PercentOff.String()
		snapshot.ValueType = "percent"
	case enums.PromotionKindFixedAmount:
		snapshot.Value = strconv.FormatInt(promotion.AmountOffCents, 10)
		snapshot.ValueType = "fixed_amount"
	}
	return snapshot
}
