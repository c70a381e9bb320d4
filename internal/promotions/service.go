package promotions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	dbtypes "github.com/evdock/evdock-backend/pkg/db/types"
	"github.com/evdock/evdock-backend/pkg/enums"
	pkgerrors "github.com/evdock/evdock-backend/pkg/errors"
	"github.com/evdock/evdock-backend/pkg/outbox"
	"github.com/evdock/evdock-backend/pkg/outbox/payloads"
)

var hundred = decimal.NewFromInt(100)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Discount is a priced application of one campaign against a subtotal.
type Discount struct {
	Promotion   *models.Promotion
	AmountCents int64
}

// Service defines campaign-level operations.
type Service interface {
	Create(ctx context.Context, input CreatePromotionInput) (*models.Promotion, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	List(ctx context.Context, input ListInput) ([]models.Promotion, string, error)
	Update(ctx context.Context, id uuid.UUID, input UpdatePromotionInput) (*models.Promotion, error)
	Activate(ctx context.Context, id uuid.UUID, actorUserID uuid.UUID) (*models.Promotion, error)
	Pause(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	Archive(ctx context.Context, id uuid.UUID) (*models.Promotion, error)

	// BestDiscount returns the single most valuable active campaign for the
	// given dealer/vehicle pair, or nil when nothing applies.
	BestDiscount(ctx context.Context, input EligibilityInput, subtotalCents int64) (*Discount, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a promotions service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promotions repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher}, nil
}

func (s *service) Create(ctx context.Context, input CreatePromotionInput) (*models.Promotion, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid promotion kind")
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ends_at must be after starts_at")
	}
	switch input.Kind {
	case enums.PromotionKindPercent:
		if input.PercentOff.LessThanOrEqual(decimal.Zero) || input.PercentOff.GreaterThan(hundred) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent_off must be between 0 and 100")
		}
	case enums.PromotionKindFixedAmount:
		if input.AmountOffCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount_off_cents must be positive")
		}
	}
	if input.DealerTier != nil && !input.DealerTier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid dealer tier")
	}

	promotion := &models.Promotion{
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		Kind:           input.Kind,
		PercentOff:     input.PercentOff,
		AmountOffCents: input.AmountOffCents,
		VehicleModel:   input.VehicleModel,
		DealerTier:     input.DealerTier,
		DealerIDs:      dbtypes.UUIDArray(input.DealerIDs),
		Status:         enums.PromotionStatusDraft,
		StartsAt:       input.StartsAt.UTC(),
		EndsAt:         input.EndsAt.UTC(),
	}

	created, err := s.repo.Create(ctx, promotion)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create promotion")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotion id required")
	}
	promotion, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promotion")
	}
	return promotion, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Promotion, string, error) {
	if input.Filters.Status != nil && !input.Filters.Status.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	rows, next, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promotions")
	}
	return rows, next, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdatePromotionInput) (*models.Promotion, error) {
	promotion, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if promotion.Status != enums.PromotionStatusDraft && promotion.Status != enums.PromotionStatusPaused {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only draft or paused campaigns can be edited")
	}

	fields := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.PercentOff != nil {
		if input.PercentOff.LessThanOrEqual(decimal.Zero) || input.PercentOff.GreaterThan(hundred) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent_off must be between 0 and 100")
		}
		fields["percent_off"] = *input.PercentOff
	}
	if input.AmountOffCents != nil {
		if *input.AmountOffCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount_off_cents must be positive")
		}
		fields["amount_off_cents"] = *input.AmountOffCents
	}
	if input.VehicleModel != nil {
		fields["vehicle_model"] = *input.VehicleModel
	}
	starts, ends := promotion.StartsAt, promotion.EndsAt
	if input.StartsAt != nil {
		starts = input.StartsAt.UTC()
		fields["starts_at"] = starts
	}
	if input.EndsAt != nil {
		ends = input.EndsAt.UTC()
		fields["ends_at"] = ends
	}
	if !ends.After(starts) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ends_at must be after starts_at")
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update promotion")
	}
	return updated, nil
}

func (s *service) Activate(ctx context.Context, id uuid.UUID, actorUserID uuid.UUID) (*models.Promotion, error) {
	promotion, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if promotion.Status != enums.PromotionStatusDraft && promotion.Status != enums.PromotionStatusPaused {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot activate a %s campaign", promotion.Status))
	}
	if !promotion.EndsAt.After(time.Now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "campaign window already ended")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		moved, err := repo.UpdateStatus(ctx, promotion.ID, promotion.Status, enums.PromotionStatusActive)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate promotion")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "promotion changed concurrently, retry")
		}
		promotion.Status = enums.PromotionStatusActive

		event := outbox.DomainEvent{
			EventType:     enums.EventPromotionActivated,
			AggregateType: enums.AggregatePromotion,
			AggregateID:   promotion.ID,
			Version:       1,
			Data: payloads.PromotionActivatedEvent{
				PromotionID: promotion.ID,
				Name:        promotion.Name,
				Kind:        promotion.Kind,
				StartsAt:    promotion.StartsAt,
				EndsAt:      promotion.EndsAt,
			},
		}
		if actorUserID != uuid.Nil {
			event.Actor = &outbox.ActorRef{UserID: actorUserID}
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return promotion, nil
}

func (s *service) Pause(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	return s.transition(ctx, id, enums.PromotionStatusActive, enums.PromotionStatusPaused)
}

func (s *service) Archive(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	promotion, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if promotion.Status == enums.PromotionStatusArchived {
		return promotion, nil
	}
	moved, err := s.repo.UpdateStatus(ctx, id, promotion.Status, enums.PromotionStatusArchived)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive promotion")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "promotion changed concurrently, retry")
	}
	promotion.Status = enums.PromotionStatusArchived
	return promotion, nil
}

func (s *service) transition(ctx context.Context, id uuid.UUID, from, to enums.PromotionStatus) (*models.Promotion, error) {
	promotion, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if promotion.Status != from {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move campaign from %s to %s", promotion.Status, to))
	}
	moved, err := s.repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update promotion status")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "promotion changed concurrently, retry")
	}
	promotion.Status = to
	return promotion, nil
}

func (s *service) BestDiscount(ctx context.Context, input EligibilityInput, subtotalCents int64) (*Discount, error) {
	if subtotalCents <= 0 {
		return nil, nil
	}
	at := input.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	candidates, err := s.repo.ListActiveAt(ctx, at)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active promotions")
	}

	var best *Discount
	for i := range candidates {
		promotion := &candidates[i]
		if !eligible(promotion, input) {
			continue
		}
		amount := discountCents(promotion, subtotalCents)
		if amount <= 0 {
			continue
		}
		if amount > subtotalCents {
			amount = subtotalCents
		}
		if best == nil || amount > best.AmountCents {
			best = &Discount{Promotion: promotion, AmountCents: amount}
		}
	}
	return best, nil
}

func eligible(promotion *models.Promotion, input EligibilityInput) bool {
	if promotion.VehicleModel != nil && *promotion.VehicleModel != input.VehicleModel {
		return false
	}
	if promotion.DealerTier != nil && *promotion.DealerTier != input.DealerTier {
		return false
	}
	if len(promotion.DealerIDs) > 0 {
		found := false
		for _, id := range promotion.DealerIDs {
			if id == input.DealerID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func discountCents(promotion *models.Promotion, subtotalCents int64) int64 {
	switch promotion.Kind {
	case enums.PromotionKindPercent:
		subtotal := decimal.NewFromInt(subtotalCents)
		return subtotal.Mul(promotion.PercentOff).Div(hundred).Round(0).IntPart()
	case enums.PromotionKindFixedAmount:
		return promotion.AmountOffCents
	}
	return 0
}
