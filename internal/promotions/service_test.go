package promotions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	dbtypes "github.com/evdock/evdock-backend/pkg/db/types"
	"github.com/evdock/evdock-backend/pkg/enums"
	pkgerrors "github.com/evdock/evdock-backend/pkg/errors"
	"github.com/evdock/evdock-backend/pkg/outbox"
)

type stubPromotionRepo struct {
	promotions map[uuid.UUID]*models.Promotion
}

func newStubPromotionRepo() *stubPromotionRepo {
	return &stubPromotionRepo{promotions: make(map[uuid.UUID]*models.Promotion)}
}

func (s *stubPromotionRepo) seed(promotion *models.Promotion) *models.Promotion {
	if promotion.ID == uuid.Nil {
		promotion.ID = uuid.New()
	}
	s.promotions[promotion.ID] = promotion
	return promotion
}

func (s *stubPromotionRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPromotionRepo) Create(ctx context.Context, promotion *models.Promotion) (*models.Promotion, error) {
	return s.seed(promotion), nil
}

func (s *stubPromotionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	promotion, ok := s.promotions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return promotion, nil
}

func (s *stubPromotionRepo) List(ctx context.Context, input ListInput) ([]models.Promotion, string, error) {
	rows := make([]models.Promotion, 0, len(s.promotions))
	for _, promotion := range s.promotions {
		rows = append(rows, *promotion)
	}
	return rows, "", nil
}

func (s *stubPromotionRepo) ListActiveAt(ctx context.Context, at time.Time) ([]models.Promotion, error) {
	var rows []models.Promotion
	for _, promotion := range s.promotions {
		if promotion.Status == enums.PromotionStatusActive &&
			!promotion.StartsAt.After(at) && promotion.EndsAt.After(at) {
			rows = append(rows, *promotion)
		}
	}
	return rows, nil
}

func (s *stubPromotionRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Promotion, error) {
	promotion, ok := s.promotions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if name, ok := fields["name"].(string); ok {
		promotion.Name = name
	}
	return promotion, nil
}

func (s *stubPromotionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.PromotionStatus) (bool, error) {
	promotion, ok := s.promotions[id]
	if !ok || promotion.Status != from {
		return false, nil
	}
	promotion.Status = to
	return true, nil
}

func (s *stubPromotionRepo) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for _, promotion := range s.promotions {
		if promotion.Status == enums.PromotionStatusActive && !promotion.EndsAt.After(now) {
			promotion.Status = enums.PromotionStatusExpired
			count++
		}
	}
	return count, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func newTestService(t *testing.T, repo Repository, publisher *stubOutboxPublisher) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, publisher)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func activePercentPromotion(percent int64) *models.Promotion {
	now := time.Now().UTC()
	return &models.Promotion{
		Name:       "Tet sale",
		Kind:       enums.PromotionKindPercent,
		PercentOff: decimal.NewFromInt(percent),
		Status:     enums.PromotionStatusActive,
		StartsAt:   now.Add(-time.Hour),
		EndsAt:     now.Add(time.Hour),
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, newStubPromotionRepo(), &stubOutboxPublisher{})
	now := time.Now().UTC()

	cases := []CreatePromotionInput{
		{Kind: enums.PromotionKindPercent, PercentOff: decimal.NewFromInt(10), StartsAt: now, EndsAt: now.Add(time.Hour)},
		{Name: "Bad kind", Kind: enums.PromotionKind("bogo"), StartsAt: now, EndsAt: now.Add(time.Hour)},
		{Name: "Window", Kind: enums.PromotionKindPercent, PercentOff: decimal.NewFromInt(10), StartsAt: now, EndsAt: now},
		{Name: "Zero pct", Kind: enums.PromotionKindPercent, StartsAt: now, EndsAt: now.Add(time.Hour)},
		{Name: "Over pct", Kind: enums.PromotionKindPercent, PercentOff: decimal.NewFromInt(101), StartsAt: now, EndsAt: now.Add(time.Hour)},
		{Name: "Zero amt", Kind: enums.PromotionKindFixedAmount, StartsAt: now, EndsAt: now.Add(time.Hour)},
	}
	for i, input := range cases {
		_, err := svc.Create(context.Background(), input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestActivateEmitsEvent(t *testing.T) {
	repo := newStubPromotionRepo()
	now := time.Now().UTC()
	promotion := repo.seed(&models.Promotion{
		Name:       "Launch week",
		Kind:       enums.PromotionKindFixedAmount,
		AmountOffCents: 100_000_00,
		Status:     enums.PromotionStatusDraft,
		StartsAt:   now.Add(-time.Hour),
		EndsAt:     now.Add(24 * time.Hour),
	})
	publisher := &stubOutboxPublisher{}
	svc := newTestService(t, repo, publisher)

	activated, err := svc.Activate(context.Background(), promotion.ID, uuid.New())
	if err != nil {
		t.Fatalf("activate promotion: %v", err)
	}
	if activated.Status != enums.PromotionStatusActive {
		t.Fatalf("expected active, got %s", activated.Status)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventPromotionActivated {
		t.Fatalf("expected promotion_activated event, got %+v", publisher.events)
	}
}

func TestActivateRejectsEndedWindow(t *testing.T) {
	repo := newStubPromotionRepo()
	now := time.Now().UTC()
	promotion := repo.seed(&models.Promotion{
		Name:     "Stale",
		Kind:     enums.PromotionKindPercent,
		PercentOff: decimal.NewFromInt(5),
		Status:   enums.PromotionStatusDraft,
		StartsAt: now.Add(-48 * time.Hour),
		EndsAt:   now.Add(-24 * time.Hour),
	})
	svc := newTestService(t, repo, &stubOutboxPublisher{})

	_, err := svc.Activate(context.Background(), promotion.ID, uuid.Nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestBestDiscountPicksLargest(t *testing.T) {
	repo := newStubPromotionRepo()
	repo.seed(activePercentPromotion(5))
	repo.seed(activePercentPromotion(10))
	svc := newTestService(t, repo, &stubOutboxPublisher{})

	best, err := svc.BestDiscount(context.Background(), EligibilityInput{
		DealerID:     uuid.New(),
		DealerTier:   enums.DealerTierStandard,
		VehicleModel: "VF 8",
	}, 1_000_00)
	if err != nil {
		t.Fatalf("best discount: %v", err)
	}
	if best == nil || best.AmountCents != 100_00 {
		t.Fatalf("expected the 10%% campaign (100_00), got %+v", best)
	}
}

func TestBestDiscountHonorsTargeting(t *testing.T) {
	repo := newStubPromotionRepo()
	dealerID := uuid.New()
	model := "VF 8"
	tier := enums.DealerTierPremium

	targeted := activePercentPromotion(20)
	targeted.VehicleModel = &model
	targeted.DealerTier = &tier
	targeted.DealerIDs = dbtypes.UUIDArray{dealerID}
	repo.seed(targeted)

	svc := newTestService(t, repo, &stubOutboxPublisher{})

	// Wrong model, tier and dealer each disqualify the campaign.
	best, err := svc.BestDiscount(context.Background(), EligibilityInput{
		DealerID:     uuid.New(),
		DealerTier:   enums.DealerTierStandard,
		VehicleModel: "VF 9",
	}, 1_000_00)
	if err != nil {
		t.Fatalf("best discount: %v", err)
	}
	if best != nil {
		t.Fatalf("expected no discount, got %+v", best)
	}

	best, err = svc.BestDiscount(context.Background(), EligibilityInput{
		DealerID:     dealerID,
		DealerTier:   tier,
		VehicleModel: model,
	}, 1_000_00)
	if err != nil {
		t.Fatalf("best discount: %v", err)
	}
	if best == nil || best.AmountCents != 200_00 {
		t.Fatalf("expected 200_00 for the eligible dealer, got %+v", best)
	}
}

func TestBestDiscountCapsAtSubtotal(t *testing.T) {
	repo := newStubPromotionRepo()
	now := time.Now().UTC()
	repo.seed(&models.Promotion{
		Name:           "Deep cut",
		Kind:           enums.PromotionKindFixedAmount,
		AmountOffCents: 5_000_00,
		Status:         enums.PromotionStatusActive,
		StartsAt:       now.Add(-time.Hour),
		EndsAt:         now.Add(time.Hour),
	})
	svc := newTestService(t, repo, &stubOutboxPublisher{})

	best, err := svc.BestDiscount(context.Background(), EligibilityInput{
		DealerID:     uuid.New(),
		DealerTier:   enums.DealerTierStandard,
		VehicleModel: "VF 8",
	}, 1_000_00)
	if err != nil {
		t.Fatalf("best discount: %v", err)
	}
	if best == nil || best.AmountCents != 1_000_00 {
		t.Fatalf("expected discount capped at subtotal, got %+v", best)
	}
}

func TestPauseRequiresActive(t *testing.T) {
	repo := newStubPromotionRepo()
	promotion := repo.seed(&models.Promotion{
		Name:   "Draft only",
		Kind:   enums.PromotionKindPercent,
		PercentOff: decimal.NewFromInt(5),
		Status: enums.PromotionStatusDraft,
	})
	svc := newTestService(t, repo, &stubOutboxPublisher{})

	_, err := svc.Pause(context.Background(), promotion.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
