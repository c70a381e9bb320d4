package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/internal/promotions"
	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
	pkgerrors "github.com/evdock/evdock-backend/pkg/errors"
	"github.com/evdock/evdock-backend/pkg/outbox"
)

type stubQuoteRepo struct {
	quotes map[uuid.UUID]*models.Quote
}

func newStubQuoteRepo() *stubQuoteRepo {
	return &stubQuoteRepo{quotes: make(map[uuid.UUID]*models.Quote)}
}

func (s *stubQuoteRepo) seed(quote *models.Quote) *models.Quote {
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	s.quotes[quote.ID] = quote
	return quote
}

func (s *stubQuoteRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubQuoteRepo) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	return s.seed(quote), nil
}

func (s *stubQuoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	quote, ok := s.quotes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *quote
	return &copied, nil
}

func (s *stubQuoteRepo) List(ctx context.Context, input ListInput) ([]models.Quote, string, error) {
	rows := make([]models.Quote, 0, len(s.quotes))
	for _, quote := range s.quotes {
		rows = append(rows, *quote)
	}
	return rows, "", nil
}

func (s *stubQuoteRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.QuoteStatus) (bool, error) {
	quote, ok := s.quotes[id]
	if !ok || quote.Status != from {
		return false, nil
	}
	quote.Status = to
	return true, nil
}

func (s *stubQuoteRepo) ExpireIssuedBefore(ctx context.Context, now time.Time) (int64, error) {
	var expired int64
	for _, quote := range s.quotes {
		if quote.Status == enums.QuoteStatusIssued && quote.ValidUntil.Before(now) {
			quote.Status = enums.QuoteStatusExpired
			expired++
		}
	}
	return expired, nil
}

type stubDealerReader struct {
	dealers map[uuid.UUID]*models.Dealer
}

func (s *stubDealerReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	dealer, ok := s.dealers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return dealer, nil
}

type stubVehicleReader struct {
	vehicles map[string]*models.Vehicle
}

func (s *stubVehicleReader) FindActiveByModel(ctx context.Context, model string) (*models.Vehicle, error) {
	vehicle, ok := s.vehicles[model]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vehicle, nil
}

type stubDiscountFinder struct {
	discount *promotions.Discount
	err      error
}

func (s *stubDiscountFinder) BestDiscount(ctx context.Context, input promotions.EligibilityInput, subtotalCents int64) (*promotions.Discount, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.discount, nil
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

func testFixtures() (*models.Dealer, *models.Vehicle) {
	dealer := &models.Dealer{
		ID:     uuid.New(),
		Name:   "Thang Long EV",
		Code:   "TL-01",
		Status: enums.DealerStatusActive,
		Tier:   enums.DealerTierPremium,
	}
	vehicle := &models.Vehicle{
		ID:             uuid.New(),
		Model:          "VF 8",
		Trim:           "Plus",
		BasePriceCents: 1_000_00,
		IsActive:       true,
		Colors: []models.VehicleColor{
			{Name: "White"},
			{Name: "Black", SurchargeCents: 50_00},
		},
	}
	return dealer, vehicle
}

func newTestService(t *testing.T, repo Repository, dealer *models.Dealer, vehicle *models.Vehicle, finder *stubDiscountFinder, publisher *stubOutboxPublisher) Service {
	t.Helper()
	svc, err := NewService(
		repo,
		&stubDealerReader{dealers: map[uuid.UUID]*models.Dealer{dealer.ID: dealer}},
		&stubVehicleReader{vehicles: map[string]*models.Vehicle{vehicle.Model: vehicle}},
		finder,
		stubTxRunner{},
		publisher,
		14,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestComputeWithoutPromotion(t *testing.T) {
	dealer, vehicle := testFixtures()
	publisher := &stubOutboxPublisher{}
	svc := newTestService(t, newStubQuoteRepo(), dealer, vehicle, &stubDiscountFinder{}, publisher)

	quote, err := svc.Compute(context.Background(), ComputeInput{
		DealerID:     dealer.ID,
		VehicleModel: "VF 8",
		Color:        "black",
		Quantity:     2,
	})
	if err != nil {
		t.Fatalf("compute quote: %v", err)
	}
	if quote.UnitPriceCents != 1_050_00 {
		t.Fatalf("expected unit price with surcharge, got %d", quote.UnitPriceCents)
	}
	if quote.SubtotalCents != 2_100_00 || quote.TotalCents != 2_100_00 || quote.DiscountCents != 0 {
		t.Fatalf("unexpected totals: %+v", quote)
	}
	if quote.Status != enums.QuoteStatusIssued {
		t.Fatalf("expected issued, got %s", quote.Status)
	}
	if len(quote.Discounts) != 0 {
		t.Fatalf("expected no discount snapshot, got %+v", quote.Discounts)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventQuoteIssued {
		t.Fatalf("expected quote_issued event, got %+v", publisher.events)
	}
}

func TestComputeSnapshotsPromotion(t *testing.T) {
	dealer, vehicle := testFixtures()
	promotion := &models.Promotion{
		ID:         uuid.New(),
		Name:       "Tet sale",
		Kind:       enums.PromotionKindPercent,
		PercentOff: decimal.NewFromInt(10),
	}
	finder := &stubDiscountFinder{discount: &promotions.Discount{Promotion: promotion, AmountCents: 200_00}}
	svc := newTestService(t, newStubQuoteRepo(), dealer, vehicle, finder, &stubOutboxPublisher{})

	quote, err := svc.Compute(context.Background(), ComputeInput{
		DealerID:     dealer.ID,
		VehicleModel: "VF 8",
		Color:        "white",
		Quantity:     2,
	})
	if err != nil {
		t.Fatalf("compute quote: %v", err)
	}
	if quote.DiscountCents != 200_00 {
		t.Fatalf("expected discount 200_00, got %d", quote.DiscountCents)
	}
	if quote.TotalCents != quote.SubtotalCents-200_00 {
		t.Fatalf("expected total minus discount, got %d", quote.TotalCents)
	}
	if quote.PromotionID == nil || *quote.PromotionID != promotion.ID {
		t.Fatalf("expected promotion reference, got %v", quote.PromotionID)
	}
	if len(quote.Discounts) != 1 {
		t.Fatalf("expected one discount snapshot, got %d", len(quote.Discounts))
	}
	snapshot := quote.Discounts[0]
	if snapshot.Name != "Tet sale" || snapshot.PromotionID != promotion.ID {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if snapshot.Value != "10" || snapshot.ValueType != "percent" {
		t.Fatalf("expected percent terms snapshotted, got %+v", snapshot)
	}
}

func TestComputeRejectsInactiveDealer(t *testing.T) {
	dealer, vehicle := testFixtures()
	dealer.Status = enums.DealerStatusSuspended
	svc := newTestService(t, newStubQuoteRepo(), dealer, vehicle, &stubDiscountFinder{}, &stubOutboxPublisher{})

	_, err := svc.Compute(context.Background(), ComputeInput{
		DealerID:     dealer.ID,
		VehicleModel: "VF 8",
		Color:        "white",
		Quantity:     1,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestComputeUnknownModel(t *testing.T) {
	dealer, vehicle := testFixtures()
	svc := newTestService(t, newStubQuoteRepo(), dealer, vehicle, &stubDiscountFinder{}, &stubOutboxPublisher{})

	_, err := svc.Compute(context.Background(), ComputeInput{
		DealerID:     dealer.ID,
		VehicleModel: "VF 99",
		Color:        "white",
		Quantity:     1,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAcceptThenConvert(t *testing.T) {
	repo := newStubQuoteRepo()
	quote := repo.seed(&models.Quote{
		DealerID:   uuid.New(),
		Status:     enums.QuoteStatusIssued,
		ValidUntil: time.Now().UTC().Add(24 * time.Hour),
	})
	dealer, vehicle := testFixtures()
	svc := newTestService(t, repo, dealer, vehicle, &stubDiscountFinder{}, &stubOutboxPublisher{})

	accepted, err := svc.Accept(context.Background(), quote.ID)
	if err != nil {
		t.Fatalf("accept quote: %v", err)
	}
	if accepted.Status != enums.QuoteStatusAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}

	converted, err := svc.Convert(context.Background(), quote.ID)
	if err != nil {
		t.Fatalf("convert quote: %v", err)
	}
	if converted.Status != enums.QuoteStatusConverted {
		t.Fatalf("expected converted, got %s", converted.Status)
	}

	// Converted is terminal.
	_, err = svc.Reject(context.Background(), quote.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestAcceptExpiredQuote(t *testing.T) {
	repo := newStubQuoteRepo()
	quote := repo.seed(&models.Quote{
		DealerID:   uuid.New(),
		Status:     enums.QuoteStatusIssued,
		ValidUntil: time.Now().UTC().Add(-time.Hour),
	})
	dealer, vehicle := testFixtures()
	svc := newTestService(t, repo, dealer, vehicle, &stubDiscountFinder{}, &stubOutboxPublisher{})

	_, err := svc.Accept(context.Background(), quote.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for expired quote, got %v", err)
	}
}
