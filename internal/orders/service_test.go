package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
	pkgerrors "github.com/evdock/evdock-backend/pkg/errors"
	"github.com/evdock/evdock-backend/pkg/outbox"
)

type stubOrderRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *stubOrderRepo) seed(order *models.Order) *models.Order {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return order
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	return s.seed(order), nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrderRepo) List(ctx context.Context, input ListInput) ([]models.Order, string, error) {
	rows := make([]models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		rows = append(rows, *order)
	}
	return rows, "", nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	order, ok := s.orders[id]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	return true, nil
}

func (s *stubOrderRepo) MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) error {
	order, ok := s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.CancelledAt = &at
	return nil
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

type stubPriceReader struct {
	priceCents int64
	err        error
}

func (s *stubPriceReader) UnitPriceCents(ctx context.Context, vehicleModel, color string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.priceCents, nil
}

type stubReleaser struct {
	released []uuid.UUID
	err      error
}

func (s *stubReleaser) ReleaseForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error {
	if s.err != nil {
		return s.err
	}
	s.released = append(s.released, orderID)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func activeDealer() *models.Dealer {
	return &models.Dealer{
		ID:     uuid.New(),
		Name:   "Thang Long EV",
		Code:   "TL-01",
		Status: enums.DealerStatusActive,
		Tier:   enums.DealerTierPremium,
	}
}

func newTestService(t *testing.T, repo *stubOrderRepo, dealers *stubDealerReader, pricing *stubPriceReader, releaser *stubReleaser, publisher *stubOutboxPublisher) Service {
	t.Helper()
	svc, err := NewService(repo, dealers, pricing, releaser, stubTxRunner{}, publisher)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateComputesTotalAndEmitsEvent(t *testing.T) {
	repo := newStubOrderRepo()
	dealer := activeDealer()
	dealers := &stubDealerReader{dealers: map[uuid.UUID]*models.Dealer{dealer.ID: dealer}}
	publisher := &stubOutboxPublisher{}
	svc := newTestService(t, repo, dealers, &stubPriceReader{priceCents: 4_500_000_00}, &stubReleaser{}, publisher)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		DealerID:     dealer.ID,
		VehicleModel: "VF 8",
		Color:        "white",
		Quantity:     3,
		ActorUserID:  uuid.New(),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected new order to be pending, got %s", order.Status)
	}
	if order.Priority != enums.OrderPriorityMedium {
		t.Fatalf("expected default medium priority, got %s", order.Priority)
	}
	if order.TotalValueCents != 13_500_000_00 {
		t.Fatalf("expected total 13_500_000_00, got %d", order.TotalValueCents)
	}
	if order.DealerName != dealer.Name {
		t.Fatalf("expected dealer name snapshot, got %q", order.DealerName)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventOrderCreated {
		t.Fatalf("expected a single order_created event, got %+v", publisher.events)
	}
}

func TestCreateRejectsInactiveDealer(t *testing.T) {
	repo := newStubOrderRepo()
	dealer := activeDealer()
	dealer.Status = enums.DealerStatusSuspended
	dealers := &stubDealerReader{dealers: map[uuid.UUID]*models.Dealer{dealer.ID: dealer}}
	svc := newTestService(t, repo, dealers, &stubPriceReader{priceCents: 100}, &stubReleaser{}, &stubOutboxPublisher{})

	_, err := svc.Create(context.Background(), CreateOrderInput{
		DealerID:     dealer.ID,
		VehicleModel: "VF 8",
		Color:        "white",
		Quantity:     1,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for suspended dealer, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	dealer := activeDealer()
	dealers := &stubDealerReader{dealers: map[uuid.UUID]*models.Dealer{dealer.ID: dealer}}
	svc := newTestService(t, newStubOrderRepo(), dealers, &stubPriceReader{priceCents: 100}, &stubReleaser{}, &stubOutboxPublisher{})

	cases := []CreateOrderInput{
		{VehicleModel: "VF 8", Color: "white", Quantity: 1},
		{DealerID: dealer.ID, Color: "white", Quantity: 1},
		{DealerID: dealer.ID, VehicleModel: "VF 8", Color: "white", Quantity: 0},
		{DealerID: dealer.ID, VehicleModel: "VF 8", Color: "white", Quantity: 1, Priority: enums.OrderPriority("urgent")},
	}
	for i, input := range cases {
		_, err := svc.Create(context.Background(), input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	repo := newStubOrderRepo()
	order := repo.seed(&models.Order{
		DealerID: uuid.New(),
		Status:   enums.OrderStatusPending,
	})
	publisher := &stubOutboxPublisher{}
	svc := newTestService(t, repo, &stubDealerReader{}, &stubPriceReader{priceCents: 100}, &stubReleaser{}, publisher)

	// pending cannot jump straight to shipped.
	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusShipped})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for illegal transition, got %v", err)
	}

	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusPendingAllocation})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != enums.OrderStatusPendingAllocation {
		t.Fatalf("expected pending_allocation, got %s", updated.Status)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventOrderStatusChanged {
		t.Fatalf("expected order_status_changed event, got %+v", publisher.events)
	}
}

func TestUpdateStatusIsIdempotentOnSameStatus(t *testing.T) {
	repo := newStubOrderRepo()
	order := repo.seed(&models.Order{DealerID: uuid.New(), Status: enums.OrderStatusAllocated})
	publisher := &stubOutboxPublisher{}
	svc := newTestService(t, repo, &stubDealerReader{}, &stubPriceReader{priceCents: 100}, &stubReleaser{}, publisher)

	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusAllocated})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != enums.OrderStatusAllocated {
		t.Fatalf("expected allocated, got %s", updated.Status)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("expected no event for a no-op transition, got %d", len(publisher.events))
	}
}

func TestUpdateStatusRejectsCancelled(t *testing.T) {
	repo := newStubOrderRepo()
	order := repo.seed(&models.Order{DealerID: uuid.New(), Status: enums.OrderStatusPending})
	svc := newTestService(t, repo, &stubDealerReader{}, &stubPriceReader{priceCents: 100}, &stubReleaser{}, &stubOutboxPublisher{})

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{OrderID: order.ID, Status: enums.OrderStatusCancelled})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error steering callers to cancel, got %v", err)
	}
}

func TestCancelReleasesAllocatedStock(t *testing.T) {
	repo := newStubOrderRepo()
	order := repo.seed(&models.Order{DealerID: uuid.New(), Status: enums.OrderStatusAllocated})
	releaser := &stubReleaser{}
	publisher := &stubOutboxPublisher{}
	svc := newTestService(t, repo, &stubDealerReader{}, &stubPriceReader{priceCents: 100}, releaser, publisher)

	cancelled, err := svc.Cancel(context.Background(), CancelInput{OrderID: order.ID, Reason: "dealer withdrew"})
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Fatal("expected cancelled_at to be stamped")
	}
	if len(releaser.released) != 1 || releaser.released[0] != order.ID {
		t.Fatalf("expected stock release for the order, got %v", releaser.released)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventOrderCancelled {
		t.Fatalf("expected order_cancelled event, got %+v", publisher.events)
	}
}

func TestCancelPendingSkipsRelease(t *testing.T) {
	repo := newStubOrderRepo()
	order := repo.seed(&models.Order{DealerID: uuid.New(), Status: enums.OrderStatusPending})
	releaser := &stubReleaser{}
	svc := newTestService(t, repo, &stubDealerReader{}, &stubPriceReader{priceCents: 100}, releaser, &stubOutboxPublisher{})

	cancelled, err := svc.Cancel(context.Background(), CancelInput{OrderID: order.ID})
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if len(releaser.released) != 0 {
		t.Fatalf("expected no release for a pending order, got %v", releaser.released)
	}
}

func TestCancelTerminalOrderFails(t *testing.T) {
	repo := newStubOrderRepo()
	order := repo.seed(&models.Order{DealerID: uuid.New(), Status: enums.OrderStatusDelivered})
	svc := newTestService(t, repo, &stubDealerReader{}, &stubPriceReader{priceCents: 100}, &stubReleaser{}, &stubOutboxPublisher{})

	_, err := svc.Cancel(context.Background(), CancelInput{OrderID: order.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for delivered order, got %v", err)
	}
}

func TestCancelAbortsWhenReleaseFails(t *testing.T) {
	repo := newStubOrderRepo()
	order := repo.seed(&models.Order{DealerID: uuid.New(), Status: enums.OrderStatusAllocated})
	releaser := &stubReleaser{err: errors.New("warehouse offline")}
	svc := newTestService(t, repo, &stubDealerReader{}, &stubPriceReader{priceCents: 100}, releaser, &stubOutboxPublisher{})

	if _, err := svc.Cancel(context.Background(), CancelInput{OrderID: order.ID}); err == nil {
		t.Fatal("expected cancel to fail when stock release fails")
	}
}
