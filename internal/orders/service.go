package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
	pkgerrors "github.com/evdock/evdock-backend/pkg/errors"
	"github.com/evdock/evdock-backend/pkg/outbox"
	"github.com/evdock/evdock-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// DealerReader exposes the dealer fields order placement needs.
type DealerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
}

// PriceReader resolves the unit price for a model/color pair.
type PriceReader interface {
	UnitPriceCents(ctx context.Context, vehicleModel, color string) (int64, error)
}

// AllocationReleaser returns reserved stock when an order is cancelled after
// allocation.
type AllocationReleaser interface {
	ReleaseForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error
}

// Service defines order-level operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, input ListInput) ([]models.Order, string, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Order, error)
}

type service struct {
	repo     Repository
	dealers  DealerReader
	pricing  PriceReader
	releaser AllocationReleaser
	tx       txRunner
	outbox   outboxPublisher
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, dealers DealerReader, pricing PriceReader, releaser AllocationReleaser, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if dealers == nil {
		return nil, fmt.Errorf("dealer reader required")
	}
	if pricing == nil {
		return nil, fmt.Errorf("price reader required")
	}
	if releaser == nil {
		return nil, fmt.Errorf("allocation releaser required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:     repo,
		dealers:  dealers,
		pricing:  pricing,
		releaser: releaser,
		tx:       tx,
		outbox:   publisher,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.DealerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dealer id required")
	}
	if strings.TrimSpace(input.VehicleModel) == "" || strings.TrimSpace(input.Color) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle model and color required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.OrderPriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order priority")
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

	unitPrice, err := s.pricing.UnitPriceCents(ctx, input.VehicleModel, input.Color)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle model not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve unit price")
	}

	order := &models.Order{
		DealerID:        dealer.ID,
		DealerName:      dealer.Name,
		VehicleModel:    strings.TrimSpace(input.VehicleModel),
		Color:           strings.TrimSpace(input.Color),
		Quantity:        input.Quantity,
		Status:          enums.OrderStatusPending,
		Priority:        priority,
		TotalValueCents: unitPrice * int64(input.Quantity),
		OrderDate:       time.Now().UTC(),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		order = created

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, dealer.ID),
			Data: payloads.OrderCreatedEvent{
				OrderID:      order.ID,
				DealerID:     order.DealerID,
				VehicleModel: order.VehicleModel,
				Color:        order.Color,
				Quantity:     order.Quantity,
				Priority:     order.Priority,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Order, string, error) {
	if input.Filters.Status != nil && !input.Filters.Status.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	rows, next, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, next, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if input.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the cancel operation to cancel an order")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if current.Status == input.Status {
			order = current
			return nil
		}
		if !current.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", current.Status, input.Status))
		}

		moved, err := repo.UpdateStatus(ctx, current.ID, current.Status, input.Status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently, retry")
		}

		from := current.Status
		current.Status = input.Status
		order = current

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, current.DealerID),
			Data: payloads.OrderStatusChangedEvent{
				OrderID:  current.ID,
				DealerID: current.DealerID,
				From:     from,
				To:       input.Status,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if current.Status == enums.OrderStatusCancelled {
			order = current
			return nil
		}
		if !current.Status.CanTransitionTo(enums.OrderStatusCancelled) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot cancel order in %s state", current.Status))
		}

		// Stock that was committed to this order goes back to the warehouse
		// inside the same transaction.
		if current.Status == enums.OrderStatusAllocated || current.Status == enums.OrderStatusShipped {
			if err := s.releaser.ReleaseForOrder(ctx, tx, current.ID, "order_cancelled"); err != nil {
				return err
			}
		}

		moved, err := repo.UpdateStatus(ctx, current.ID, current.Status, enums.OrderStatusCancelled)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently, retry")
		}

		now := time.Now().UTC()
		if err := repo.MarkCancelled(ctx, current.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order cancelled")
		}

		current.Status = enums.OrderStatusCancelled
		current.CancelledAt = &now
		order = current

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, current.DealerID),
			Data: payloads.OrderCancelledEvent{
				OrderID:     current.ID,
				DealerID:    current.DealerID,
				CancelledAt: now,
				Reason:      strings.TrimSpace(input.Reason),
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func buildActor(userID, dealerID uuid.UUID) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	actor := &outbox.ActorRef{UserID: userID}
	if dealerID != uuid.Nil {
		id := dealerID
		actor.DealerID = &id
	}
	return actor
}
