package allocations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/internal/orders"
	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
	pkgerrors "github.com/evdock/evdock-backend/pkg/errors"
	"github.com/evdock/evdock-backend/pkg/logger"
	"github.com/evdock/evdock-backend/pkg/metrics"
	"github.com/evdock/evdock-backend/pkg/outbox"
	"github.com/evdock/evdock-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StockKeeper is the slice of the inventory service the saga drives.
type StockKeeper interface {
	ReduceStock(ctx context.Context, tx *gorm.DB, vehicleModel, color, warehouse string, qty int, ref *uuid.UUID) (*models.InventoryItem, error)
	RestoreStock(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int, ref *uuid.UUID, reason string) error
}

// MovementFinder resolves the stock movement a saga step left behind.
type MovementFinder interface {
	FindMovementByReference(ctx context.Context, referenceID uuid.UUID, reason string) (*models.StockMovement, error)
}

// Service runs the allocation saga and the post-commit lifecycle.
type Service interface {
	Allocate(ctx context.Context, input AllocateInput) (*models.Allocation, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Allocation, error)
	List(ctx context.Context, input ListInput) ([]models.Allocation, string, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Allocation, error)

	// ReleaseForOrder restores the stock behind an order's allocation inside
	// the caller's transaction. Order cancellation uses it.
	ReleaseForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error
}

type service struct {
	repo         Repository
	intents      IntentRepository
	orders       orders.Repository
	stock        StockKeeper
	movements    MovementFinder
	tx           txRunner
	outbox       outboxPublisher
	log          *logger.Logger
	metrics      *metrics.AllocationMetrics
	leadTimeDays int
}

// NewService builds the allocation service with the required dependencies.
func NewService(repo Repository, intents IntentRepository, orderRepo orders.Repository, stock StockKeeper, movements MovementFinder, tx txRunner, publisher outboxPublisher, log *logger.Logger, m *metrics.AllocationMetrics, leadTimeDays int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("allocations repository required")
	}
	if intents == nil {
		return nil, fmt.Errorf("intent repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock keeper required")
	}
	if movements == nil {
		return nil, fmt.Errorf("movement finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if leadTimeDays <= 0 {
		leadTimeDays = 14
	}
	return &service{
		repo:         repo,
		intents:      intents,
		orders:       orderRepo,
		stock:        stock,
		movements:    movements,
		tx:           tx,
		outbox:       publisher,
		log:          log,
		metrics:      m,
		leadTimeDays: leadTimeDays,
	}, nil
}

// Allocate runs the two-step saga: a write-ahead intent row is recorded, the
// warehouse stock is reduced in its own transaction, and only then is the
// allocation row created. A failure after the reduce triggers a compensating
// restore; a failed restore leaves the intent in compensation_pending for the
// reconciler.
func (s *service) Allocate(ctx context.Context, input AllocateInput) (*models.Allocation, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.WarehouseLocation == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse location required")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusPendingAllocation {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot allocate an order in %s state", order.Status))
	}

	// One allocation per order. The repository stays permissive; this
	// existence check is the enforcement point.
	if _, err := s.repo.FindByOrderID(ctx, order.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already has an allocation")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing allocation")
	}

	// Write-ahead intent, durable before any inventory change.
	intent, err := s.intents.Create(ctx, &models.AllocationIntent{
		OrderID:           order.ID,
		VehicleModel:      order.VehicleModel,
		Color:             order.Color,
		WarehouseLocation: input.WarehouseLocation,
		Quantity:          order.Quantity,
		Status:            enums.AllocationIntentReducing,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record allocation intent")
	}

	started := time.Now()
	ctx = s.log.WithOrderID(ctx, order.ID.String())

	// Step one: reduce stock in its own transaction, tagged with the intent
	// id so the reconciler can find the movement after a crash.
	var item *models.InventoryItem
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reduced, err := s.stock.ReduceStock(ctx, tx, order.VehicleModel, order.Color, input.WarehouseLocation, order.Quantity, &intent.ID)
		if err != nil {
			return err
		}
		item = reduced
		return nil
	})
	if err != nil {
		if markErr := s.intents.MarkAborted(ctx, intent.ID, err.Error()); markErr != nil {
			s.log.Error(ctx, "failed to mark allocation intent aborted", markErr)
		}
		s.metrics.Observe(metrics.OutcomeAborted, time.Since(started))
		return nil, err
	}

	// Step two: create the allocation and flip the order, all-or-nothing.
	allocation, err := s.commitAllocation(ctx, order, intent, input.ActorUserID)
	if err == nil {
		s.metrics.Observe(metrics.OutcomeCommitted, time.Since(started))
		return allocation, nil
	}

	// The stock is reduced but no allocation exists; compensate.
	compErr := s.compensate(ctx, intent, item.ID, order.Quantity, err.Error())
	if compErr != nil {
		s.log.Error(ctx, "allocation compensation failed, intent left pending", compErr)
		if markErr := s.intents.MarkCompensationPending(ctx, intent.ID, compErr.Error()); markErr != nil {
			s.log.Error(ctx, "failed to mark allocation intent compensation_pending", markErr)
		}
		if attErr := s.intents.IncrementAttempts(ctx, intent.ID, compErr.Error()); attErr != nil {
			s.log.Error(ctx, "failed to record compensation attempt", attErr)
		}
		s.metrics.Observe(metrics.OutcomeCompensationPending, time.Since(started))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocation failed and compensation is pending").
			WithDetails(map[string]any{"intent_id": intent.ID, "compensation": "pending"})
	}

	s.metrics.Observe(metrics.OutcomeCompensated, time.Since(started))
	return nil, err
}

func (s *service) commitAllocation(ctx context.Context, order *models.Order, intent *models.AllocationIntent, actorUserID uuid.UUID) (*models.Allocation, error) {
	now := time.Now().UTC()
	estimated := now.AddDate(0, 0, s.leadTimeDays)
	allocation := &models.Allocation{
		OrderID:           order.ID,
		DealerID:          order.DealerID,
		VehicleModel:      order.VehicleModel,
		Color:             order.Color,
		Quantity:          order.Quantity,
		WarehouseLocation: intent.WarehouseLocation,
		Status:            enums.AllocationStatusAllocated,
		EstimatedDelivery: &estimated,
		AllocatedAt:       now,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		allocRepo := s.repo.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)
		intentRepo := s.intents.WithTx(tx)

		created, err := allocRepo.Create(ctx, allocation)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create allocation")
		}
		allocation = created

		from := order.Status
		if from == enums.OrderStatusPending {
			moved, err := orderRepo.UpdateStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusPendingAllocation)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
			}
			if !moved {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently, retry")
			}
		}
		moved, err := orderRepo.UpdateStatus(ctx, order.ID, enums.OrderStatusPendingAllocation, enums.OrderStatusAllocated)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently, retry")
		}

		if err := intentRepo.MarkCommitted(ctx, intent.ID, allocation.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark intent committed")
		}

		actor := buildActor(actorUserID, order.DealerID)
		createdEvent := outbox.DomainEvent{
			EventType:     enums.EventAllocationCreated,
			AggregateType: enums.AggregateAllocation,
			AggregateID:   allocation.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.AllocationCreatedEvent{
				AllocationID:      allocation.ID,
				OrderID:           order.ID,
				DealerID:          order.DealerID,
				VehicleModel:      allocation.VehicleModel,
				Color:             allocation.Color,
				Quantity:          allocation.Quantity,
				WarehouseLocation: allocation.WarehouseLocation,
				EstimatedDelivery: allocation.EstimatedDelivery,
			},
		}
		if err := s.outbox.Emit(ctx, tx, createdEvent); err != nil {
			return err
		}
		statusChanged := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:  order.ID,
				DealerID: order.DealerID,
				From:     from,
				To:       enums.OrderStatusAllocated,
			},
		}
		return s.outbox.Emit(ctx, tx, statusChanged)
	})
	if err != nil {
		return nil, err
	}
	return allocation, nil
}

func (s *service) compensate(ctx context.Context, intent *models.AllocationIntent, itemID uuid.UUID, qty int, reason string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.stock.RestoreStock(ctx, tx, itemID, qty, &intent.ID, "allocation_compensation"); err != nil {
			return err
		}
		if err := s.intents.WithTx(tx).MarkCompensated(ctx, intent.ID, reason); err != nil {
			return err
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventAllocationCompensated,
			AggregateType: enums.AggregateAllocation,
			AggregateID:   intent.ID,
			Version:       1,
			Data: payloads.AllocationCompensatedEvent{
				IntentID:          intent.ID,
				OrderID:           intent.OrderID,
				VehicleModel:      intent.VehicleModel,
				Color:             intent.Color,
				WarehouseLocation: intent.WarehouseLocation,
				Quantity:          intent.Quantity,
				Reason:            reason,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Allocation, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "allocation id required")
	}
	allocation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "allocation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load allocation")
	}
	return allocation, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Allocation, string, error) {
	if input.Filters.Status != nil && !input.Filters.Status.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	rows, next, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list allocations")
	}
	return rows, next, nil
}

// UpdateStatus ships or delivers a committed allocation and drives the order
// to the matching state.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Allocation, error) {
	if input.AllocationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "allocation id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid allocation status")
	}

	allocation, err := s.Get(ctx, input.AllocationID)
	if err != nil {
		return nil, err
	}
	if allocation.Status == input.Status {
		return allocation, nil
	}

	var orderTo enums.OrderStatus
	switch {
	case allocation.Status == enums.AllocationStatusAllocated && input.Status == enums.AllocationStatusShipped:
		orderTo = enums.OrderStatusShipped
	case allocation.Status == enums.AllocationStatusShipped && input.Status == enums.AllocationStatusDelivered:
		orderTo = enums.OrderStatusDelivered
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move allocation from %s to %s", allocation.Status, input.Status))
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		allocRepo := s.repo.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		moved, err := allocRepo.UpdateStatus(ctx, allocation.ID, allocation.Status, input.Status, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update allocation status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "allocation changed concurrently, retry")
		}

		order, err := orderRepo.FindByID(ctx, allocation.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status.CanTransitionTo(orderTo) {
			moved, err := orderRepo.UpdateStatus(ctx, order.ID, order.Status, orderTo)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
			}
			if moved {
				event := outbox.DomainEvent{
					EventType:     enums.EventOrderStatusChanged,
					AggregateType: enums.AggregateOrder,
					AggregateID:   order.ID,
					Version:       1,
					Actor:         buildActor(input.ActorUserID, order.DealerID),
					Data: payloads.OrderStatusChangedEvent{
						OrderID:  order.ID,
						DealerID: order.DealerID,
						From:     order.Status,
						To:       orderTo,
					},
				}
				if err := s.outbox.Emit(ctx, tx, event); err != nil {
					return err
				}
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventAllocationStatusChanged,
			AggregateType: enums.AggregateAllocation,
			AggregateID:   allocation.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, allocation.DealerID),
			Data: payloads.AllocationStatusChangedEvent{
				AllocationID: allocation.ID,
				OrderID:      allocation.OrderID,
				From:         allocation.Status,
				To:           input.Status,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	allocation.Status = input.Status
	switch input.Status {
	case enums.AllocationStatusShipped:
		allocation.ShippedAt = &now
	case enums.AllocationStatusDelivered:
		allocation.DeliveredAt = &now
	}
	return allocation, nil
}

// ReleaseForOrder restores the allocated quantity back to the warehouse when
// an order is cancelled after allocation.
func (s *service) ReleaseForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for allocation release")
	}
	allocation, err := s.repo.WithTx(tx).FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load allocation")
	}
	if allocation.Status == enums.AllocationStatusDelivered {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "delivered allocations cannot be released")
	}

	// The intent holds the saga id that stamped the reserve movement, and
	// the movement holds the inventory row the stock came out of.
	intent, err := s.intents.FindByAllocationID(ctx, allocation.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve allocation intent")
	}
	movement, err := s.movements.FindMovementByReference(ctx, intent.ID, "allocation_reserve")
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve reserved inventory item")
	}
	if reason == "" {
		reason = "order_cancelled"
	}
	return s.stock.RestoreStock(ctx, tx, movement.InventoryItemID, allocation.Quantity, &allocation.ID, reason)
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
