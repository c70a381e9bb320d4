package allocations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
	"github.com/evdock/evdock-backend/pkg/logger"
	"github.com/evdock/evdock-backend/pkg/metrics"
	"github.com/evdock/evdock-backend/pkg/outbox"
	"github.com/evdock/evdock-backend/pkg/outbox/payloads"
)

const reconcileBatchSize = 50

// ReconcilerConfig tunes the intent sweeper.
type ReconcilerConfig struct {
	Interval                time.Duration
	StaleAfter              time.Duration
	MaxCompensationAttempts int
}

// Reconciler sweeps allocation intents that a crash or a failed compensation
// left in a non-terminal state and drives each to its correct outcome.
type Reconciler struct {
	intents   IntentRepository
	stock     StockKeeper
	movements MovementFinder
	tx        txRunner
	outbox    outboxPublisher
	log       *logger.Logger
	metrics   *metrics.AllocationMetrics
	cfg       ReconcilerConfig
}

// NewReconciler builds the intent reconciler.
func NewReconciler(intents IntentRepository, stock StockKeeper, movements MovementFinder, tx txRunner, publisher outboxPublisher, log *logger.Logger, m *metrics.AllocationMetrics, cfg ReconcilerConfig) (*Reconciler, error) {
	if intents == nil || stock == nil || movements == nil || tx == nil || publisher == nil || log == nil {
		return nil, fmt.Errorf("reconciler missing a dependency")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 5 * time.Minute
	}
	if cfg.MaxCompensationAttempts <= 0 {
		cfg.MaxCompensationAttempts = 5
	}
	return &Reconciler{
		intents:   intents,
		stock:     stock,
		movements: movements,
		tx:        tx,
		outbox:    publisher,
		log:       log,
		metrics:   m,
		cfg:       cfg,
	}, nil
}

// Run sweeps on the configured interval until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.ReconcileOnce(ctx); err != nil {
				r.log.Error(ctx, "allocation reconcile sweep failed", err)
			}
		}
	}
}

// ReconcileOnce processes one batch of stale reducing intents and one batch
// of pending compensations.
func (r *Reconciler) ReconcileOnce(ctx context.Context) error {
	if err := r.sweepStaleReducing(ctx); err != nil {
		return err
	}
	return r.retryPendingCompensations(ctx)
}

// sweepStaleReducing resolves intents stuck in reducing. If inventory was
// never touched the intent is aborted; if stock came out but no allocation
// exists the stock is restored.
func (r *Reconciler) sweepStaleReducing(ctx context.Context) error {
	cutoff := time.Now().Add(-r.cfg.StaleAfter)
	stale, err := r.intents.FindStaleReducing(ctx, cutoff, reconcileBatchSize)
	if err != nil {
		return fmt.Errorf("find stale intents: %w", err)
	}
	for i := range stale {
		intent := stale[i]
		if err := r.resolveStaleIntent(ctx, &intent); err != nil {
			r.log.Error(ctx, "failed to resolve stale allocation intent", err)
		}
	}
	return nil
}

func (r *Reconciler) resolveStaleIntent(ctx context.Context, intent *models.AllocationIntent) error {
	// The reserve movement referencing this intent is the ground truth for
	// whether stock moved. An allocation on the order proves nothing here:
	// the saga commits the allocation and marks its intent in one
	// transaction, so a live allocation belongs to some other intent.
	movement, err := r.movements.FindMovementByReference(ctx, intent.ID, "allocation_reserve")
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if markErr := r.intents.MarkAborted(ctx, intent.ID, "no stock movement recorded"); markErr != nil {
			return fmt.Errorf("mark aborted: %w", markErr)
		}
		r.metrics.Observe(metrics.OutcomeAborted, time.Since(intent.CreatedAt))
		return nil
	}
	if err != nil {
		return fmt.Errorf("find reserve movement: %w", err)
	}

	// The saga may have finished while this sweep was underway.
	current, err := r.intents.FindByID(ctx, intent.ID)
	if err != nil {
		return fmt.Errorf("reload intent: %w", err)
	}
	if current.Status != enums.AllocationIntentReducing {
		return nil
	}

	if err := r.restore(ctx, intent, movement, "reconciled stale intent"); err != nil {
		if attErr := r.intents.IncrementAttempts(ctx, intent.ID, err.Error()); attErr != nil {
			r.log.Error(ctx, "failed to record compensation attempt", attErr)
		}
		if markErr := r.intents.MarkCompensationPending(ctx, intent.ID, err.Error()); markErr != nil {
			r.log.Error(ctx, "failed to mark intent compensation_pending", markErr)
		}
		r.metrics.Observe(metrics.OutcomeCompensationPending, time.Since(intent.CreatedAt))
		return fmt.Errorf("restore stock: %w", err)
	}
	r.metrics.Observe(metrics.OutcomeCompensated, time.Since(intent.CreatedAt))
	return nil
}

// retryPendingCompensations re-attempts restores that previously failed,
// bounded by the configured attempt cap.
func (r *Reconciler) retryPendingCompensations(ctx context.Context) error {
	pending, err := r.intents.FindCompensationPending(ctx, r.cfg.MaxCompensationAttempts, reconcileBatchSize)
	if err != nil {
		return fmt.Errorf("find pending compensations: %w", err)
	}
	for i := range pending {
		intent := pending[i]
		movement, err := r.movements.FindMovementByReference(ctx, intent.ID, "allocation_reserve")
		if err != nil {
			r.log.Error(ctx, "pending compensation has no reserve movement", err)
			continue
		}
		reason := "reconciled pending compensation"
		if intent.LastError != nil {
			reason = *intent.LastError
		}
		if err := r.restore(ctx, &intent, movement, reason); err != nil {
			if attErr := r.intents.IncrementAttempts(ctx, intent.ID, err.Error()); attErr != nil {
				r.log.Error(ctx, "failed to record compensation attempt", attErr)
			}
			r.log.Error(ctx, "compensation retry failed", err)
			continue
		}
		r.metrics.Observe(metrics.OutcomeCompensated, time.Since(intent.CreatedAt))
	}
	return nil
}

func (r *Reconciler) restore(ctx context.Context, intent *models.AllocationIntent, movement *models.StockMovement, reason string) error {
	return r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := r.stock.RestoreStock(ctx, tx, movement.InventoryItemID, intent.Quantity, &intent.ID, "allocation_compensation"); err != nil {
			return err
		}
		if err := r.intents.WithTx(tx).MarkCompensated(ctx, intent.ID, reason); err != nil {
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
		return r.outbox.Emit(ctx, tx, event)
	})
}
