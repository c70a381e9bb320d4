package allocations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
)

// IntentRepository persists the write-ahead intent rows guarding the saga.
type IntentRepository interface {
	WithTx(tx *gorm.DB) IntentRepository
	Create(ctx context.Context, intent *models.AllocationIntent) (*models.AllocationIntent, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.AllocationIntent, error)
	FindByAllocationID(ctx context.Context, allocationID uuid.UUID) (*models.AllocationIntent, error)
	MarkCommitted(ctx context.Context, id uuid.UUID, allocationID uuid.UUID) error
	MarkCompensated(ctx context.Context, id uuid.UUID, reason string) error
	MarkCompensationPending(ctx context.Context, id uuid.UUID, reason string) error
	MarkAborted(ctx context.Context, id uuid.UUID, reason string) error
	IncrementAttempts(ctx context.Context, id uuid.UUID, lastError string) error
	FindStaleReducing(ctx context.Context, olderThan time.Time, limit int) ([]models.AllocationIntent, error)
	FindCompensationPending(ctx context.Context, maxAttempts int, limit int) ([]models.AllocationIntent, error)
}

type intentRepository struct {
	db *gorm.DB
}

// NewIntentRepository builds an intent repository bound to the provided DB.
func NewIntentRepository(db *gorm.DB) IntentRepository {
	return &intentRepository{db: db}
}

func (r *intentRepository) WithTx(tx *gorm.DB) IntentRepository {
	if tx == nil {
		return r
	}
	return &intentRepository{db: tx}
}

func (r *intentRepository) Create(ctx context.Context, intent *models.AllocationIntent) (*models.AllocationIntent, error) {
	if intent.Status == "" {
		intent.Status = enums.AllocationIntentReducing
	}
	if err := r.db.WithContext(ctx).Create(intent).Error; err != nil {
		return nil, err
	}
	return intent, nil
}

func (r *intentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.AllocationIntent, error) {
	var intent models.AllocationIntent
	if err := r.db.WithContext(ctx).First(&intent, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *intentRepository) FindByAllocationID(ctx context.Context, allocationID uuid.UUID) (*models.AllocationIntent, error) {
	var intent models.AllocationIntent
	if err := r.db.WithContext(ctx).First(&intent, "allocation_id = ?", allocationID).Error; err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *intentRepository) MarkCommitted(ctx context.Context, id uuid.UUID, allocationID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.AllocationIntent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        enums.AllocationIntentCommitted,
			"allocation_id": allocationID,
			"last_error":    nil,
		}).Error
}

func (r *intentRepository) MarkCompensated(ctx context.Context, id uuid.UUID, reason string) error {
	return r.setStatus(ctx, id, enums.AllocationIntentCompensated, reason)
}

func (r *intentRepository) MarkCompensationPending(ctx context.Context, id uuid.UUID, reason string) error {
	return r.setStatus(ctx, id, enums.AllocationIntentCompensationPending, reason)
}

func (r *intentRepository) MarkAborted(ctx context.Context, id uuid.UUID, reason string) error {
	return r.setStatus(ctx, id, enums.AllocationIntentAborted, reason)
}

func (r *intentRepository) setStatus(ctx context.Context, id uuid.UUID, status enums.AllocationIntentStatus, reason string) error {
	fields := map[string]any{"status": status}
	if reason != "" {
		fields["last_error"] = reason
	}
	return r.db.WithContext(ctx).Model(&models.AllocationIntent{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *intentRepository) IncrementAttempts(ctx context.Context, id uuid.UUID, lastError string) error {
	return r.db.WithContext(ctx).Model(&models.AllocationIntent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempt_count": gorm.Expr("attempt_count + 1"),
			"last_error":    lastError,
		}).Error
}

// FindStaleReducing returns intents that have sat in reducing longer than the
// cutoff, meaning the saga died between the write-ahead insert and a terminal
// mark.
func (r *intentRepository) FindStaleReducing(ctx context.Context, olderThan time.Time, limit int) ([]models.AllocationIntent, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.AllocationIntent
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", enums.AllocationIntentReducing, olderThan).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *intentRepository) FindCompensationPending(ctx context.Context, maxAttempts int, limit int) ([]models.AllocationIntent, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.AllocationIntentCompensationPending)
	if maxAttempts > 0 {
		query = query.Where("attempt_count < ?", maxAttempts)
	}
	var rows []models.AllocationIntent
	err := query.Order("updated_at ASC").Limit(limit).Find(&rows).Error
	return rows, err
}
