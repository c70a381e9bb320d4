package allocations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
	"github.com/evdock/evdock-backend/pkg/pagination"
)

// Repository defines persistence operations for allocations. It deliberately
// does not reject a second allocation for the same order; the service layer
// owns that rule.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, allocation *models.Allocation) (*models.Allocation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Allocation, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Allocation, error)
	List(ctx context.Context, input ListInput) ([]models.Allocation, string, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.AllocationStatus, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an allocations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, allocation *models.Allocation) (*models.Allocation, error) {
	if err := r.db.WithContext(ctx).Create(allocation).Error; err != nil {
		return nil, err
	}
	return allocation, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Allocation, error) {
	var allocation models.Allocation
	if err := r.db.WithContext(ctx).First(&allocation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &allocation, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Allocation, error) {
	var allocation models.Allocation
	if err := r.db.WithContext(ctx).First(&allocation, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &allocation, nil
}

func (r *repository) List(ctx context.Context, input ListInput) ([]models.Allocation, string, error) {
	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	query := r.db.WithContext(ctx).Model(&models.Allocation{})

	if input.Filters.OrderID != nil {
		query = query.Where("order_id = ?", *input.Filters.OrderID)
	}
	if input.Filters.DealerID != nil {
		query = query.Where("dealer_id = ?", *input.Filters.DealerID)
	}
	if input.Filters.Status != nil {
		query = query.Where("status = ?", *input.Filters.Status)
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Allocation
	if err := query.Order("created_at ASC").Order("id ASC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		last := rows[limit-1]
		rows = rows[:limit]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

// UpdateStatus performs a guarded single-row update and stamps the matching
// lifecycle timestamp.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.AllocationStatus, at time.Time) (bool, error) {
	fields := map[string]any{"status": to}
	switch to {
	case enums.AllocationStatusShipped:
		fields["shipped_at"] = at
	case enums.AllocationStatusDelivered:
		fields["delivered_at"] = at
	}
	res := r.db.WithContext(ctx).Model(&models.Allocation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
