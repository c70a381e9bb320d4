package promotions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
	"github.com/evdock/evdock-backend/pkg/pagination"
)

// Repository defines persistence operations for promotion campaigns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, promotion *models.Promotion) (*models.Promotion, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	List(ctx context.Context, input ListInput) ([]models.Promotion, string, error)
	ListActiveAt(ctx context.Context, at time.Time) ([]models.Promotion, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Promotion, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.PromotionStatus) (bool, error)
	ExpireEnded(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a promotions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, promotion *models.Promotion) (*models.Promotion, error) {
	if err := r.db.WithContext(ctx).Create(promotion).Error; err != nil {
		return nil, err
	}
	return promotion, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.WithContext(ctx).First(&promotion, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promotion, nil
}

func (r *repository) List(ctx context.Context, input ListInput) ([]models.Promotion, string, error) {
	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	query := r.db.WithContext(ctx).Model(&models.Promotion{})

	if input.Filters.Status != nil {
		query = query.Where("status = ?", *input.Filters.Status)
	}
	if input.Filters.VehicleModel != nil {
		query = query.Where("vehicle_model = ?", *input.Filters.VehicleModel)
	}
	if input.Filters.ActiveAt != nil {
		query = query.Where("status = ? AND starts_at <= ? AND ends_at > ?",
			enums.PromotionStatusActive, *input.Filters.ActiveAt, *input.Filters.ActiveAt)
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Promotion
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

func (r *repository) ListActiveAt(ctx context.Context, at time.Time) ([]models.Promotion, error) {
	var rows []models.Promotion
	err := r.db.WithContext(ctx).
		Where("status = ? AND starts_at <= ? AND ends_at > ?", enums.PromotionStatusActive, at, at).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Promotion, error) {
	res := r.db.WithContext(ctx).Model(&models.Promotion{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// UpdateStatus performs a guarded single-row update; the boolean reports
// whether the row moved.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.PromotionStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Promotion{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ExpireEnded flips active campaigns whose window has closed to expired.
func (r *repository) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Promotion{}).
		Where("status = ? AND ends_at <= ?", enums.PromotionStatusActive, now).
		Update("status", enums.PromotionStatusExpired)
	return res.RowsAffected, res.Error
}
