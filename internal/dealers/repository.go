package dealers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/pagination"
)

// Repository defines persistence operations for dealers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dealer *models.Dealer) (*models.Dealer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
	FindByCode(ctx context.Context, code string) (*models.Dealer, error)
	List(ctx context.Context, input ListInput) ([]models.Dealer, string, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Dealer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a dealers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, dealer *models.Dealer) (*models.Dealer, error) {
	if err := r.db.WithContext(ctx).Create(dealer).Error; err != nil {
		return nil, err
	}
	return dealer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	var dealer models.Dealer
	if err := r.db.WithContext(ctx).First(&dealer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dealer, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Dealer, error) {
	var dealer models.Dealer
	if err := r.db.WithContext(ctx).First(&dealer, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &dealer, nil
}

func (r *repository) List(ctx context.Context, input ListInput) ([]models.Dealer, string, error) {
	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	query := r.db.WithContext(ctx).Model(&models.Dealer{})

	if input.Filters.Region != nil {
		query = query.Where("region = ?", *input.Filters.Region)
	}
	if input.Filters.Status != nil {
		query = query.Where("status = ?", *input.Filters.Status)
	}
	if input.Filters.Tier != nil {
		query = query.Where("tier = ?", *input.Filters.Tier)
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Dealer
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

func (r *repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Dealer, error) {
	res := r.db.WithContext(ctx).Model(&models.Dealer{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Dealer{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
