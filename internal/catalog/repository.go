package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/pagination"
)

// Repository defines persistence operations for the vehicle catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	FindByModelTrim(ctx context.Context, model, trim string) (*models.Vehicle, error)
	FindActiveByModel(ctx context.Context, model string) (*models.Vehicle, error)
	List(ctx context.Context, input ListInput) ([]models.Vehicle, string, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceColors(ctx context.Context, vehicleID uuid.UUID, colors []models.VehicleColor) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).Preload("Colors").First(&vehicle, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) FindByModelTrim(ctx context.Context, model, trim string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).Preload("Colors").
		First(&vehicle, "model = ? AND trim = ?", model, trim).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// FindActiveByModel resolves pricing lookups that only know the model name.
// When several trims share a model the cheapest active one wins.
func (r *repository) FindActiveByModel(ctx context.Context, model string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).Preload("Colors").
		Where("model = ? AND is_active = ?", model, true).
		Order("base_price_cents ASC").
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) List(ctx context.Context, input ListInput) ([]models.Vehicle, string, error) {
	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	query := r.db.WithContext(ctx).Model(&models.Vehicle{}).Preload("Colors")

	if input.Filters.Model != nil {
		query = query.Where("model = ?", *input.Filters.Model)
	}
	if input.Filters.Segment != nil {
		query = query.Where("segment = ?", *input.Filters.Segment)
	}
	if input.Filters.MaxPriceCents != nil {
		query = query.Where("base_price_cents <= ?", *input.Filters.MaxPriceCents)
	}
	if input.Filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Vehicle
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

func (r *repository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Vehicle, error) {
	res := r.db.WithContext(ctx).Model(&models.Vehicle{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Vehicle{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ReplaceColors(ctx context.Context, vehicleID uuid.UUID, colors []models.VehicleColor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.VehicleColor{}, "vehicle_id = ?", vehicleID).Error; err != nil {
			return err
		}
		if len(colors) == 0 {
			return nil
		}
		for i := range colors {
			colors[i].VehicleID = vehicleID
		}
		return tx.Create(&colors).Error
	})
}
