package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
	"github.com/evdock/evdock-backend/pkg/pagination"
)

// ErrInsufficientStock is returned by Reduce when the conditional update
// matches no row because the quantity on hand is too small.
var ErrInsufficientStock = errors.New("insufficient stock for reduction")

// Repository defines persistence operations for stock rows and movements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	FindItemByTuple(ctx context.Context, vehicleModel, color, warehouse string) (*models.InventoryItem, error)
	ListItems(ctx context.Context, input ListInput) ([]models.InventoryItem, string, error)
	UpdateItem(ctx context.Context, id uuid.UUID, fields map[string]any) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	Reduce(ctx context.Context, id uuid.UUID, qty int) (*models.InventoryItem, error)
	Restore(ctx context.Context, id uuid.UUID, qty int) (*models.InventoryItem, error)
	RecordMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, itemID uuid.UUID, limit int) ([]models.StockMovement, error)
	FindMovementByReference(ctx context.Context, referenceID uuid.UUID, reason string) (*models.StockMovement, error)
}

// WarehouseRepository exposes stocking location persistence.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error)
	FindByCode(ctx context.Context, code string) (*models.Warehouse, error)
	List(ctx context.Context) ([]models.Warehouse, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	item.Status = enums.DeriveInventoryStatus(item.Quantity)
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemByTuple(ctx context.Context, vehicleModel, color, warehouse string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("vehicle_model = ? AND color = ? AND warehouse_location = ?", vehicleModel, color, warehouse).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, input ListInput) ([]models.InventoryItem, string, error) {
	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	query := r.db.WithContext(ctx).Model(&models.InventoryItem{})

	if input.Filters.VehicleModel != "" {
		query = query.Where("vehicle_model = ?", input.Filters.VehicleModel)
	}
	if input.Filters.Warehouse != "" {
		query = query.Where("warehouse_location = ?", input.Filters.Warehouse)
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

	var rows []models.InventoryItem
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

func (r *repository) UpdateItem(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.InventoryItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Reduce decrements the quantity with a guarded UPDATE so two concurrent
// allocations can never drive the row negative. The status column is
// recomputed from the resulting quantity in the same transaction.
func (r *repository) Reduce(ctx context.Context, id uuid.UUID, qty int) (*models.InventoryItem, error) {
	if qty <= 0 {
		return nil, errors.New("reduction quantity must be positive")
	}

	res := r.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindItemByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientStock
	}

	return r.refreshStatus(ctx, id)
}

// Restore returns previously reduced stock, recomputing the derived status.
func (r *repository) Restore(ctx context.Context, id uuid.UUID, qty int) (*models.InventoryItem, error) {
	if qty <= 0 {
		return nil, errors.New("restore quantity must be positive")
	}

	res := r.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.refreshStatus(ctx, id)
}

func (r *repository) refreshStatus(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	item, err := r.FindItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	status := enums.DeriveInventoryStatus(item.Quantity)
	if status != item.Status {
		if err := r.db.WithContext(ctx).Model(&models.InventoryItem{}).
			Where("id = ?", id).
			Update("status", status).Error; err != nil {
			return nil, err
		}
		item.Status = status
	}
	return item, nil
}

func (r *repository) RecordMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, itemID uuid.UUID, limit int) ([]models.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("inventory_item_id = ?", itemID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindMovementByReference(ctx context.Context, referenceID uuid.UUID, reason string) (*models.StockMovement, error) {
	var movement models.StockMovement
	err := r.db.WithContext(ctx).
		Where("reference_id = ? AND reason = ?", referenceID, reason).
		Order("created_at DESC").
		First(&movement).Error
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

type warehouseRepository struct {
	db *gorm.DB
}

// NewWarehouseRepository builds a warehouse repository bound to the provided DB.
func NewWarehouseRepository(db *gorm.DB) WarehouseRepository {
	return &warehouseRepository{db: db}
}

func (r *warehouseRepository) Create(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error) {
	if err := r.db.WithContext(ctx).Create(warehouse).Error; err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (r *warehouseRepository) FindByCode(ctx context.Context, code string) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&warehouse).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *warehouseRepository) List(ctx context.Context) ([]models.Warehouse, error) {
	var rows []models.Warehouse
	err := r.db.WithContext(ctx).Order("code ASC").Find(&rows).Error
	return rows, err
}
