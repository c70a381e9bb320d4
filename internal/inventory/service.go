package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/evdock/evdock-backend/pkg/db"
	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
	pkgerrors "github.com/evdock/evdock-backend/pkg/errors"
	"github.com/evdock/evdock-backend/pkg/outbox"
	"github.com/evdock/evdock-backend/pkg/outbox/payloads"
)

// MsgInsufficientStock is the canonical message surfaced to dealers when an
// allocation or adjustment asks for more vehicles than the warehouse holds.
const MsgInsufficientStock = "Không đủ xe trong kho"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines inventory-level operations beyond repository reads.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	ListItems(ctx context.Context, input ListInput) ([]models.InventoryItem, string, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.InventoryItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	Adjust(ctx context.Context, input AdjustInput) (*models.InventoryItem, error)
	ListMovements(ctx context.Context, itemID uuid.UUID, limit int) ([]models.StockMovement, error)
	CreateWarehouse(ctx context.Context, input CreateWarehouseInput) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)

	// ReduceStock and RestoreStock run inside a caller-owned transaction and
	// back the allocation saga.
	ReduceStock(ctx context.Context, tx *gorm.DB, vehicleModel, color, warehouse string, qty int, ref *uuid.UUID) (*models.InventoryItem, error)
	RestoreStock(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int, ref *uuid.UUID, reason string) error
}

type service struct {
	repo       Repository
	warehouses WarehouseRepository
	tx         txRunner
	outbox     outboxPublisher
}

// NewService builds an inventory service with the required dependencies.
func NewService(repo Repository, warehouses WarehouseRepository, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if warehouses == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:       repo,
		warehouses: warehouses,
		tx:         tx,
		outbox:     publisher,
	}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error) {
	if err := validateTuple(input.VehicleModel, input.Color, input.WarehouseLocation); err != nil {
		return nil, err
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	item := &models.InventoryItem{
		VehicleModel:      strings.TrimSpace(input.VehicleModel),
		Color:             strings.TrimSpace(input.Color),
		WarehouseLocation: strings.TrimSpace(input.WarehouseLocation),
		Quantity:          input.Quantity,
		PriceCents:        input.PriceCents,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.CreateItem(ctx, item)
		if err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_inventory_tuple") {
				return pkgerrors.New(pkgerrors.CodeConflict, "stock row already exists for this model, color and warehouse")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory item")
		}
		item = created
		if item.Quantity == 0 {
			return nil
		}
		movement := &models.StockMovement{
			InventoryItemID: item.ID,
			Delta:           item.Quantity,
			QuantityAfter:   item.Quantity,
			Reason:          "initial_stock",
		}
		if err := repo.RecordMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory item id required")
	}
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	return item, nil
}

func (s *service) ListItems(ctx context.Context, input ListInput) ([]models.InventoryItem, string, error) {
	if input.Filters.Status != nil && !input.Filters.Status.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory status filter")
	}
	rows, next, err := s.repo.ListItems(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory items")
	}
	return rows, next, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.InventoryItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory item id required")
	}
	fields := map[string]any{}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		fields["price_cents"] = *input.PriceCents
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	if err := s.repo.UpdateItem(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory item")
	}
	return s.GetItem(ctx, id)
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "inventory item id required")
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory item")
	}
	return nil
}

// Adjust applies a signed delta to a stock row. Negative deltas are guarded
// the same way allocation reductions are.
func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.InventoryItem, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory item id required")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta cannot be zero")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}

	var updated *models.InventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		if input.Delta > 0 {
			updated, err = repo.Restore(ctx, input.ItemID, input.Delta)
		} else {
			updated, err = repo.Reduce(ctx, input.ItemID, -input.Delta)
		}
		if err != nil {
			return mapReduceError(err)
		}

		movement := &models.StockMovement{
			InventoryItemID: updated.ID,
			Delta:           input.Delta,
			QuantityAfter:   updated.Quantity,
			Reason:          strings.TrimSpace(input.Reason),
			ReferenceID:     input.ReferenceID.Value,
		}
		if err := repo.RecordMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
		}

		return s.emitAdjusted(ctx, tx, updated, input.Delta, movement.Reason, input.ActorUserID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ListMovements(ctx context.Context, itemID uuid.UUID, limit int) ([]models.StockMovement, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory item id required")
	}
	rows, err := s.repo.ListMovements(ctx, itemID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	return rows, nil
}

func (s *service) CreateWarehouse(ctx context.Context, input CreateWarehouseInput) (*models.Warehouse, error) {
	if strings.TrimSpace(input.Code) == "" || strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse code and name required")
	}
	if strings.TrimSpace(input.Region) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse region required")
	}

	warehouse := &models.Warehouse{
		Code:    strings.TrimSpace(input.Code),
		Name:    strings.TrimSpace(input.Name),
		Region:  strings.TrimSpace(input.Region),
		Address: input.Address,
	}
	created, err := s.warehouses.Create(ctx, warehouse)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "warehouse code already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create warehouse")
	}
	return created, nil
}

func (s *service) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	rows, err := s.warehouses.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warehouses")
	}
	return rows, nil
}

func (s *service) ReduceStock(ctx context.Context, tx *gorm.DB, vehicleModel, color, warehouse string, qty int, ref *uuid.UUID) (*models.InventoryItem, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock reduction")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reduction quantity must be positive")
	}

	repo := s.repo.WithTx(tx)
	item, err := repo.FindItemByTuple(ctx, vehicleModel, color, warehouse)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No such tuple is a lookup miss, not a shortfall.
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found").WithDetails(map[string]any{
				"vehicle_model": vehicleModel,
				"color":         color,
				"warehouse":     warehouse,
			})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}

	reduced, err := repo.Reduce(ctx, item.ID, qty)
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, MsgInsufficientStock).WithDetails(map[string]any{
				"vehicle_model": vehicleModel,
				"color":         color,
				"warehouse":     warehouse,
				"requested":     qty,
				"available":     item.Quantity,
			})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reduce stock")
	}

	movement := &models.StockMovement{
		InventoryItemID: reduced.ID,
		Delta:           -qty,
		QuantityAfter:   reduced.Quantity,
		Reason:          "allocation_reserve",
		ReferenceID:     ref,
	}
	if err := repo.RecordMovement(ctx, movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}
	return reduced, nil
}

func (s *service) RestoreStock(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int, ref *uuid.UUID, reason string) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock restore")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "restore quantity must be positive")
	}

	repo := s.repo.WithTx(tx)
	restored, err := repo.Restore(ctx, itemID, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
	}

	if reason == "" {
		reason = "allocation_compensation"
	}
	movement := &models.StockMovement{
		InventoryItemID: restored.ID,
		Delta:           qty,
		QuantityAfter:   restored.Quantity,
		Reason:          reason,
		ReferenceID:     ref,
	}
	if err := repo.RecordMovement(ctx, movement); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}
	return nil
}

func (s *service) emitAdjusted(ctx context.Context, tx *gorm.DB, item *models.InventoryItem, delta int, reason string, actorUserID uuid.UUID) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventInventoryAdjusted,
		AggregateType: enums.AggregateInventory,
		AggregateID:   item.ID,
		Version:       1,
		Data: payloads.InventoryAdjustedEvent{
			InventoryItemID: item.ID,
			VehicleModel:    item.VehicleModel,
			Color:           item.Color,
			Warehouse:       item.WarehouseLocation,
			Delta:           delta,
			QuantityAfter:   item.Quantity,
			Status:          item.Status,
			Reason:          reason,
		},
	}
	if actorUserID != uuid.Nil {
		event.Actor = &outbox.ActorRef{UserID: actorUserID}
	}
	return s.outbox.Emit(ctx, tx, event)
}

func mapReduceError(err error) error {
	if errors.Is(err, ErrInsufficientStock) {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, MsgInsufficientStock)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
}

func validateTuple(vehicleModel, color, warehouse string) error {
	if strings.TrimSpace(vehicleModel) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle model required")
	}
	if strings.TrimSpace(color) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "color required")
	}
	if strings.TrimSpace(warehouse) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "warehouse location required")
	}
	return nil
}
