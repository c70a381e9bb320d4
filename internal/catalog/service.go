package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/evdock/evdock-backend/pkg/db"
	"github.com/evdock/evdock-backend/pkg/db/models"
	pkgerrors "github.com/evdock/evdock-backend/pkg/errors"
)

// Service defines catalog-level operations.
type Service interface {
	Create(ctx context.Context, input CreateVehicleInput) (*models.Vehicle, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, input ListInput) ([]models.Vehicle, string, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*models.Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// UnitPriceCents resolves the effective unit price for a model/color
	// pair: base price plus the color surcharge when the color is known.
	UnitPriceCents(ctx context.Context, vehicleModel, color string) (int64, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateVehicleInput) (*models.Vehicle, error) {
	if strings.TrimSpace(input.Model) == "" || strings.TrimSpace(input.Trim) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model and trim required")
	}
	if !input.Segment.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle segment")
	}
	if input.BasePriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
	}
	for _, color := range input.Colors {
		if strings.TrimSpace(color.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "color name required")
		}
		if color.SurchargeCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "color surcharge cannot be negative")
		}
	}

	vehicle := &models.Vehicle{
		Model:          strings.TrimSpace(input.Model),
		Trim:           strings.TrimSpace(input.Trim),
		Segment:        input.Segment,
		BatteryKWh:     input.BatteryKWh,
		RangeKM:        input.RangeKM,
		MotorPowerKW:   input.MotorPowerKW,
		BasePriceCents: input.BasePriceCents,
		IsActive:       true,
		ReleasedAt:     input.ReleasedAt,
	}
	for _, color := range input.Colors {
		vehicle.Colors = append(vehicle.Colors, models.VehicleColor{
			Name:           strings.TrimSpace(color.Name),
			SurchargeCents: color.SurchargeCents,
		})
	}

	created, err := s.repo.Create(ctx, vehicle)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_vehicles_model_trim") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a vehicle with this model and trim already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Vehicle, string, error) {
	if input.Filters.Segment != nil && !input.Filters.Segment.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid segment filter")
	}
	rows, next, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	return rows, next, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*models.Vehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}

	fields := map[string]any{}
	if input.Trim != nil {
		if strings.TrimSpace(*input.Trim) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "trim cannot be empty")
		}
		fields["trim"] = strings.TrimSpace(*input.Trim)
	}
	if input.BatteryKWh != nil {
		fields["battery_kwh"] = *input.BatteryKWh
	}
	if input.RangeKM != nil {
		fields["range_km"] = *input.RangeKM
	}
	if input.MotorPowerKW != nil {
		fields["motor_power_kw"] = *input.MotorPowerKW
	}
	if input.BasePriceCents != nil {
		if *input.BasePriceCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
		}
		fields["base_price_cents"] = *input.BasePriceCents
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	vehicle, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		if dbpkg.IsUniqueViolation(err, "ux_vehicles_model_trim") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a vehicle with this model and trim already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
	}
	return vehicle, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicle")
	}
	return nil
}

func (s *service) UnitPriceCents(ctx context.Context, vehicleModel, color string) (int64, error) {
	vehicle, err := s.repo.FindActiveByModel(ctx, strings.TrimSpace(vehicleModel))
	if err != nil {
		return 0, err
	}
	price := vehicle.BasePriceCents
	wanted := strings.ToLower(strings.TrimSpace(color))
	for _, option := range vehicle.Colors {
		if strings.ToLower(option.Name) == wanted {
			price += option.SurchargeCents
			break
		}
	}
	return price, nil
}
