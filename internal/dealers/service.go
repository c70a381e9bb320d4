package dealers

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
)

// Service defines dealer-level operations.
type Service interface {
	Create(ctx context.Context, input CreateDealerInput) (*models.Dealer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
	List(ctx context.Context, input ListInput) ([]models.Dealer, string, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateDealerInput) (*models.Dealer, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID backs the order service's dealer lookup.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
}

type service struct {
	repo Repository
}

// NewService builds a dealer service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dealers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateDealerInput) (*models.Dealer, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" || strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Region) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code, name and region required")
	}
	tier := input.Tier
	if tier == "" {
		tier = enums.DealerTierStandard
	}
	if !tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid dealer tier")
	}
	if input.CreditLimitCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit limit cannot be negative")
	}

	dealer := &models.Dealer{
		Code:             code,
		Name:             strings.TrimSpace(input.Name),
		Region:           strings.TrimSpace(input.Region),
		Address:          input.Address,
		Phone:            input.Phone,
		Email:            input.Email,
		Status:           enums.DealerStatusActive,
		Tier:             tier,
		CreditLimitCents: input.CreditLimitCents,
	}

	created, err := s.repo.Create(ctx, dealer)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_dealers_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a dealer with this code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create dealer")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	return s.FindByID(ctx, id)
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dealer id required")
	}
	dealer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
	}
	return dealer, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Dealer, string, error) {
	if input.Filters.Status != nil && !input.Filters.Status.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if input.Filters.Tier != nil && !input.Filters.Tier.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid tier filter")
	}
	rows, next, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dealers")
	}
	return rows, next, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateDealerInput) (*models.Dealer, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dealer id required")
	}

	fields := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Region != nil {
		fields["region"] = strings.TrimSpace(*input.Region)
	}
	if input.Address != nil {
		fields["address"] = *input.Address
	}
	if input.Phone != nil {
		fields["phone"] = *input.Phone
	}
	if input.Email != nil {
		fields["email"] = *input.Email
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid dealer status")
		}
		fields["status"] = *input.Status
	}
	if input.Tier != nil {
		if !input.Tier.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid dealer tier")
		}
		fields["tier"] = *input.Tier
	}
	if input.CreditLimitCents != nil {
		if *input.CreditLimitCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit limit cannot be negative")
		}
		fields["credit_limit_cents"] = *input.CreditLimitCents
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	dealer, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update dealer")
	}
	return dealer, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "dealer id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete dealer")
	}
	return nil
}
