package dealers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
	pkgerrors "github.com/evdock/evdock-backend/pkg/errors"
)

type stubDealerRepo struct {
	dealers map[uuid.UUID]*models.Dealer
	byCode  map[string]*models.Dealer
}

func newStubDealerRepo() *stubDealerRepo {
	return &stubDealerRepo{
		dealers: make(map[uuid.UUID]*models.Dealer),
		byCode:  make(map[string]*models.Dealer),
	}
}

func (s *stubDealerRepo) seed(dealer *models.Dealer) *models.Dealer {
	if dealer.ID == uuid.Nil {
		dealer.ID = uuid.New()
	}
	s.dealers[dealer.ID] = dealer
	s.byCode[dealer.Code] = dealer
	return dealer
}

func (s *stubDealerRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubDealerRepo) Create(ctx context.Context, dealer *models.Dealer) (*models.Dealer, error) {
	if _, exists := s.byCode[dealer.Code]; exists {
		return nil, gorm.ErrDuplicatedKey
	}
	return s.seed(dealer), nil
}

func (s *stubDealerRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	dealer, ok := s.dealers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return dealer, nil
}

func (s *stubDealerRepo) FindByCode(ctx context.Context, code string) (*models.Dealer, error) {
	dealer, ok := s.byCode[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return dealer, nil
}

func (s *stubDealerRepo) List(ctx context.Context, input ListInput) ([]models.Dealer, string, error) {
	rows := make([]models.Dealer, 0, len(s.dealers))
	for _, dealer := range s.dealers {
		rows = append(rows, *dealer)
	}
	return rows, "", nil
}

func (s *stubDealerRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Dealer, error) {
	dealer, ok := s.dealers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if status, ok := fields["status"].(enums.DealerStatus); ok {
		dealer.Status = status
	}
	return dealer, nil
}

func (s *stubDealerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.dealers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.dealers, id)
	return nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateDefaultsAndNormalizesCode(t *testing.T) {
	repo := newStubDealerRepo()
	svc := newTestService(t, repo)

	dealer, err := svc.Create(context.Background(), CreateDealerInput{
		Code:   " hn-01 ",
		Name:   "Thang Long EV",
		Region: "north",
	})
	if err != nil {
		t.Fatalf("create dealer: %v", err)
	}
	if dealer.Code != "HN-01" {
		t.Fatalf("expected normalized code HN-01, got %q", dealer.Code)
	}
	if dealer.Status != enums.DealerStatusActive {
		t.Fatalf("expected new dealer to be active, got %s", dealer.Status)
	}
	if dealer.Tier != enums.DealerTierStandard {
		t.Fatalf("expected default standard tier, got %s", dealer.Tier)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, newStubDealerRepo())

	cases := []CreateDealerInput{
		{Name: "No Code", Region: "north"},
		{Code: "HN-01", Region: "north"},
		{Code: "HN-01", Name: "No Region"},
		{Code: "HN-01", Name: "Bad Tier", Region: "north", Tier: enums.DealerTier("diamond")},
		{Code: "HN-01", Name: "Negative", Region: "north", CreditLimitCents: -1},
	}
	for i, input := range cases {
		_, err := svc.Create(context.Background(), input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestUpdateStatusValidatesEnum(t *testing.T) {
	repo := newStubDealerRepo()
	dealer := repo.seed(&models.Dealer{Code: "HN-01", Name: "Thang Long EV", Region: "north", Status: enums.DealerStatusActive, Tier: enums.DealerTierStandard})
	svc := newTestService(t, repo)

	bad := enums.DealerStatus("frozen")
	_, err := svc.Update(context.Background(), dealer.ID, UpdateDealerInput{Status: &bad})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	suspended := enums.DealerStatusSuspended
	updated, err := svc.Update(context.Background(), dealer.ID, UpdateDealerInput{Status: &suspended})
	if err != nil {
		t.Fatalf("update dealer: %v", err)
	}
	if updated.Status != enums.DealerStatusSuspended {
		t.Fatalf("expected suspended, got %s", updated.Status)
	}
}

func TestDeleteUnknownDealer(t *testing.T) {
	svc := newTestService(t, newStubDealerRepo())

	err := svc.Delete(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
