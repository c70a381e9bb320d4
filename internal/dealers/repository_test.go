package dealers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:dlr_%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Dealer{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func mustCreateDealer(t *testing.T, repo Repository, code, region string) *models.Dealer {
	t.Helper()
	dealer, err := repo.Create(context.Background(), &models.Dealer{
		ID:     uuid.New(),
		Code:   code,
		Name:   "Dealer " + code,
		Region: region,
		Status: enums.DealerStatusActive,
		Tier:   enums.DealerTierStandard,
	})
	if err != nil {
		t.Fatalf("create dealer: %v", err)
	}
	return dealer
}

func TestCodeIsUnique(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	mustCreateDealer(t, repo, "HN-01", "north")
	_, err := repo.Create(ctx, &models.Dealer{
		ID:     uuid.New(),
		Code:   "HN-01",
		Name:   "Duplicate",
		Region: "north",
		Status: enums.DealerStatusActive,
		Tier:   enums.DealerTierStandard,
	})
	if err == nil {
		t.Fatal("expected duplicate code to be rejected")
	}
}

func TestFindByCode(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	created := mustCreateDealer(t, repo, "HCM-02", "south")
	got, err := repo.FindByCode(ctx, "HCM-02")
	if err != nil {
		t.Fatalf("find by code: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected dealer %s, got %s", created.ID, got.ID)
	}

	if _, err := repo.FindByCode(ctx, "MISSING"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestListFiltersByRegionAndStatus(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	mustCreateDealer(t, repo, "HN-01", "north")
	mustCreateDealer(t, repo, "HN-02", "north")
	suspended := mustCreateDealer(t, repo, "DN-01", "central")
	if _, err := repo.Update(ctx, suspended.ID, map[string]any{"status": enums.DealerStatusSuspended}); err != nil {
		t.Fatalf("suspend dealer: %v", err)
	}

	region := "north"
	rows, _, err := repo.List(ctx, ListInput{Filters: ListFilters{Region: &region}})
	if err != nil {
		t.Fatalf("list dealers: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 northern dealers, got %d", len(rows))
	}

	status := enums.DealerStatusSuspended
	rows, _, err = repo.List(ctx, ListInput{Filters: ListFilters{Status: &status}})
	if err != nil {
		t.Fatalf("list dealers: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != suspended.ID {
		t.Fatalf("expected the suspended dealer, got %d rows", len(rows))
	}
}

func TestUpdateMissingDealer(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	_, err := repo.Update(context.Background(), uuid.New(), map[string]any{"name": "ghost"})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}
