package promotions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/enums"
)

// promotionRow mirrors models.Promotion without the Postgres-only uuid[]
// column so the repository queries can run against sqlite.
type promotionRow struct {
	ID         uuid.UUID             `gorm:"column:id;primaryKey"`
	Name       string                `gorm:"column:name;not null"`
	Kind       enums.PromotionKind   `gorm:"column:kind;not null"`
	PercentOff decimal.Decimal       `gorm:"column:percent_off;type:numeric;not null"`
	Status     enums.PromotionStatus `gorm:"column:status;not null"`
	StartsAt   time.Time             `gorm:"column:starts_at;not null"`
	EndsAt     time.Time             `gorm:"column:ends_at;not null"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (promotionRow) TableName() string { return "promotions" }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:promo_%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&promotionRow{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func seedRow(t *testing.T, db *gorm.DB, status enums.PromotionStatus, endsAt time.Time) uuid.UUID {
	t.Helper()
	row := promotionRow{
		ID:         uuid.New(),
		Name:       "campaign",
		Kind:       enums.PromotionKindPercent,
		PercentOff: decimal.NewFromInt(10),
		Status:     status,
		StartsAt:   endsAt.Add(-24 * time.Hour),
		EndsAt:     endsAt,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed promotion: %v", err)
	}
	return row.ID
}

func TestUpdateStatusIsGuarded(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	id := seedRow(t, db, enums.PromotionStatusDraft, time.Now().Add(24*time.Hour))

	moved, err := repo.UpdateStatus(ctx, id, enums.PromotionStatusDraft, enums.PromotionStatusActive)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if !moved {
		t.Fatal("expected draft to activate")
	}

	moved, err = repo.UpdateStatus(ctx, id, enums.PromotionStatusDraft, enums.PromotionStatusPaused)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if moved {
		t.Fatal("expected stale transition to affect zero rows")
	}
}

func TestExpireEndedOnlyTouchesClosedWindows(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	ended := seedRow(t, db, enums.PromotionStatusActive, now.Add(-time.Hour))
	open := seedRow(t, db, enums.PromotionStatusActive, now.Add(time.Hour))
	seedRow(t, db, enums.PromotionStatusDraft, now.Add(-time.Hour))

	count, err := repo.ExpireEnded(ctx, now)
	if err != nil {
		t.Fatalf("expire ended: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 expired campaign, got %d", count)
	}

	var status string
	if err := db.Model(&promotionRow{}).Where("id = ?", ended).Pluck("status", &status).Error; err != nil {
		t.Fatalf("read status: %v", err)
	}
	if status != string(enums.PromotionStatusExpired) {
		t.Fatalf("expected expired, got %s", status)
	}
	if err := db.Model(&promotionRow{}).Where("id = ?", open).Pluck("status", &status).Error; err != nil {
		t.Fatalf("read status: %v", err)
	}
	if status != string(enums.PromotionStatusActive) {
		t.Fatalf("expected the open campaign to stay active, got %s", status)
	}
}
