package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:ord_%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Order{}))
	return conn
}

func mustCreateOrder(t *testing.T, repo Repository, dealerID uuid.UUID, status enums.OrderStatus) *models.Order {
	t.Helper()
	order, err := repo.Create(context.Background(), &models.Order{
		ID:              uuid.New(),
		DealerID:        dealerID,
		DealerName:      "Thang Long EV",
		VehicleModel:    "VF 8",
		Color:           "white",
		Quantity:        3,
		Status:          status,
		Priority:        enums.OrderPriorityMedium,
		TotalValueCents: 13_500_000_00,
		OrderDate:       time.Now().UTC(),
	})
	require.NoError(t, err)
	return order
}

func TestUpdateStatusGuardsOnCurrentState(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	order := mustCreateOrder(t, repo, uuid.New(), enums.OrderStatusPending)

	moved, err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusPendingAllocation)
	require.NoError(t, err)
	assert.True(t, moved, "transition from the actual current state should apply")

	// A second writer that still believes the order is pending loses.
	moved, err = repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusAllocated)
	require.NoError(t, err)
	assert.False(t, moved, "stale transition should affect zero rows")

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPendingAllocation, got.Status)
}

func TestMarkCancelledStampsTimestamp(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	order := mustCreateOrder(t, repo, uuid.New(), enums.OrderStatusPending)
	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.MarkCancelled(ctx, order.ID, at))

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CancelledAt)
	assert.True(t, got.CancelledAt.UTC().Equal(at), "expected cancelled_at %s, got %s", at, got.CancelledAt.UTC())
}

func TestListFiltersAndPaginates(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	dealerA := uuid.New()
	dealerB := uuid.New()
	for i := 0; i < 3; i++ {
		mustCreateOrder(t, repo, dealerA, enums.OrderStatusPending)
	}
	mustCreateOrder(t, repo, dealerB, enums.OrderStatusAllocated)

	rows, _, err := repo.List(ctx, ListInput{Filters: ListFilters{DealerID: &dealerA}})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	status := enums.OrderStatusAllocated
	rows, _, err = repo.List(ctx, ListInput{Filters: ListFilters{Status: &status}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, dealerB, rows[0].DealerID)
}

func TestListCursorWalksAllRows(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	dealerID := uuid.New()
	for i := 0; i < 5; i++ {
		mustCreateOrder(t, repo, dealerID, enums.OrderStatusPending)
	}

	seen := map[uuid.UUID]bool{}
	cursor := ""
	for {
		input := ListInput{Filters: ListFilters{DealerID: &dealerID}}
		input.Pagination.Limit = 2
		input.Pagination.Cursor = cursor

		rows, next, err := repo.List(ctx, input)
		require.NoError(t, err)
		for _, row := range rows {
			require.False(t, seen[row.ID], "order %s returned twice", row.ID)
			seen[row.ID] = true
		}
		if next == "" {
			break
		}
		cursor = next
	}
	assert.Len(t, seen, 5)
}
