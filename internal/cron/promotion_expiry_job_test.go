package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evdock/evdock-backend/pkg/logger"
)

type fakePromotionExpirer struct {
	lastNow time.Time
	rows    int64
	err     error
}

func (f *fakePromotionExpirer) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	f.lastNow = now
	return f.rows, f.err
}

func TestPromotionExpiryJobSweeps(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakePromotionExpirer{rows: 3}
	jobIface, err := NewPromotionExpiryJob(PromotionExpiryJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewPromotionExpiryJob: %v", err)
	}
	job := jobIface.(*promotionExpiryJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !repo.lastNow.Equal(now) {
		t.Fatalf("expected sweep at %s, got %s", now, repo.lastNow)
	}
}

func TestPromotionExpiryJobPropagatesError(t *testing.T) {
	repo := &fakePromotionExpirer{err: errors.New("boom")}
	jobIface, err := NewPromotionExpiryJob(PromotionExpiryJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewPromotionExpiryJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
