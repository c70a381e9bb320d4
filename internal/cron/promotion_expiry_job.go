package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/evdock/evdock-backend/pkg/logger"
)

// PromotionExpiryJobParams configure the campaign expiry sweep.
type PromotionExpiryJobParams struct {
	Logger     *logger.Logger
	Repository promotionExpirer
}

type promotionExpirer interface {
	ExpireEnded(ctx context.Context, now time.Time) (int64, error)
}

// NewPromotionExpiryJob builds the job that closes active campaigns whose
// window has ended.
func NewPromotionExpiryJob(params PromotionExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("promotions repository required")
	}
	return &promotionExpiryJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type promotionExpiryJob struct {
	logg *logger.Logger
	repo promotionExpirer
	now  func() time.Time
}

func (j *promotionExpiryJob) Name() string { return "promotion-expiry" }

func (j *promotionExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	expired, err := j.repo.ExpireEnded(ctx, now)
	if err != nil {
		return fmt.Errorf("promotion expiry: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":        now,
		"rows_expired": expired,
	})
	j.logg.Info(logCtx, "promotion expiry sweep complete")
	return nil
}
