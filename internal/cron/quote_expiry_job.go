package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/evdock/evdock-backend/pkg/logger"
)

// QuoteExpiryJobParams configure the stale quotation sweep.
type QuoteExpiryJobParams struct {
	Logger     *logger.Logger
	Repository quoteExpirer
}

type quoteExpirer interface {
	ExpireIssuedBefore(ctx context.Context, now time.Time) (int64, error)
}

// NewQuoteExpiryJob builds the job that expires issued quotes past their
// validity window.
func NewQuoteExpiryJob(params QuoteExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	return &quoteExpiryJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type quoteExpiryJob struct {
	logg *logger.Logger
	repo quoteExpirer
	now  func() time.Time
}

func (j *quoteExpiryJob) Name() string { return "quote-expiry" }

func (j *quoteExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	expired, err := j.repo.ExpireIssuedBefore(ctx, now)
	if err != nil {
		return fmt.Errorf("quote expiry: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":        now,
		"rows_expired": expired,
	})
	j.logg.Info(logCtx, "quote expiry sweep complete")
	return nil
}
