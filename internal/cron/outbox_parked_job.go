package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type parkedCounter interface {
	CountParked(ctx context.Context, maxAttempts int) (int64, error)
}

type OutboxParkedJobParams struct {
	Logger      *logger.Logger
	Repository  parkedCounter
	Metrics     *metrics.Cron
	MaxAttempts int
}

// NewOutboxParkedJob reports events the publisher stopped retrying.
func NewOutboxParkedJob(params OutboxParkedJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if params.MaxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be positive")
	}
	return &outboxParkedJob{
		logg:        params.Logger,
		repo:        params.Repository,
		metrics:     params.Metrics,
		maxAttempts: params.MaxAttempts,
	}, nil
}

type outboxParkedJob struct {
	logg        *logger.Logger
	repo        parkedCounter
	metrics     *metrics.Cron
	maxAttempts int
}

func (j *outboxParkedJob) Name() string { return "outbox-parked-audit" }

func (j *outboxParkedJob) Run(ctx context.Context) error {
	parked, err := j.repo.CountParked(ctx, j.maxAttempts)
	if err != nil {
		return fmt.Errorf("count parked outbox events: %w", err)
	}
	j.metrics.SetParked(parked)
	if parked > 0 {
		j.logg.Warn(j.logg.WithField(ctx, "parked_events", parked), "outbox events parked at max attempts")
	}
	return nil
}
