package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	day                        = 24 * time.Hour
	defaultOutboxRetentionDays = 30
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type purgeFunc func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)

// purgeJob deletes rows older than window inside a single transaction.
type purgeJob struct {
	name   string
	logg   *logger.Logger
	db     txRunner
	window time.Duration
	purge  purgeFunc
	now    func() time.Time
}

type OutboxRetentionJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Repository    outboxRetentionRepo
	RetentionDays int
}

// NewOutboxRetentionJob purges published outbox rows older than the retention
// window. Pending and parked rows are kept.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	var errs []error
	if params.Logger == nil {
		errs = append(errs, errors.New("logger required"))
	}
	if params.DB == nil {
		errs = append(errs, errors.New("db runner required"))
	}
	if params.Repository == nil {
		errs = append(errs, errors.New("outbox repository required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	days := params.RetentionDays
	if days <= 0 {
		days = defaultOutboxRetentionDays
	}
	return &purgeJob{
		name:   "outbox-retention",
		logg:   params.Logger,
		db:     params.DB,
		window: time.Duration(days) * day,
		purge:  params.Repository.DeletePublishedBefore,
		now:    time.Now,
	}, nil
}

func (j *purgeJob) Name() string { return j.name }

func (j *purgeJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.window)

	var deleted int64
	if err := j.db.WithTx(ctx, func(tx *gorm.DB) (err error) {
		deleted, err = j.purge(ctx, tx, cutoff)
		return err
	}); err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff.Format(time.RFC3339),
		"window_hours": int(j.window / time.Hour),
		"rows_deleted": deleted,
	}), "retention purge finished")
	return nil
}
