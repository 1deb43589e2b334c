package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service drives orders through fulfillment and serves admin reads.
type Service interface {
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
	AttachTracking(ctx context.Context, input TrackingInput) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
}

// Options holds the optional collaborators of the order service.
type Options struct {
	Policy  TransitionPolicy
	Metrics *metrics.Storefront
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	policy  TransitionPolicy
	metrics *metrics.Storefront
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the order service. The policy defaults to permissive.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if opts.Policy == nil {
		opts.Policy = PermissivePolicy{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outbox,
		policy:  opts.Policy,
		metrics: opts.Metrics,
		logg:    opts.Logger,
		now:     opts.Now,
	}, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	requested, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": input.Status, "allowed": enums.OrderStatuses()})
	}

	var (
		order    *models.Order
		previous enums.OrderStatus
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := s.policy.Check(current.Status, requested); err != nil {
			return err
		}

		at := s.now().UTC()
		if err := repo.UpdateStatus(ctx, current.ID, current.Status, requested, at); err != nil {
			if errors.Is(err, ErrStatusChanged) {
				return pkgerrors.New(pkgerrors.CodeConflict, "order was updated concurrently")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		previous = current.Status
		current.Status = requested
		current.UpdatedAt = at
		order = current

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Version:       1,
			Actor:         input.Actor,
			OccurredAt:    at,
			Data: payloads.OrderStatusChangedEvent{
				OrderID: current.ID,
				From:    previous,
				To:      requested,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Transition(previous.String(), requested.String())
	if s.logg != nil {
		lctx := s.logg.WithOrderID(ctx, order.ID.String())
		lctx = s.logg.WithFields(lctx, map[string]any{
			"from":   previous,
			"to":     requested,
			"policy": s.policy.Name(),
		})
		s.logg.Info(lctx, "orders.status_changed")
	}
	return order, nil
}

func (s *service) AttachTracking(ctx context.Context, input TrackingInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Tracking.CourierName == nil && input.Tracking.TrackingLink == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier name or tracking link required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}

		courier := mergeField(current.CourierName, input.Tracking.CourierName)
		link := mergeField(current.TrackingLink, input.Tracking.TrackingLink)
		at := s.now().UTC()
		if err := repo.UpdateTracking(ctx, current.ID, courier, link, at); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order tracking")
		}

		current.CourierName = courier
		current.TrackingLink = link
		current.UpdatedAt = at
		order = current

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderTrackingUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Version:       1,
			Actor:         input.Actor,
			OccurredAt:    at,
			Data: payloads.OrderTrackingUpdatedEvent{
				OrderID:      current.ID,
				CourierName:  courier,
				TrackingLink: link,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "orders.tracking_updated")
	}
	return order, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return loadOrder(ctx, s.repo, id)
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func loadOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// mergeField applies a tracking patch value: nil keeps current, blank clears.
func mergeField(current, patch *string) *string {
	if patch == nil {
		return current
	}
	trimmed := strings.TrimSpace(*patch)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
