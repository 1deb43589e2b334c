package wholesale

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/validation"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type productLookup interface {
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Service accepts bulk-order inquiries and tracks them through sales.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.WholesaleInquiry, error)
	UpdateStatus(ctx context.Context, input StatusInput) (*models.WholesaleInquiry, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.WholesaleInquiry, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*InquiryList, error)
}

type service struct {
	repo     Repository
	products productLookup
	tx       txRunner
	outbox   outboxPublisher
	logg     *logger.Logger
	now      func() time.Time
	validate *validator.Validate
}

// NewService builds the wholesale service.
func NewService(repo Repository, products productLookup, tx txRunner, outbox outboxPublisher, logg *logger.Logger, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wholesale repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     repo,
		products: products,
		tx:       tx,
		outbox:   outbox,
		logg:     logg,
		now:      now,
		validate: validation.New(),
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.WholesaleInquiry, error) {
	inquiry, err := s.buildInquiry(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureProducts(ctx, inquiry.Items); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, inquiry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wholesale inquiry")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWholesaleInquiryCreated,
			AggregateType: enums.AggregateWholesaleInquiry,
			AggregateID:   inquiry.ID,
			Version:       1,
			Actor:         input.Actor,
			Data: payloads.WholesaleInquiryCreatedEvent{
				InquiryID:   inquiry.ID,
				ContactName: inquiry.ContactName,
				Phone:       inquiry.Phone,
				ItemCount:   len(inquiry.Items),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithInquiryID(ctx, inquiry.ID.String()), "wholesale.inquiry_created")
	}
	return inquiry, nil
}

func (s *service) buildInquiry(input CreateInput) (*models.WholesaleInquiry, error) {
	details := map[string]string{}
	contact := strings.TrimSpace(input.ContactName)
	if contact == "" {
		details["contact_name"] = "is required"
	}
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		details["phone"] = "is required"
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		details["address"] = "is required"
	}
	email := trimmedOrNil(input.Email)
	if email != nil {
		if err := s.validate.Var(*email, "email"); err != nil {
			details["email"] = "must be a valid email"
		}
	}
	if len(input.Items) == 0 {
		details["items"] = "at least one product is required"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid wholesale inquiry").WithDetails(details)
	}

	items := make([]models.WholesaleInquiryItem, 0, len(input.Items))
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required").
				WithDetails(map[string]any{"line": i})
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"line": i, "product_id": item.ProductID})
		}
		items = append(items, models.WholesaleInquiryItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if email != nil {
		lowered := strings.ToLower(*email)
		email = &lowered
	}

	return &models.WholesaleInquiry{
		ContactName: contact,
		CompanyName: trimmedOrNil(input.CompanyName),
		Email:       email,
		Phone:       phone,
		Address:     address,
		Description: strings.TrimSpace(input.Description),
		Status:      enums.WholesaleStatusPending,
		Items:       items,
	}, nil
}

func (s *service) ensureProducts(ctx context.Context, items []models.WholesaleInquiryItem) error {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	found, err := s.products.GetProducts(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": id})
		}
	}
	return nil
}

func (s *service) UpdateStatus(ctx context.Context, input StatusInput) (*models.WholesaleInquiry, error) {
	if input.InquiryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inquiry id required")
	}
	status, err := enums.ParseWholesaleStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid wholesale status").
			WithDetails(map[string]any{"status": input.Status, "allowed": enums.WholesaleStatuses()})
	}

	var inquiry *models.WholesaleInquiry
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := loadInquiry(ctx, repo, input.InquiryID)
		if err != nil {
			return err
		}
		previous := current.Status
		at := s.now().UTC()
		if err := repo.UpdateStatus(ctx, current.ID, status, at); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wholesale status")
		}
		current.Status = status
		current.UpdatedAt = at
		inquiry = current

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWholesaleStatusChanged,
			AggregateType: enums.AggregateWholesaleInquiry,
			AggregateID:   current.ID,
			Version:       1,
			Actor:         input.Actor,
			OccurredAt:    at,
			Data: payloads.WholesaleStatusChangedEvent{
				InquiryID: current.ID,
				From:      previous,
				To:        status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return inquiry, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.WholesaleInquiry, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inquiry id required")
	}
	return loadInquiry(ctx, s.repo, id)
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*InquiryList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid wholesale status filter")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wholesale inquiries")
	}
	return list, nil
}

func loadInquiry(ctx context.Context, repo Repository, id uuid.UUID) (*models.WholesaleInquiry, error) {
	inquiry, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wholesale inquiry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wholesale inquiry")
	}
	return inquiry, nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
