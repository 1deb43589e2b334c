package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const maxCodeLength = 64

// Service exposes coupon validation for shoppers and coupon management for admins.
type Service interface {
	Validate(ctx context.Context, code string, lines []pricing.Line) (*Applicable, error)
	Create(ctx context.Context, input CreateInput) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Coupon, error)
}

type service struct {
	repo    Repository
	catalog ScopeCatalog
	metrics *metrics.Storefront
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the coupon service. metrics and logg may be nil; now
// defaults to time.Now.
func NewService(repo Repository, catalog ScopeCatalog, rec *metrics.Storefront, logg *logger.Logger, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, catalog: catalog, metrics: rec, logg: logg, now: now}, nil
}

// Load finds a coupon by code. A missing code is a NOT_FOUND rejection.
func Load(ctx context.Context, repo Repository, code string) (*Coupon, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	row, err := repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reject(ReasonNotFound, normalized)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	coupon, err := FromModel(row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode coupon")
	}
	return coupon, nil
}

func (s *service) Validate(ctx context.Context, code string, lines []pricing.Line) (*Applicable, error) {
	coupon, err := Load(ctx, s.repo, code)
	if err == nil {
		var applied *Applicable
		applied, err = Evaluate(ctx, coupon, Cart{Lines: lines}, s.catalog, s.now().UTC())
		if err == nil {
			return applied, nil
		}
	}
	if reason, ok := RejectionReason(err); ok {
		s.metrics.CouponRejected(reason.String())
		if s.logg != nil {
			rctx := s.logg.WithFields(ctx, map[string]any{"coupon_code": NormalizeCode(code), "reason": reason.String()})
			s.logg.Info(rctx, "coupons.rejected")
		}
	}
	return nil, err
}

// CreateInput carries an admin's new coupon.
type CreateInput struct {
	Code         string
	Type         enums.CouponType
	Value        decimal.Decimal
	MinPurchase  decimal.Decimal
	ExpiryDate   *time.Time
	UsageLimit   *int
	IsActive     bool
	Scope        enums.CouponScope
	ScopeTargets []uuid.UUID
}

func (in CreateInput) validate() (Scope, error) {
	problems := map[string]string{}
	code := NormalizeCode(in.Code)
	switch {
	case code == "":
		problems["code"] = "is required"
	case len(code) > maxCodeLength:
		problems["code"] = fmt.Sprintf("must be at most %d characters", maxCodeLength)
	case strings.ContainsAny(code, " \t\n"):
		problems["code"] = "must not contain whitespace"
	}
	if !in.Type.IsValid() {
		problems["type"] = "must be PERCENTAGE or FIXED"
	}
	if !in.Value.IsPositive() {
		problems["value"] = "must be greater than 0"
	} else if in.Type == enums.CouponTypePercentage && in.Value.GreaterThan(decimal.NewFromInt(100)) {
		problems["value"] = "percentage must not exceed 100"
	}
	if in.MinPurchase.IsNegative() {
		problems["min_purchase"] = "must not be negative"
	}
	if in.UsageLimit != nil && *in.UsageLimit < 1 {
		problems["usage_limit"] = "must be at least 1"
	}
	scopeKind := in.Scope
	if scopeKind == "" {
		scopeKind = enums.CouponScopeGlobal
	}
	scope, err := NewScope(scopeKind, in.ScopeTargets)
	if err != nil {
		problems["scope_targets"] = err.Error()
	}
	if len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon").WithDetails(problems)
	}
	return scope, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Coupon, error) {
	scope, err := input.validate()
	if err != nil {
		return nil, err
	}
	coupon := &Coupon{
		Code:        input.Code,
		Type:        input.Type,
		Value:       input.Value,
		MinPurchase: input.MinPurchase,
		ExpiryDate:  input.ExpiryDate,
		UsageLimit:  input.UsageLimit,
		IsActive:    input.IsActive,
		Scope:       scope,
	}
	row := coupon.ToModel()
	if err := s.repo.Create(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "coupons_code_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists").
				WithDetails(map[string]any{"code": row.Code})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return row, nil
}

func (s *service) List(ctx context.Context) ([]models.Coupon, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return rows, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Coupon, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload coupon")
	}
	return row, nil
}
