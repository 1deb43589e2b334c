package coupons

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// ScopeCatalog is the catalog snapshot scope resolution reads from.
type ScopeCatalog interface {
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error)
	ListProductsByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Product, error)
}

// Cart is the set of lines a coupon is evaluated against.
type Cart struct {
	Lines []pricing.Line
}

// Subtotal is the rounded sum of the cart's line totals.
func (c Cart) Subtotal() decimal.Decimal {
	return pricing.Subtotal(c.Lines)
}

func (c Cart) productSet() map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(c.Lines))
	for _, line := range c.Lines {
		out[line.ProductID] = struct{}{}
	}
	return out
}

// Applicable is a successful evaluation. Discount is already capped at the
// cart subtotal.
type Applicable struct {
	Coupon   *Coupon
	Discount decimal.Decimal
}

// Evaluate checks coupon against cart at now. Rejections are COUPON_REJECTED
// errors whose details carry the first failing Reason in this order:
// NOT_FOUND, INACTIVE, EXPIRED, USAGE_EXHAUSTED, BELOW_MINIMUM, SCOPE_MISMATCH.
// Evaluation never changes the coupon's usage count.
func Evaluate(ctx context.Context, coupon *Coupon, cart Cart, catalog ScopeCatalog, now time.Time) (*Applicable, error) {
	if coupon == nil {
		return nil, reject(ReasonNotFound, "")
	}
	if !coupon.IsActive {
		return nil, reject(ReasonInactive, coupon.Code)
	}
	if coupon.Expired(now) {
		return nil, reject(ReasonExpired, coupon.Code)
	}
	if coupon.Exhausted() {
		return nil, reject(ReasonUsageExhausted, coupon.Code)
	}

	subtotal := cart.Subtotal()
	if subtotal.LessThan(coupon.MinPurchase) {
		return nil, pkgerrors.New(pkgerrors.CodeCouponRejected, ReasonBelowMinimum.Message()).
			WithDetails(RejectionDetails{
				Reason:      ReasonBelowMinimum,
				Code:        coupon.Code,
				MinPurchase: coupon.MinPurchase.StringFixed(2),
			})
	}

	matched, err := scopeMatches(ctx, coupon.Scope, cart, catalog)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve coupon scope")
	}
	if !matched {
		return nil, reject(ReasonScopeMismatch, coupon.Code)
	}

	return &Applicable{
		Coupon:   coupon,
		Discount: coupon.Discount(subtotal),
	}, nil
}

// scopeMatches resolves targets against the catalog. Targets that no longer
// exist simply fail to match.
func scopeMatches(ctx context.Context, scope Scope, cart Cart, catalog ScopeCatalog) (bool, error) {
	if scope == nil || scope.Kind() == enums.CouponScopeGlobal {
		return true, nil
	}
	inCart := cart.productSet()
	if len(inCart) == 0 {
		return false, nil
	}

	switch s := scope.(type) {
	case ProductScope:
		candidates := make([]uuid.UUID, 0, len(inCart))
		for _, id := range s.Targets() {
			if _, ok := inCart[id]; ok {
				candidates = append(candidates, id)
			}
		}
		if len(candidates) == 0 {
			return false, nil
		}
		existing, err := catalog.GetProducts(ctx, candidates)
		if err != nil {
			return false, err
		}
		return len(existing) > 0, nil
	case CategoryScope:
		for _, categoryID := range s.Targets() {
			products, err := catalog.ListProductsByCategory(ctx, categoryID)
			if err != nil {
				return false, err
			}
			if anyInCart(products, inCart) {
				return true, nil
			}
		}
		return false, nil
	case DealScope:
		for _, dealID := range s.Targets() {
			products, err := catalog.ListProductsByDeal(ctx, dealID)
			if err != nil {
				return false, err
			}
			if anyInCart(products, inCart) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, nil
	}
}

func anyInCart(products []models.Product, inCart map[uuid.UUID]struct{}) bool {
	for _, p := range products {
		if _, ok := inCart[p.ID]; ok {
			return true
		}
	}
	return false
}
