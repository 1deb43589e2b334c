package coupons

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Coupon is the evaluator's view of a stored coupon.
type Coupon struct {
	ID          uuid.UUID
	Code        string
	Type        enums.CouponType
	Value       decimal.Decimal
	MinPurchase decimal.Decimal
	ExpiryDate  *time.Time
	UsageLimit  *int
	UsageCount  int
	IsActive    bool
	Scope       Scope
}

// NormalizeCode is the canonical stored form of a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FromModel converts a persisted row. Rows whose scope cannot be represented
// are reported as errors instead of being treated as global.
func FromModel(m *models.Coupon) (*Coupon, error) {
	if m == nil {
		return nil, nil
	}
	if !m.Type.IsValid() {
		return nil, fmt.Errorf("coupon %s: invalid type %q", m.ID, m.Type)
	}
	scope, err := NewScope(m.Scope, m.ScopeTargets)
	if err != nil {
		return nil, fmt.Errorf("coupon %s: %w", m.ID, err)
	}
	return &Coupon{
		ID:          m.ID,
		Code:        m.Code,
		Type:        m.Type,
		Value:       m.Value,
		MinPurchase: m.MinPurchase,
		ExpiryDate:  m.ExpiryDate,
		UsageLimit:  m.UsageLimit,
		UsageCount:  m.UsageCount,
		IsActive:    m.IsActive,
		Scope:       scope,
	}, nil
}

// ToModel converts the coupon into a row ready for insert.
func (c *Coupon) ToModel() *models.Coupon {
	scope := c.Scope
	if scope == nil {
		scope = GlobalScope{}
	}
	return &models.Coupon{
		ID:           c.ID,
		Code:         NormalizeCode(c.Code),
		Type:         c.Type,
		Value:        money.Round(c.Value),
		MinPurchase:  money.Round(c.MinPurchase),
		ExpiryDate:   c.ExpiryDate,
		UsageLimit:   c.UsageLimit,
		UsageCount:   c.UsageCount,
		IsActive:     c.IsActive,
		Scope:        scope.Kind(),
		ScopeTargets: dbtypes.UUIDArray(scope.Targets()),
	}
}

// Expired reports whether the expiry date is strictly before now.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiryDate != nil && c.ExpiryDate.Before(now)
}

// Exhausted reports whether the usage limit has been reached.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit
}

// Discount is the amount taken off subtotal, never more than subtotal.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	var raw decimal.Decimal
	switch c.Type {
	case enums.CouponTypePercentage:
		raw = money.Percent(subtotal, c.Value)
	default:
		raw = money.Round(c.Value)
	}
	if raw.IsNegative() {
		return decimal.Zero
	}
	return money.Min(raw, subtotal)
}
