package enums

import "strings"

// CouponType selects how a coupon's value is applied to the subtotal.
type CouponType string

const (
	CouponTypePercentage CouponType = "PERCENTAGE"
	CouponTypeFixed      CouponType = "FIXED"
)

var couponTypes = set[CouponType]{CouponTypePercentage, CouponTypeFixed}

func (c CouponType) String() string { return string(c) }

func (c CouponType) IsValid() bool { return couponTypes.has(c) }

func ParseCouponType(value string) (CouponType, error) {
	return couponTypes.parse("coupon type", value, strings.ToUpper)
}

// CouponScope names the kind of entity a coupon is restricted to.
type CouponScope string

const (
	CouponScopeGlobal   CouponScope = "GLOBAL"
	CouponScopeProduct  CouponScope = "PRODUCT"
	CouponScopeCategory CouponScope = "CATEGORY"
	CouponScopeDeal     CouponScope = "DEAL"
)

var couponScopes = set[CouponScope]{
	CouponScopeGlobal,
	CouponScopeProduct,
	CouponScopeCategory,
	CouponScopeDeal,
}

func (c CouponScope) String() string { return string(c) }

func (c CouponScope) IsValid() bool { return couponScopes.has(c) }

// Targeted reports whether the scope needs a non-empty target list.
func (c CouponScope) Targeted() bool {
	return c.IsValid() && c != CouponScopeGlobal
}

func ParseCouponScope(value string) (CouponScope, error) {
	return couponScopes.parse("coupon scope", value, strings.ToUpper)
}
