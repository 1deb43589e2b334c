package coupons

import (
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Reason explains why a coupon did not apply.
type Reason string

const (
	ReasonNotFound       Reason = "NOT_FOUND"
	ReasonInactive       Reason = "INACTIVE"
	ReasonExpired        Reason = "EXPIRED"
	ReasonUsageExhausted Reason = "USAGE_EXHAUSTED"
	ReasonBelowMinimum   Reason = "BELOW_MINIMUM"
	ReasonScopeMismatch  Reason = "SCOPE_MISMATCH"
)

var reasonMessages = map[Reason]string{
	ReasonNotFound:       "coupon code not found",
	ReasonInactive:       "coupon is not active",
	ReasonExpired:        "coupon has expired",
	ReasonUsageExhausted: "coupon usage limit reached",
	ReasonBelowMinimum:   "cart subtotal is below the coupon minimum",
	ReasonScopeMismatch:  "coupon does not apply to any item in the cart",
}

func (r Reason) String() string { return string(r) }

// Message is the shopper-facing text for the reason.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "coupon cannot be applied"
}

// RejectionDetails is attached to COUPON_REJECTED errors.
type RejectionDetails struct {
	Reason Reason `json:"reason"`
	Code   string `json:"code,omitempty"`
	// MinPurchase is set for BELOW_MINIMUM.
	MinPurchase string `json:"min_purchase,omitempty"`
}

func reject(reason Reason, code string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeCouponRejected, reason.Message()).
		WithDetails(RejectionDetails{Reason: reason, Code: code})
}

// RejectionReason extracts the reason from a COUPON_REJECTED error.
func RejectionReason(err error) (Reason, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeCouponRejected {
		return "", false
	}
	details, ok := typed.Details().(RejectionDetails)
	if !ok {
		return "", false
	}
	return details.Reason, true
}
