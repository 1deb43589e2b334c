// Package money holds the two-decimal currency helpers shared by pricing,
// coupons and order snapshots.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits every stored amount carries.
const Places = 2

// Zero is 0.00.
var Zero = decimal.Zero

// Round rounds half away from zero to two places.
func Round(v decimal.Decimal) decimal.Decimal {
	return v.Round(Places)
}

// Format renders v with exactly two fractional digits.
func Format(v decimal.Decimal) string {
	return v.StringFixed(Places)
}

// Parse reads a decimal amount and rounds it to two places.
func Parse(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}
	v, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	return Round(v), nil
}

// ParseNonNegative is Parse that also rejects amounts below zero.
func ParseNonNegative(raw string) (decimal.Decimal, error) {
	v, err := Parse(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q must not be negative", raw)
	}
	return v, nil
}

// Percent returns pct percent of amount rounded to two places.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(pct).Div(decimal.NewFromInt(100)))
}

// LineTotal is unitPrice × quantity without rounding.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Amount marshals to and from a JSON string with two fractional digits.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps v after rounding it.
func NewAmount(v decimal.Decimal) Amount {
	return Amount{Decimal: Round(v)}
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Format(a.Decimal) + `"`), nil
}

// UnmarshalJSON accepts either a quoted string or a bare number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	v, err := Parse(raw)
	if err != nil {
		return err
	}
	a.Decimal = v
	return nil
}
