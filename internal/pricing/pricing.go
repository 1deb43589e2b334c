// Package pricing turns cart lines, an already-capped discount and a shipping
// snapshot into the totals persisted on an order. It performs no I/O.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Line is one priced cart line.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// ShippingConfig is the point-in-time shipping snapshot for one pricing call.
// A zero FreeShippingThreshold disables free shipping.
type ShippingConfig struct {
	Fee                   decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// PricedCart carries the two-decimal totals of a cart.
type PricedCart struct {
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
}

// Subtotal sums unitPrice × quantity and rounds once at the end.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(money.LineTotal(line.UnitPrice, line.Quantity))
	}
	return money.Round(sum)
}

// ShippingFee applies the free-shipping threshold (inclusive) to subtotal.
func ShippingFee(subtotal decimal.Decimal, cfg ShippingConfig) decimal.Decimal {
	if cfg.FreeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(cfg.FreeShippingThreshold) {
		return decimal.Zero
	}
	return money.Round(cfg.Fee)
}

// Price computes subtotal, shipping and total. The total never drops below zero.
func Price(lines []Line, discount decimal.Decimal, cfg ShippingConfig) PricedCart {
	subtotal := Subtotal(lines)
	discount = money.Round(money.Max(discount, decimal.Zero))
	shipping := ShippingFee(subtotal, cfg)
	total := money.Max(subtotal.Sub(discount).Add(shipping), decimal.Zero)

	return PricedCart{
		Subtotal:    subtotal,
		Discount:    discount,
		ShippingFee: shipping,
		Total:       money.Round(total),
	}
}
