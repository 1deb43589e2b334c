package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	couponsvc "github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

type cartLineRequest struct {
	ProductID     uuid.UUID     `json:"product_id" validate:"required"`
	Quantity      int           `json:"quantity" validate:"gte=1"`
	PriceSnapshot *money.Amount `json:"price_snapshot,omitempty"`
}

type quoteRequest struct {
	Items      []cartLineRequest `json:"items" validate:"required,min=1,dive"`
	CouponCode string            `json:"coupon_code" validate:"max=64"`
}

type couponValidateRequest struct {
	Code  string            `json:"code" validate:"required,max=64"`
	Items []cartLineRequest `json:"items" validate:"required,min=1,dive"`
}

type quoteLine struct {
	ProductID uuid.UUID    `json:"product_id"`
	Quantity  int          `json:"quantity"`
	UnitPrice money.Amount `json:"unit_price"`
	LineTotal money.Amount `json:"line_total"`
}

type quoteResponse struct {
	Items       []quoteLine  `json:"items"`
	Subtotal    money.Amount `json:"subtotal"`
	Discount    money.Amount `json:"discount"`
	ShippingFee money.Amount `json:"shipping_fee"`
	Total       money.Amount `json:"total"`
	CouponCode  *string      `json:"coupon_code,omitempty"`
}

type couponValidateResponse struct {
	Code        string       `json:"code"`
	Type        string       `json:"type"`
	Value       money.Amount `json:"value"`
	Discount    money.Amount `json:"discount"`
	Subtotal    money.Amount `json:"subtotal"`
	MinPurchase money.Amount `json:"min_purchase"`
}

func toCartLines(items []cartLineRequest) []checkoutsvc.CartLine {
	lines := make([]checkoutsvc.CartLine, 0, len(items))
	for _, item := range items {
		line := checkoutsvc.CartLine{ProductID: item.ProductID, Quantity: item.Quantity}
		if item.PriceSnapshot != nil {
			snapshot := item.PriceSnapshot.Decimal
			line.PriceSnapshot = &snapshot
		}
		lines = append(lines, line)
	}
	return lines
}

func newQuoteResponse(quote *checkoutsvc.Quote) quoteResponse {
	items := make([]quoteLine, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		items = append(items, quoteLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: money.NewAmount(line.UnitPrice),
			LineTotal: money.NewAmount(money.LineTotal(line.UnitPrice, line.Quantity)),
		})
	}
	return quoteResponse{
		Items:       items,
		Subtotal:    money.NewAmount(quote.Priced.Subtotal),
		Discount:    money.NewAmount(quote.Priced.Discount),
		ShippingFee: money.NewAmount(quote.Priced.ShippingFee),
		Total:       money.NewAmount(quote.Priced.Total),
		CouponCode:  quote.CouponCode,
	}
}

// CartQuote prices a cart with an optional coupon without persisting anything.
func CartQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), checkoutsvc.QuoteInput{
			Lines:      toCartLines(payload.Items),
			CouponCode: payload.CouponCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newQuoteResponse(quote))
	}
}

// CouponValidate checks a code against the caller's cart at current prices.
// Rejections come back as COUPON_REJECTED with the reason in details.
func CouponValidate(checkout checkoutsvc.Service, coupons couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checkout == nil || coupons == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload couponValidateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := checkout.Quote(r.Context(), checkoutsvc.QuoteInput{Lines: toCartLines(payload.Items)})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		applied, err := coupons.Validate(r.Context(), payload.Code, quote.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, couponValidateResponse{
			Code:        applied.Coupon.Code,
			Type:        applied.Coupon.Type.String(),
			Value:       money.NewAmount(applied.Coupon.Value),
			Discount:    money.NewAmount(applied.Discount),
			Subtotal:    money.NewAmount(pricing.Subtotal(quote.Lines)),
			MinPurchase: money.NewAmount(applied.Coupon.MinPurchase),
		})
	}
}
