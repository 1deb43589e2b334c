package controllers

import (
	"net/http"

	ordersdto "github.com/angelmondragon/storefront-backend/api/controllers/orders/dto"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Shipping fields are validated by the order builder so every caller gets
// the same per-field details.
type shippingRequest struct {
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	PostalCode string  `json:"postal_code"`
	Notes      *string `json:"notes"`
}

type checkoutRequest struct {
	Items         []cartLineRequest `json:"items" validate:"dive"`
	Shipping      shippingRequest   `json:"shipping"`
	PaymentMethod string            `json:"payment_method"`
	CouponCode    string            `json:"coupon_code" validate:"max=64"`
}

// Checkout builds an order from the submitted cart. Guests may check out;
// a bearer token ties the order to the customer.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Build(r.Context(), checkoutsvc.BuildInput{
			CustomerID: middleware.CustomerIDFromContext(r.Context()),
			Lines:      toCartLines(payload.Items),
			Shipping: checkoutsvc.ShippingInfo{
				FullName:   payload.Shipping.FullName,
				Email:      payload.Shipping.Email,
				Phone:      payload.Shipping.Phone,
				Address:    payload.Shipping.Address,
				City:       payload.Shipping.City,
				PostalCode: payload.Shipping.PostalCode,
				Notes:      payload.Shipping.Notes,
			},
			PaymentMethod: payload.PaymentMethod,
			CouponCode:    payload.CouponCode,
			Actor:         middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, ordersdto.NewOrder(order))
	}
}
