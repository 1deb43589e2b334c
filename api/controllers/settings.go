package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	settingssvc "github.com/angelmondragon/storefront-backend/internal/settings"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

type shippingSettingsRequest struct {
	ShippingFee           *money.Amount `json:"shipping_fee" validate:"required"`
	FreeShippingThreshold *money.Amount `json:"free_shipping_threshold" validate:"required"`
	CODEnabled            *bool         `json:"cod_enabled" validate:"required"`
}

type shippingSettingsResponse struct {
	ShippingFee           money.Amount `json:"shipping_fee"`
	FreeShippingThreshold money.Amount `json:"free_shipping_threshold"`
	CODEnabled            bool         `json:"cod_enabled"`
	PaymentMethods        []string     `json:"payment_methods"`
}

func newShippingSettingsResponse(cfg settingssvc.ShippingConfig) shippingSettingsResponse {
	methods := make([]string, 0, 2)
	for _, m := range cfg.EnabledPaymentMethods() {
		methods = append(methods, m.String())
	}
	return shippingSettingsResponse{
		ShippingFee:           money.NewAmount(cfg.Fee),
		FreeShippingThreshold: money.NewAmount(cfg.FreeShippingThreshold),
		CODEnabled:            cfg.CODEnabled,
		PaymentMethods:        methods,
	}
}

func AdminShippingSettings(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		cfg, err := svc.GetShippingConfig(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newShippingSettingsResponse(cfg))
	}
}

// AdminShippingSettingsUpdate replaces the shipping snapshot used by
// subsequent quotes and checkouts.
func AdminShippingSettingsUpdate(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var payload shippingSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.UpdateShippingConfig(r.Context(), settingssvc.ShippingConfig{
			Fee:                   payload.ShippingFee.Decimal,
			FreeShippingThreshold: payload.FreeShippingThreshold.Decimal,
			CODEnabled:            *payload.CODEnabled,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newShippingSettingsResponse(cfg))
	}
}
