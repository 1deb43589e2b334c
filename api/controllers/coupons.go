package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	couponsvc "github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

type couponCreateRequest struct {
	Code         string        `json:"code" validate:"required,notblank,max=64"`
	Type         string        `json:"type" validate:"required,notblank"`
	Value        money.Amount  `json:"value"`
	MinPurchase  *money.Amount `json:"min_purchase"`
	ExpiryDate   *time.Time    `json:"expiry_date"`
	UsageLimit   *int          `json:"usage_limit"`
	IsActive     *bool         `json:"is_active"`
	Scope        string        `json:"scope"`
	ScopeTargets []uuid.UUID   `json:"scope_targets"`
}

type couponActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type couponResponse struct {
	ID           uuid.UUID    `json:"id"`
	Code         string       `json:"code"`
	Type         string       `json:"type"`
	Value        money.Amount `json:"value"`
	MinPurchase  money.Amount `json:"min_purchase"`
	ExpiryDate   *time.Time   `json:"expiry_date,omitempty"`
	UsageLimit   *int         `json:"usage_limit,omitempty"`
	UsageCount   int          `json:"usage_count"`
	IsActive     bool         `json:"is_active"`
	Scope        string       `json:"scope"`
	ScopeTargets []uuid.UUID  `json:"scope_targets"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func newCouponResponse(c *models.Coupon) couponResponse {
	targets := []uuid.UUID(c.ScopeTargets)
	if targets == nil {
		targets = []uuid.UUID{}
	}
	return couponResponse{
		ID:           c.ID,
		Code:         c.Code,
		Type:         c.Type.String(),
		Value:        money.NewAmount(c.Value),
		MinPurchase:  money.NewAmount(c.MinPurchase),
		ExpiryDate:   c.ExpiryDate,
		UsageLimit:   c.UsageLimit,
		UsageCount:   c.UsageCount,
		IsActive:     c.IsActive,
		Scope:        c.Scope.String(),
		ScopeTargets: targets,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// Unknown values pass through verbatim so the service reports them per field.
func (req couponCreateRequest) toInput() couponsvc.CreateInput {
	couponType, err := enums.ParseCouponType(req.Type)
	if err != nil {
		couponType = enums.CouponType(req.Type)
	}
	scope := enums.CouponScopeGlobal
	if raw := strings.TrimSpace(req.Scope); raw != "" {
		parsed, err := enums.ParseCouponScope(raw)
		if err != nil {
			parsed = enums.CouponScope(raw)
		}
		scope = parsed
	}
	input := couponsvc.CreateInput{
		Code:         req.Code,
		Type:         couponType,
		Value:        req.Value.Decimal,
		ExpiryDate:   req.ExpiryDate,
		UsageLimit:   req.UsageLimit,
		IsActive:     true,
		Scope:        scope,
		ScopeTargets: req.ScopeTargets,
	}
	if req.MinPurchase != nil {
		input.MinPurchase = req.MinPurchase.Decimal
	}
	if req.IsActive != nil {
		input.IsActive = *req.IsActive
	}
	return input
}

func AdminCouponCreate(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload couponCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCouponResponse(coupon))
	}
}

func AdminCouponList(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]couponResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newCouponResponse(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"coupons": out})
	}
}

// AdminCouponActive toggles whether a coupon can be redeemed.
func AdminCouponActive(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		couponID, err := validators.ParseUUIDParam(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload couponActiveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.SetActive(r.Context(), couponID, *payload.IsActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCouponResponse(coupon))
	}
}
