package controllers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	couponsvc "github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	settingssvc "github.com/angelmondragon/storefront-backend/internal/settings"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

type stubCheckoutService struct {
	order     *models.Order
	quote     *checkoutsvc.Quote
	err       error
	lastBuild checkoutsvc.BuildInput
	lastQuote checkoutsvc.QuoteInput
}

func (s *stubCheckoutService) Build(ctx context.Context, input checkoutsvc.BuildInput) (*models.Order, error) {
	s.lastBuild = input
	return s.order, s.err
}

func (s *stubCheckoutService) Quote(ctx context.Context, input checkoutsvc.QuoteInput) (*checkoutsvc.Quote, error) {
	s.lastQuote = input
	return s.quote, s.err
}

type stubCouponService struct {
	applied    *couponsvc.Applicable
	coupon     *models.Coupon
	list       []models.Coupon
	err        error
	lastCode   string
	lastLines  []pricing.Line
	lastCreate couponsvc.CreateInput
	lastActive *bool
}

func (s *stubCouponService) Validate(ctx context.Context, code string, lines []pricing.Line) (*couponsvc.Applicable, error) {
	s.lastCode = code
	s.lastLines = lines
	return s.applied, s.err
}

func (s *stubCouponService) Create(ctx context.Context, input couponsvc.CreateInput) (*models.Coupon, error) {
	s.lastCreate = input
	return s.coupon, s.err
}

func (s *stubCouponService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.list, s.err
}

func (s *stubCouponService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Coupon, error) {
	s.lastActive = &active
	return s.coupon, s.err
}

type stubSettingsService struct {
	cfg     settingssvc.ShippingConfig
	err     error
	updated *settingssvc.ShippingConfig
}

func (s *stubSettingsService) GetShippingConfig(ctx context.Context) (settingssvc.ShippingConfig, error) {
	return s.cfg, s.err
}

func (s *stubSettingsService) UpdateShippingConfig(ctx context.Context, cfg settingssvc.ShippingConfig) (settingssvc.ShippingConfig, error) {
	s.updated = &cfg
	if s.err != nil {
		return settingssvc.ShippingConfig{}, s.err
	}
	return cfg, nil
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) (string, map[string]any) {
	t.Helper()
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return envelope.Error.Code, envelope.Error.Details
}
