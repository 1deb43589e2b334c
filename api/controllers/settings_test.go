package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	settingssvc "github.com/angelmondragon/storefront-backend/internal/settings"
)

func TestAdminShippingSettings(t *testing.T) {
	svc := &stubSettingsService{cfg: settingssvc.ShippingConfig{Fee: d("5"), FreeShippingThreshold: d("200"), CODEnabled: true}}

	resp := httptest.NewRecorder()
	AdminShippingSettings(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/admin/v1/settings/shipping", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var out map[string]any
	decodeData(t, resp, &out)
	if out["shipping_fee"] != "5.00" || out["free_shipping_threshold"] != "200.00" {
		t.Fatalf("unexpected payload %v", out)
	}
	methods := out["payment_methods"].([]any)
	if len(methods) != 2 {
		t.Fatalf("expected CARD and COD, got %v", methods)
	}
}

func TestAdminShippingSettingsUpdate(t *testing.T) {
	svc := &stubSettingsService{}
	body := `{"shipping_fee":"7.5","free_shipping_threshold":0,"cod_enabled":false}`

	resp := httptest.NewRecorder()
	AdminShippingSettingsUpdate(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/api/admin/v1/settings/shipping", strings.NewReader(body)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.updated == nil || !svc.updated.Fee.Equal(d("7.5")) || !svc.updated.FreeShippingThreshold.IsZero() || svc.updated.CODEnabled {
		t.Fatalf("unexpected update %+v", svc.updated)
	}
	var out map[string]any
	decodeData(t, resp, &out)
	if methods := out["payment_methods"].([]any); len(methods) != 1 || methods[0] != "CARD" {
		t.Fatalf("expected only CARD, got %v", methods)
	}
}

func TestAdminShippingSettingsUpdateRequiresAllFields(t *testing.T) {
	svc := &stubSettingsService{}
	resp := httptest.NewRecorder()
	AdminShippingSettingsUpdate(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"shipping_fee":"5"}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.updated != nil {
		t.Fatalf("service must not be called")
	}
}
