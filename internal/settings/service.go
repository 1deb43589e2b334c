// Package settings provides the administrator-set shipping and payment
// configuration read by pricing and checkout.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// ShippingConfig is a point-in-time snapshot of checkout settings.
type ShippingConfig struct {
	Fee                   decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	CODEnabled            bool
}

// Pricing narrows the snapshot to what the pricing calculator needs.
func (c ShippingConfig) Pricing() pricing.ShippingConfig {
	return pricing.ShippingConfig{Fee: c.Fee, FreeShippingThreshold: c.FreeShippingThreshold}
}

// PaymentMethodEnabled reports whether shoppers may choose method. CARD is
// always available.
func (c ShippingConfig) PaymentMethodEnabled(method enums.PaymentMethod) bool {
	switch method {
	case enums.PaymentMethodCard:
		return true
	case enums.PaymentMethodCOD:
		return c.CODEnabled
	default:
		return false
	}
}

// EnabledPaymentMethods lists the methods shoppers may pick.
func (c ShippingConfig) EnabledPaymentMethods() []enums.PaymentMethod {
	out := []enums.PaymentMethod{enums.PaymentMethodCard}
	if c.CODEnabled {
		out = append(out, enums.PaymentMethodCOD)
	}
	return out
}

// DefaultsFromConfig builds the fallback snapshot from environment config.
func DefaultsFromConfig(cfg config.CheckoutConfig) ShippingConfig {
	return ShippingConfig{
		Fee:                   cfg.ShippingFeeAmount(),
		FreeShippingThreshold: cfg.FreeShippingThresholdAmount(),
		CODEnabled:            cfg.CODEnabled,
	}
}

// Provider supplies the current shipping snapshot.
type Provider interface {
	GetShippingConfig(ctx context.Context) (ShippingConfig, error)
}

// Service is the Provider plus admin updates.
type Service interface {
	Provider
	UpdateShippingConfig(ctx context.Context, cfg ShippingConfig) (ShippingConfig, error)
}

type service struct {
	repo     Repository
	defaults ShippingConfig
}

// NewService builds the settings service. defaults apply until a row is saved.
func NewService(repo Repository, defaults ShippingConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if defaults.Fee.IsNegative() || defaults.FreeShippingThreshold.IsNegative() {
		return nil, fmt.Errorf("default shipping values must not be negative")
	}
	return &service{repo: repo, defaults: defaults}, nil
}

func (s *service) GetShippingConfig(ctx context.Context) (ShippingConfig, error) {
	row, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.defaults, nil
		}
		return ShippingConfig{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store settings")
	}
	return ShippingConfig{
		Fee:                   money.Round(row.ShippingFee),
		FreeShippingThreshold: money.Round(row.FreeShippingThreshold),
		CODEnabled:            row.CODEnabled,
	}, nil
}

func (s *service) UpdateShippingConfig(ctx context.Context, cfg ShippingConfig) (ShippingConfig, error) {
	problems := map[string]string{}
	if cfg.Fee.IsNegative() {
		problems["shipping_fee"] = "must not be negative"
	}
	if cfg.FreeShippingThreshold.IsNegative() {
		problems["free_shipping_threshold"] = "must not be negative"
	}
	if len(problems) > 0 {
		return ShippingConfig{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping settings").WithDetails(problems)
	}

	row := &models.StoreSetting{
		ShippingFee:           money.Round(cfg.Fee),
		FreeShippingThreshold: money.Round(cfg.FreeShippingThreshold),
		CODEnabled:            cfg.CODEnabled,
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return ShippingConfig{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save store settings")
	}
	return ShippingConfig{
		Fee:                   row.ShippingFee,
		FreeShippingThreshold: row.FreeShippingThreshold,
		CODEnabled:            row.CODEnabled,
	}, nil
}
