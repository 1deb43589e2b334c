package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type failingRepo struct{}

func (failingRepo) Get(context.Context) (*models.StoreSetting, error) {
	return nil, errors.New("db down")
}

func (failingRepo) Upsert(context.Context, *models.StoreSetting) error {
	return errors.New("db down")
}

func defaults() ShippingConfig {
	return DefaultsFromConfig(config.CheckoutConfig{ShippingFee: "10", FreeShippingThreshold: "0", CODEnabled: true})
}

func TestGetShippingConfigFallsBackToDefaults(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)), defaults())
	require.NoError(t, err)

	got, err := svc.GetShippingConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.Fee.StringFixed(2))
	assert.True(t, got.FreeShippingThreshold.IsZero())
	assert.True(t, got.CODEnabled)
}

func TestUpdateShippingConfigUpserts(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)), defaults())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.UpdateShippingConfig(ctx, ShippingConfig{Fee: decimal.RequireFromString("5"), FreeShippingThreshold: decimal.RequireFromString("50"), CODEnabled: false})
	require.NoError(t, err)
	_, err = svc.UpdateShippingConfig(ctx, ShippingConfig{Fee: decimal.RequireFromString("4.5"), FreeShippingThreshold: decimal.RequireFromString("60")})
	require.NoError(t, err)

	got, err := svc.GetShippingConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "4.50", got.Fee.StringFixed(2))
	assert.Equal(t, "60.00", got.FreeShippingThreshold.StringFixed(2))
	assert.False(t, got.CODEnabled)
	assert.Equal(t, []enums.PaymentMethod{enums.PaymentMethodCard}, got.EnabledPaymentMethods())
}

func TestUpdateShippingConfigDisablesCODOnFirstSave(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), defaults())
	require.NoError(t, err)
	ctx := context.Background()

	saved, err := svc.UpdateShippingConfig(ctx, ShippingConfig{Fee: decimal.RequireFromString("5"), CODEnabled: false})
	require.NoError(t, err)
	assert.False(t, saved.CODEnabled)

	var row models.StoreSetting
	require.NoError(t, conn.First(&row, "id = ?", models.StoreSettingsRowID).Error)
	assert.False(t, row.CODEnabled)

	got, err := svc.GetShippingConfig(ctx)
	require.NoError(t, err)
	assert.False(t, got.CODEnabled)
	assert.False(t, got.PaymentMethodEnabled(enums.PaymentMethodCOD))
}

func TestUpdateShippingConfigRejectsNegative(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)), defaults())
	require.NoError(t, err)

	_, err = svc.UpdateShippingConfig(context.Background(), ShippingConfig{Fee: decimal.RequireFromString("-1")})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestGetShippingConfigDependencyFailure(t *testing.T) {
	svc, err := NewService(failingRepo{}, defaults())
	require.NoError(t, err)

	_, err = svc.GetShippingConfig(context.Background())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
}

func TestPaymentMethodEnabled(t *testing.T) {
	cfg := ShippingConfig{CODEnabled: false}
	assert.True(t, cfg.PaymentMethodEnabled(enums.PaymentMethodCard))
	assert.False(t, cfg.PaymentMethodEnabled(enums.PaymentMethodCOD))
	assert.False(t, cfg.PaymentMethodEnabled("CRYPTO"))

	cfg.CODEnabled = true
	assert.True(t, cfg.PaymentMethodEnabled(enums.PaymentMethodCOD))
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil, defaults())
	assert.Error(t, err)
}
