package coupons

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

func seedCoupon(t *testing.T, conn *gorm.DB, code string, limit *int, count int) *models.Coupon {
	t.Helper()
	row := &models.Coupon{
		Code:         code,
		Type:         enums.CouponTypeFixed,
		Value:        dec("5"),
		MinPurchase:  dec("0"),
		UsageLimit:   limit,
		UsageCount:   count,
		IsActive:     true,
		Scope:        enums.CouponScopeGlobal,
		ScopeTargets: dbtypes.UUIDArray{},
	}
	require.NoError(t, conn.Create(row).Error)
	return row
}

func TestFindByCodeIsCaseInsensitive(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	seeded := seedCoupon(t, conn, "SAVE10", nil, 0)

	got, err := repo.FindByCode(context.Background(), "  save10 ")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)
	assert.True(t, got.Value.Equal(dec("5")))

	_, err = repo.FindByCode(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestScopeTargetsRoundTrip(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	target := uuid.New()

	scope, err := NewScope(enums.CouponScopeProduct, []uuid.UUID{target})
	require.NoError(t, err)
	row := (&Coupon{Code: "flat5", Type: enums.CouponTypeFixed, Value: dec("5"), IsActive: true, Scope: scope}).ToModel()
	require.NoError(t, repo.Create(context.Background(), row))

	loaded, err := repo.FindByCode(context.Background(), "FLAT5")
	require.NoError(t, err)
	coupon, err := FromModel(loaded)
	require.NoError(t, err)
	productScope, ok := coupon.Scope.(ProductScope)
	require.True(t, ok)
	assert.True(t, productScope.Contains(target))
}

func TestIncrementUsageStopsAtLimit(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	limit := 2
	row := seedCoupon(t, conn, "TWICE", &limit, 0)

	require.NoError(t, repo.IncrementUsage(ctx, row.ID))
	require.NoError(t, repo.IncrementUsage(ctx, row.ID))
	assert.ErrorIs(t, repo.IncrementUsage(ctx, row.ID), ErrUsageConflict)

	reloaded, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.UsageCount)

	unlimited := seedCoupon(t, conn, "FOREVER", nil, 41)
	require.NoError(t, repo.IncrementUsage(ctx, unlimited.ID))

	assert.ErrorIs(t, repo.IncrementUsage(ctx, uuid.New()), ErrUsageConflict)
}

func TestIncrementUsageRejectsInactive(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	row := seedCoupon(t, conn, "PAUSED", nil, 0)

	require.NoError(t, repo.SetActive(ctx, row.ID, false))
	assert.ErrorIs(t, repo.IncrementUsage(ctx, row.ID), ErrUsageConflict)
	assert.ErrorIs(t, repo.SetActive(ctx, uuid.New(), true), gorm.ErrRecordNotFound)
}

func TestIncrementUsageLastSlotRace(t *testing.T) {
	conn := dbtest.Open(t)
	client := db.FromConn(conn)
	repo := NewRepository(conn)
	limit := 1
	row := seedCoupon(t, conn, "LASTONE", &limit, 0)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = client.WithTx(context.Background(), func(tx *gorm.DB) error {
				return repo.WithTx(tx).IncrementUsage(context.Background(), row.ID)
			})
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrUsageConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	reloaded, err := repo.FindByID(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.UsageCount)
}
