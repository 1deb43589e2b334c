package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := FromConn(db)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestFromConnReportsDriver(t *testing.T) {
	client := FromConn(newTestDB(t))
	if client.Driver() != DriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", client.Driver())
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "coupons_code_key"}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", pgErr), "coupons_code_key") {
		t.Fatalf("expected pgx unique violation to match")
	}
	if IsUniqueViolation(pgErr, "other_key") {
		t.Fatalf("expected constraint mismatch to be rejected")
	}
	if !IsUniqueViolation(&pq.Error{Code: "23505"}, "") {
		t.Fatalf("expected pq unique violation to match")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: coupons.code"), "") {
		t.Fatalf("expected sqlite message to match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil is not a violation")
	}
}

func TestIsSerializationFailure(t *testing.T) {
	if !IsSerializationFailure(&pgconn.PgError{Code: "40001"}) {
		t.Fatalf("expected serialization failure")
	}
	if IsSerializationFailure(errors.New("40001")) {
		t.Fatalf("plain errors are not classified")
	}
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	conn := newTestDB(t)
	client := FromConn(conn)

	func() {
		defer func() { _ = recover() }()
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(&testModel{Name: "panicked"}).Error; err != nil {
				return err
			}
			panic("boom")
		})
	}()

	var count int64
	if err := conn.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected panic to roll back, got %d rows", count)
	}
}

func TestWithTxRetriesSerializationFailures(t *testing.T) {
	client := FromConn(newTestDB(t))

	calls := 0
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		calls++
		if calls < 2 {
			return &pgconn.PgError{Code: "40001"}
		}
		return tx.Create(&testModel{Name: "retried"}).Error
	})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}

	calls = 0
	err = client.WithTx(context.Background(), func(*gorm.DB) error {
		calls++
		return &pgconn.PgError{Code: "40001"}
	})
	if !IsSerializationFailure(err) || calls != maxTxAttempts {
		t.Fatalf("expected %d attempts ending in serialization failure, got %d / %v", maxTxAttempts, calls, err)
	}
}

func TestDialectorFor(t *testing.T) {
	for driver, want := range map[string]string{"": DriverPostgres, " Postgres ": DriverPostgres, "sqlite": DriverSQLite} {
		got, _, err := dialectorFor(config.DBConfig{Driver: driver, DSN: "x"})
		if err != nil || got != want {
			t.Fatalf("driver %q: got %q err %v", driver, got, err)
		}
	}
	if _, _, err := dialectorFor(config.DBConfig{Driver: "mysql"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestQueryLoggerReportsSlowStatements(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "db-test", Output: &buf})
	ql := newQueryLogger(logg, 10*time.Millisecond)

	ql.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	if buf.Len() != 0 {
		t.Fatalf("fast query should not be logged: %s", buf.String())
	}
	ql.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT pg_sleep(1)", 1 }, nil)
	if !strings.Contains(buf.String(), "slow query") || !strings.Contains(buf.String(), "pg_sleep") {
		t.Fatalf("expected slow query log, got %s", buf.String())
	}

	buf.Reset()
	ql.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 2", 0 }, nil)
	if buf.Len() != 0 {
		t.Fatalf("silent mode should suppress logs: %s", buf.String())
	}
	if newQueryLogger(nil, time.Second) != gormlogger.Discard {
		t.Fatalf("nil logger should discard")
	}
}

type stampedModel struct {
	ID        int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func TestGormConfigStampsUTC(t *testing.T) {
	cfg := gormConfig(nil, time.Second)
	if got := cfg.NowFunc(); got.Location() != time.UTC {
		t.Fatalf("expected UTC clock, got %v", got.Location())
	}

	conn, err := gorm.Open(sqlite.Open("file::memory:"), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&stampedModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	row := stampedModel{}
	if err := conn.Create(&row).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if row.CreatedAt.Location() != time.UTC || row.UpdatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamps, got %v / %v", row.CreatedAt.Location(), row.UpdatedAt.Location())
	}
}
