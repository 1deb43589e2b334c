// Package dbtest opens throwaway sqlite databases carrying the storefront
// schema for repository tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db"
)

var seq atomic.Int64

// Schema mirrors the postgres migrations with sqlite column types. Money is
// TEXT so decimals round-trip without float conversion.
var Schema = []string{
	`CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  category_id TEXT,
  name TEXT NOT NULL,
  sku TEXT,
  price TEXT NOT NULL,
  sale_price TEXT,
  stock INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE deals (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  ends_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE deal_products (
  deal_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  PRIMARY KEY (deal_id, product_id)
);`,
	`CREATE TABLE coupons (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  type TEXT NOT NULL,
  value TEXT NOT NULL,
  min_purchase TEXT NOT NULL DEFAULT '0',
  expiry_date DATETIME,
  usage_limit INTEGER,
  usage_count INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  scope TEXT NOT NULL DEFAULT 'GLOBAL',
  scope_targets TEXT NOT NULL DEFAULT '{}',
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT coupons_code_key UNIQUE (code)
);`,
	`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  shipping_address TEXT NOT NULL,
  shipping_city TEXT NOT NULL,
  shipping_postal_code TEXT NOT NULL,
  notes TEXT,
  subtotal TEXT NOT NULL,
  discount TEXT NOT NULL DEFAULT '0',
  shipping_fee TEXT NOT NULL DEFAULT '0',
  total TEXT NOT NULL,
  coupon_id TEXT,
  coupon_code TEXT,
  payment_method TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  courier_name TEXT,
  tracking_link TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  line_total TEXT NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE wholesale_inquiries (
  id TEXT PRIMARY KEY,
  contact_name TEXT NOT NULL,
  company_name TEXT,
  email TEXT,
  phone TEXT NOT NULL,
  address TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'PENDING',
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE wholesale_inquiry_items (
  id TEXT PRIMARY KEY,
  inquiry_id TEXT NOT NULL REFERENCES wholesale_inquiries(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL
);`,
	`CREATE TABLE store_settings (
  id INTEGER PRIMARY KEY,
  shipping_fee TEXT NOT NULL,
  free_shipping_threshold TEXT NOT NULL DEFAULT '0',
  cod_enabled INTEGER NOT NULL DEFAULT 1,
  updated_at DATETIME
);`,
	`CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
}

// Open returns a private in-memory database with Schema applied. A single
// pooled connection keeps the memory database alive and serialises writers.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true, NowFunc: db.NowUTC})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range Schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}
