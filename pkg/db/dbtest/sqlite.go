// Package dbtest opens throwaway sqlite databases carrying the service schema
// for repository tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gravadormedico/voicepen-backend/pkg/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS webhooks_logs (
  id TEXT PRIMARY KEY,
  endpoint TEXT NOT NULL,
  payload TEXT,
  response_status INTEGER NOT NULL,
  processing_time_ms INTEGER NOT NULL DEFAULT 0,
  error TEXT,
  success INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT,
  phone TEXT,
  cpf TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS sales (
  id TEXT PRIMARY KEY,
  appmax_order_id TEXT NOT NULL UNIQUE,
  customer_id TEXT,
  customer_email TEXT NOT NULL,
  customer_name TEXT,
  customer_phone TEXT,
  customer_cpf TEXT,
  total_amount TEXT NOT NULL DEFAULT '0',
  status TEXT NOT NULL,
  payment_method TEXT,
  failure_reason TEXT,
  paid_at DATETIME,
  refunded_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS checkout_attempts (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_name TEXT,
  customer_phone TEXT,
  customer_cpf TEXT,
  cart_items TEXT,
  cart_total TEXT NOT NULL DEFAULT '0',
  total_amount TEXT NOT NULL DEFAULT '0',
  appmax_order_id TEXT,
  payment_method TEXT,
  status TEXT NOT NULL,
  recovery_status TEXT NOT NULL DEFAULT 'pending',
  converted_at DATETIME,
  abandoned_at DATETIME,
  metadata TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS abandoned_carts (
  id TEXT PRIMARY KEY,
  customer_email TEXT NOT NULL UNIQUE,
  customer_name TEXT,
  customer_phone TEXT,
  cart_total TEXT NOT NULL DEFAULT '0',
  status TEXT NOT NULL,
  recovered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS admin_users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`

// Open returns an isolated in-memory database with every service table.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	conn := OpenEmpty(t)
	if err := conn.Exec(schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return conn
}

// OpenEmpty returns an isolated in-memory database with no tables.
func OpenEmpty(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                db.UTCNow,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// one connection keeps the memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}
