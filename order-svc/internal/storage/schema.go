package storage

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL,
		number INTEGER NOT NULL DEFAULT 0,
		type TEXT NOT NULL,
		priority TEXT NOT NULL,
		status TEXT NOT NULL,
		cancellation_reason TEXT NOT NULL DEFAULT '',
		ordered TIMESTAMPTZ NOT NULL,
		started_preparing TIMESTAMPTZ,
		finished_preparing TIMESTAMPTZ,
		items JSONB NOT NULL,
		table_number INTEGER,
		address JSONB,
		waiter_id TEXT NOT NULL,
		waiter_name TEXT NOT NULL,
		transaction_handler_id TEXT NOT NULL DEFAULT '',
		transaction_handler_name TEXT NOT NULL DEFAULT '',
		subtotal DOUBLE PRECISION NOT NULL,
		discount DOUBLE PRECISION NOT NULL DEFAULT 0,
		delivery_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
		total DOUBLE PRECISION NOT NULL,
		amount_paid DOUBLE PRECISION NOT NULL,
		change_amount DOUBLE PRECISION NOT NULL,
		payment_method TEXT NOT NULL,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		origin TEXT NOT NULL,
		customer_count INTEGER,
		version INTEGER NOT NULL DEFAULT 1,
		qr_code BYTEA,
		CHECK ((table_number IS NULL) <> (address IS NULL))
	)`,
	"CREATE INDEX IF NOT EXISTS orders_restaurant_ordered_idx ON orders (restaurant_id, ordered)",
	`CREATE TABLE IF NOT EXISTS workers (
		id TEXT NOT NULL,
		restaurant_id TEXT NOT NULL,
		display_name TEXT NOT NULL,
		role TEXT NOT NULL,
		PRIMARY KEY (restaurant_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS business_records (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL,
		original_order_id TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		week_day INTEGER NOT NULL,
		hour_slot INTEGER NOT NULL,
		subtotal DOUBLE PRECISION NOT NULL,
		discount DOUBLE PRECISION NOT NULL,
		delivery_fee DOUBLE PRECISION,
		total DOUBLE PRECISION NOT NULL,
		customer_count INTEGER,
		payment_method TEXT NOT NULL,
		origin TEXT NOT NULL,
		items JSONB NOT NULL,
		total_items_count INTEGER NOT NULL,
		time_to_start_preparing INTEGER NOT NULL,
		time_preparing INTEGER NOT NULL,
		time_to_delivery INTEGER,
		order_type TEXT NOT NULL,
		waiter_id TEXT NOT NULL,
		waiter_name TEXT NOT NULL,
		transaction_handler_id TEXT NOT NULL DEFAULT '',
		transaction_handler_name TEXT NOT NULL DEFAULT '',
		delivery_neighborhood TEXT NOT NULL DEFAULT '',
		is_canceled BOOLEAN NOT NULL DEFAULT FALSE,
		cancellation_reason TEXT NOT NULL DEFAULT '',
		UNIQUE (restaurant_id, original_order_id)
	)`,
	"CREATE INDEX IF NOT EXISTS business_records_restaurant_date_idx ON business_records (restaurant_id, date)",
}

// EnsureSchema creates the service tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}
