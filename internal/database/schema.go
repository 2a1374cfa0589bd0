package database

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// schema is applied in order inside one transaction. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(120) NOT NULL UNIQUE,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS plazas (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		location VARCHAR(200) NOT NULL,
		city VARCHAR(50) NOT NULL,
		state VARCHAR(50) NOT NULL,
		lanes INTEGER NOT NULL DEFAULT 4 CHECK (lanes > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id BIGSERIAL PRIMARY KEY,
		number VARCHAR(20) NOT NULL UNIQUE,
		tag_id VARCHAR(50) UNIQUE,
		vehicle_type VARCHAR(10) NOT NULL CHECK (vehicle_type IN ('bike','car','truck','bus','heavy')),
		owner_id BIGINT NOT NULL REFERENCES users(id),
		status VARCHAR(20) NOT NULL DEFAULT 'active' CHECK (status IN ('active','inactive','suspended')),
		registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS toll_rates (
		id BIGSERIAL PRIMARY KEY,
		plaza_id BIGINT NOT NULL REFERENCES plazas(id),
		vehicle_type VARCHAR(10) NOT NULL,
		time_slot VARCHAR(10) NOT NULL CHECK (time_slot IN ('normal','peak')),
		from_minute INTEGER NOT NULL CHECK (from_minute >= 0 AND from_minute < 1440),
		to_minute INTEGER NOT NULL CHECK (to_minute > from_minute AND to_minute <= 1440),
		amount BIGINT NOT NULL CHECK (amount >= 0),
		CONSTRAINT unique_rate UNIQUE (plaza_id, vehicle_type, from_minute, to_minute)
	)`,
	`CREATE TABLE IF NOT EXISTS wallets (
		id BIGSERIAL PRIMARY KEY,
		account_id BIGINT NOT NULL UNIQUE REFERENCES users(id),
		balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
		version INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS toll_transactions (
		id UUID PRIMARY KEY,
		vehicle_id BIGINT NOT NULL REFERENCES vehicles(id),
		plaza_id BIGINT NOT NULL REFERENCES plazas(id),
		lane_no INTEGER NOT NULL CHECK (lane_no > 0),
		amount BIGINT NOT NULL CHECK (amount >= 0),
		payment_mode VARCHAR(10) NOT NULL CHECK (payment_mode IN ('wallet','cash','upi')),
		status VARCHAR(10) NOT NULL CHECK (status IN ('completed','pending','failed','refunded')),
		time_slot VARCHAR(10) NOT NULL,
		operator_id BIGINT REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_toll_transactions_plaza_time ON toll_transactions (plaza_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_toll_transactions_vehicle_time ON toll_transactions (vehicle_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS wallet_ledger_entries (
		id UUID PRIMARY KEY,
		wallet_id BIGINT NOT NULL REFERENCES wallets(id),
		entry_type VARCHAR(10) NOT NULL CHECK (entry_type IN ('recharge','deduction','refund')),
		amount BIGINT NOT NULL CHECK (amount > 0),
		balance_after BIGINT NOT NULL CHECK (balance_after >= 0),
		reference_txn_id UUID REFERENCES toll_transactions(id) DEFERRABLE INITIALLY DEFERRED,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wallet_ledger_entries_wallet ON wallet_ledger_entries (wallet_id, created_at DESC)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_wallet_ledger_refund_once ON wallet_ledger_entries (reference_txn_id) WHERE entry_type = 'refund'`,
	`CREATE TABLE IF NOT EXISTS traffic_logs (
		plaza_id BIGINT NOT NULL REFERENCES plazas(id),
		date DATE NOT NULL,
		hour INTEGER NOT NULL CHECK (hour >= 0 AND hour < 24),
		vehicle_count INTEGER NOT NULL DEFAULT 0,
		total_revenue BIGINT NOT NULL DEFAULT 0,
		traffic_level VARCHAR(10) NOT NULL DEFAULT 'normal',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT unique_traffic_log PRIMARY KEY (plaza_id, date, hour)
	)`,
}

// Migrate creates the toll schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	log.WithField("statements", len(schema)).Info("Database schema up to date")
	return nil
}
