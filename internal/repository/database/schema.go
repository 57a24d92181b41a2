package database

import (
	"context"
	"fmt"

	"invoice_recorder/internal/config/connections/postgres"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS invoices (
		id                uuid PRIMARY KEY,
		owner_id          text NOT NULL,
		invoice_number    varchar(100) NOT NULL,
		party             varchar(255) NOT NULL,
		firm              varchar(255) NOT NULL,
		quality           varchar(255) NOT NULL,
		meter             numeric(15,2),
		invoice_date      date NOT NULL,
		due_date          date NOT NULL,
		payment_date_1    date,
		payment_date_2    date,
		total_amount      numeric(15,2) NOT NULL CHECK (total_amount >= 0),
		balance           numeric(15,2) NOT NULL CHECK (balance >= 0 AND balance <= total_amount),
		payment_1         numeric(15,2),
		dhara_day         integer NOT NULL,
		taka              numeric(15,2) NOT NULL,
		payment_2         numeric(15,2) CHECK (payment_2 >= 0),
		payment_2_paid    numeric(15,2) NOT NULL DEFAULT 0,
		settled_payment_2 boolean NOT NULL DEFAULT false,
		created_at        timestamptz NOT NULL DEFAULT NOW(),
		updated_at        timestamptz NOT NULL DEFAULT NOW(),
		CHECK (NOT settled_payment_2 OR payment_2 = 0)
	)`,
	`CREATE INDEX IF NOT EXISTS invoices_owner_date_idx ON invoices (owner_id, invoice_date)`,
	`CREATE TABLE IF NOT EXISTS report_artifacts (
		owner_id     text NOT NULL,
		month        char(7) NOT NULL,
		format       varchar(8) NOT NULL,
		object_key   text NOT NULL,
		size_bytes   bigint NOT NULL DEFAULT 0,
		stale        boolean NOT NULL DEFAULT false,
		generated_at timestamptz NOT NULL DEFAULT NOW(),
		updated_at   timestamptz NOT NULL DEFAULT NOW(),
		PRIMARY KEY (owner_id, month, format)
	)`,
	`CREATE TABLE IF NOT EXISTS api_tokens (
		id         bigserial PRIMARY KEY,
		owner_id   text NOT NULL,
		name       text NOT NULL DEFAULT '',
		token_hash char(64) NOT NULL UNIQUE,
		expires_at timestamptz,
		created_at timestamptz NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the tables the service needs when they are missing.
func EnsureSchema(ctx context.Context, pg *postgres.Postgres) error {
	for i, stmt := range schema {
		if _, err := pg.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
