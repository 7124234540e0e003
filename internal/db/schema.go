package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Statements are idempotent so the server can be pointed at an empty database
// and come up without a separate migration step.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trips (
		id          UUID PRIMARY KEY,
		user_id     UUID NOT NULL REFERENCES users(id),
		title       TEXT NOT NULL,
		destination TEXT NOT NULL,
		start_date  DATE NOT NULL,
		end_date    DATE NOT NULL,
		description TEXT,
		budget      NUMERIC(12,2),
		status      TEXT NOT NULL DEFAULT 'planned',
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS trips_user_id_idx ON trips (user_id)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id                UUID PRIMARY KEY,
		trip_id           UUID NOT NULL REFERENCES trips(id),
		title             TEXT NOT NULL,
		description       TEXT,
		location          TEXT,
		activity_date     DATE NOT NULL,
		start_time        TEXT,
		end_time          TEXT,
		cost              NUMERIC(12,2) NOT NULL DEFAULT 0,
		category          TEXT,
		booking_reference TEXT,
		booking_url       TEXT,
		notes             TEXT,
		is_booked         BOOLEAN NOT NULL DEFAULT FALSE,
		priority          TEXT NOT NULL DEFAULT 'medium',
		created_at        TIMESTAMPTZ NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS activities_trip_id_idx ON activities (trip_id)`,
}

// EnsureSchema creates the tables the API needs if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		_, err := pool.Exec(ctx, stmt)

		if err != nil {
			return err
		}
	}

	return nil
}
