package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roamplan/tripplanner/internal/domain/trip"
	"github.com/roamplan/tripplanner/internal/observability"
)

// Every query is scoped by user_id so a trip that exists but belongs to
// someone else is indistinguishable from one that does not exist.
type TripsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTripsRepo(pool *pgxpool.Pool, prom *observability.Prom) *TripsRepo {
	return &TripsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *TripsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const tripColumns = `id, user_id, title, destination, start_date, end_date, description, budget, status, created_at, updated_at`

func scanTrip(row pgx.Row) (trip.Trip, error) {
	var t trip.Trip
	var description *string

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Destination,
		&t.StartDate,
		&t.EndDate,
		&description,
		&t.Budget,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		return trip.Trip{}, err
	}

	if description != nil {
		t.Description = *description
	}

	return t, nil
}

func (r *TripsRepo) Create(ctx context.Context, t trip.Trip) (trip.Trip, error) {
	err := r.observe("trips.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO trips (`+tripColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			t.ID, t.UserID, t.Title, t.Destination, t.StartDate, t.EndDate,
			t.Description, t.Budget, t.Status, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return trip.Trip{}, err
	}

	return t, nil
}

func (r *TripsRepo) ListByUser(ctx context.Context, userID string) ([]trip.Trip, error) {
	var out []trip.Trip

	err := r.observe("trips.list_by_user", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+tripColumns+`
			FROM trips
			WHERE user_id = $1
			ORDER BY id`,
			userID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]trip.Trip, 0)

		for rows.Next() {
			t, err := scanTrip(rows)

			if err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *TripsRepo) GetByID(ctx context.Context, userID, tripID string) (trip.Trip, error) {
	var t trip.Trip

	err := r.observe("trips.get_by_id", func() error {
		var err error
		t, err = scanTrip(r.pool.QueryRow(ctx,
			`SELECT `+tripColumns+`
			FROM trips
			WHERE id = $1 AND user_id = $2`,
			tripID, userID,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return trip.Trip{}, trip.ErrNotFound
		}

		return trip.Trip{}, err
	}

	return t, nil
}

// Update persists an already-merged trip. The WHERE clause keeps the
// ownership check inside the statement itself.
func (r *TripsRepo) Update(ctx context.Context, t trip.Trip) (trip.Trip, error) {
	err := r.observe("trips.update", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE trips
			SET title = $3,
					destination = $4,
					start_date = $5,
					end_date = $6,
					description = $7,
					budget = $8,
					status = $9,
					updated_at = $10
			WHERE id = $1 AND user_id = $2`,
			t.ID, t.UserID, t.Title, t.Destination, t.StartDate, t.EndDate,
			t.Description, t.Budget, t.Status, t.UpdatedAt,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return trip.Trip{}, trip.ErrNotFound
		}

		return trip.Trip{}, err
	}

	return t, nil
}

// Delete removes the trip and its activities in one transaction.
func (r *TripsRepo) Delete(ctx context.Context, userID, tripID string) error {
	err := r.observe("trips.delete", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		_, err = tx.Exec(ctx, `
			DELETE FROM activities
			WHERE trip_id IN (SELECT id FROM trips WHERE id = $1 AND user_id = $2)
		`, tripID, userID)

		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM trips WHERE id = $1 AND user_id = $2`, tripID, userID)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		return tx.Commit(ctx)
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return trip.ErrNotFound
	}

	return err
}
