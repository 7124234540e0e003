package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roamplan/tripplanner/internal/domain/activity"
	"github.com/roamplan/tripplanner/internal/observability"
)

// Callers resolve trip ownership before touching this repo, so queries
// here are scoped by trip_id only.
type ActivitiesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewActivitiesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ActivitiesRepo {
	return &ActivitiesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ActivitiesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const activityColumns = `id, trip_id, title, description, location, activity_date, start_time, end_time,
	cost, category, booking_reference, booking_url, notes, is_booked, priority, created_at, updated_at`

func scanActivity(row pgx.Row) (activity.Activity, error) {
	var a activity.Activity
	var description, location, category, bookingRef, bookingURL, notes *string

	err := row.Scan(
		&a.ID,
		&a.TripID,
		&a.Title,
		&description,
		&location,
		&a.ActivityDate,
		&a.StartTime,
		&a.EndTime,
		&a.Cost,
		&category,
		&bookingRef,
		&bookingURL,
		&notes,
		&a.IsBooked,
		&a.Priority,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err != nil {
		return activity.Activity{}, err
	}

	if description != nil {
		a.Description = *description
	}
	if location != nil {
		a.Location = *location
	}
	if category != nil {
		a.Category = activity.Category(*category)
	}
	if bookingRef != nil {
		a.BookingReference = *bookingRef
	}
	if bookingURL != nil {
		a.BookingURL = *bookingURL
	}
	if notes != nil {
		a.Notes = *notes
	}

	return a, nil
}

func (r *ActivitiesRepo) Create(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	err := r.observe("activities.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO activities (`+activityColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			a.ID, a.TripID, a.Title, a.Description, a.Location, a.ActivityDate,
			a.StartTime, a.EndTime, a.Cost, string(a.Category), a.BookingReference,
			a.BookingURL, a.Notes, a.IsBooked, string(a.Priority), a.CreatedAt, a.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return activity.Activity{}, err
	}

	return a, nil
}

func (r *ActivitiesRepo) ListByTrip(ctx context.Context, tripID string, filter activity.ListFilter) ([]activity.Activity, error) {
	baseQuery := `SELECT ` + activityColumns + ` FROM activities`

	conds := []string{"trip_id = $1"}
	args := []interface{}{tripID}

	argsPosition := 2

	if filter.Date != nil {
		conds = append(conds, fmt.Sprintf("activity_date = $%d", argsPosition))
		args = append(args, *filter.Date)
		argsPosition++
	}

	if filter.Category != nil {
		conds = append(conds, fmt.Sprintf("category = $%d", argsPosition))
		args = append(args, string(*filter.Category))
		argsPosition++
	}

	if filter.Priority != nil {
		conds = append(conds, fmt.Sprintf("priority = $%d", argsPosition))
		args = append(args, string(*filter.Priority))
		argsPosition++
	}

	if filter.IsBooked != nil {
		conds = append(conds, fmt.Sprintf("is_booked = $%d", argsPosition))
		args = append(args, *filter.IsBooked)
		argsPosition++
	}

	query := baseQuery + " WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY activity_date, start_time NULLS FIRST, id"

	var out []activity.Activity

	err := r.observe("activities.list_by_trip", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]activity.Activity, 0)

		for rows.Next() {
			a, err := scanActivity(rows)

			if err != nil {
				return err
			}

			out = append(out, a)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ActivitiesRepo) GetByID(ctx context.Context, tripID, activityID string) (activity.Activity, error) {
	var a activity.Activity

	err := r.observe("activities.get_by_id", func() error {
		var err error
		a, err = scanActivity(r.pool.QueryRow(ctx,
			`SELECT `+activityColumns+`
			FROM activities
			WHERE id = $1 AND trip_id = $2`,
			activityID, tripID,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return activity.Activity{}, activity.ErrNotFound
		}

		return activity.Activity{}, err
	}

	return a, nil
}

func (r *ActivitiesRepo) Update(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	err := r.observe("activities.update", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE activities
			SET title = $3,
					description = $4,
					location = $5,
					activity_date = $6,
					start_time = $7,
					end_time = $8,
					cost = $9,
					category = $10,
					booking_reference = $11,
					booking_url = $12,
					notes = $13,
					is_booked = $14,
					priority = $15,
					updated_at = $16
			WHERE id = $1 AND trip_id = $2`,
			a.ID, a.TripID, a.Title, a.Description, a.Location, a.ActivityDate,
			a.StartTime, a.EndTime, a.Cost, string(a.Category), a.BookingReference,
			a.BookingURL, a.Notes, a.IsBooked, string(a.Priority), a.UpdatedAt,
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
			return activity.Activity{}, activity.ErrNotFound
		}

		return activity.Activity{}, err
	}

	return a, nil
}

func (r *ActivitiesRepo) Delete(ctx context.Context, tripID, activityID string) error {
	err := r.observe("activities.delete", func() error {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM activities WHERE id = $1 AND trip_id = $2`,
			activityID, tripID,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		return nil
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return activity.ErrNotFound
	}

	return err
}
