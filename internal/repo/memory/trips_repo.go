package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/roamplan/tripplanner/internal/domain/trip"
)

type TripsRepo struct {
	mu         sync.RWMutex
	items      map[string]trip.Trip
	activities *ActivitiesRepo
}

func NewTripsRepo(activities *ActivitiesRepo) *TripsRepo {
	return &TripsRepo{
		items:      make(map[string]trip.Trip),
		activities: activities,
	}
}

func (r *TripsRepo) Create(ctx context.Context, t trip.Trip) (trip.Trip, error) {
	r.mu.Lock()
	r.items[t.ID] = t
	r.mu.Unlock()

	return t, nil
}

func (r *TripsRepo) ListByUser(ctx context.Context, userID string) ([]trip.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]trip.Trip, 0)

	for _, t := range r.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}

	// match the stable ordering of the SQL repo
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *TripsRepo) GetByID(ctx context.Context, userID, tripID string) (trip.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[tripID]

	if !ok || t.UserID != userID {
		return trip.Trip{}, trip.ErrNotFound
	}

	return t, nil
}

func (r *TripsRepo) Update(ctx context.Context, t trip.Trip) (trip.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[t.ID]

	if !ok || stored.UserID != t.UserID {
		return trip.Trip{}, trip.ErrNotFound
	}

	r.items[t.ID] = t

	return t, nil
}

func (r *TripsRepo) Delete(ctx context.Context, userID, tripID string) error {
	r.mu.Lock()

	t, ok := r.items[tripID]

	if !ok || t.UserID != userID {
		r.mu.Unlock()
		return trip.ErrNotFound
	}

	delete(r.items, tripID)
	r.mu.Unlock()

	if r.activities != nil {
		r.activities.deleteForTrip(tripID)
	}

	return nil
}

func (r *TripsRepo) allForUser(userID string) []trip.Trip {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]trip.Trip, 0)

	for _, t := range r.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}

	return out
}

func (r *TripsRepo) remove(tripID string) {
	r.mu.Lock()
	delete(r.items, tripID)
	r.mu.Unlock()
}
