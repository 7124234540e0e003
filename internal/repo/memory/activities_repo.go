package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/roamplan/tripplanner/internal/domain/activity"
)

type ActivitiesRepo struct {
	mu    sync.RWMutex
	items map[string]activity.Activity
}

func NewActivitiesRepo() *ActivitiesRepo {
	return &ActivitiesRepo{
		items: make(map[string]activity.Activity),
	}
}

func (r *ActivitiesRepo) Create(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	r.mu.Lock()
	r.items[a.ID] = a
	r.mu.Unlock()

	return a, nil
}

func matches(a activity.Activity, filter activity.ListFilter) bool {
	if filter.Date != nil && !a.ActivityDate.Equal(filter.Date.Time) {
		return false
	}

	if filter.Category != nil && a.Category != *filter.Category {
		return false
	}

	if filter.Priority != nil && a.Priority != *filter.Priority {
		return false
	}

	if filter.IsBooked != nil && a.IsBooked != *filter.IsBooked {
		return false
	}

	return true
}

func (r *ActivitiesRepo) ListByTrip(ctx context.Context, tripID string, filter activity.ListFilter) ([]activity.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]activity.Activity, 0)

	for _, a := range r.items {
		if a.TripID == tripID && matches(a, filter) {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i], out[j]

		if !ai.ActivityDate.Equal(aj.ActivityDate.Time) {
			return ai.ActivityDate.Before(aj.ActivityDate.Time)
		}

		// nil start times sort first, matching the SQL repo
		switch {
		case ai.StartTime == nil && aj.StartTime != nil:
			return true
		case ai.StartTime != nil && aj.StartTime == nil:
			return false
		case ai.StartTime != nil && aj.StartTime != nil && !ai.StartTime.Equal(aj.StartTime.Time):
			return ai.StartTime.Before(aj.StartTime.Time)
		}

		return ai.ID < aj.ID
	})

	return out, nil
}

func (r *ActivitiesRepo) GetByID(ctx context.Context, tripID, activityID string) (activity.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[activityID]

	if !ok || a.TripID != tripID {
		return activity.Activity{}, activity.ErrNotFound
	}

	return a, nil
}

func (r *ActivitiesRepo) Update(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[a.ID]

	if !ok || stored.TripID != a.TripID {
		return activity.Activity{}, activity.ErrNotFound
	}

	r.items[a.ID] = a

	return a, nil
}

func (r *ActivitiesRepo) Delete(ctx context.Context, tripID, activityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[activityID]

	if !ok || a.TripID != tripID {
		return activity.ErrNotFound
	}

	delete(r.items, activityID)

	return nil
}

func (r *ActivitiesRepo) deleteForTrip(tripID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, a := range r.items {
		if a.TripID == tripID {
			delete(r.items, id)
		}
	}
}
