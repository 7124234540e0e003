// Package memory holds map-backed repositories with the same contracts as
// the postgres ones. They back the integration tests and local runs that
// have no database.
package memory

import (
	"context"
	"sync"

	"github.com/roamplan/tripplanner/internal/domain/user"
)

type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User

	// set so user deletion can cascade through owned records
	trips      *TripsRepo
	activities *ActivitiesRepo
}

func NewUsersRepo(trips *TripsRepo, activities *ActivitiesRepo) *UsersRepo {
	return &UsersRepo{
		items:      make(map[string]user.User),
		trips:      trips,
		activities: activities,
	}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Username == u.Username {
			return user.User{}, user.ErrUsernameTaken
		}
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()

	_, ok := r.items[id]

	if !ok {
		r.mu.Unlock()
		return user.ErrNotFound
	}

	delete(r.items, id)
	r.mu.Unlock()

	if r.trips != nil {
		for _, t := range r.trips.allForUser(id) {
			if r.activities != nil {
				r.activities.deleteForTrip(t.ID)
			}
			r.trips.remove(t.ID)
		}
	}

	return nil
}
