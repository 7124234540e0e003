package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roamplan/tripplanner/internal/cache"
	"github.com/roamplan/tripplanner/internal/domain/trip"
	"github.com/roamplan/tripplanner/internal/http/handlers"
	"github.com/roamplan/tripplanner/internal/http/middlewares"
	"github.com/roamplan/tripplanner/internal/utils"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake repository implementation of the handlers.TripsStore interface

type fakeTripsRepo struct {
	createFn func(ctx context.Context, t trip.Trip) (trip.Trip, error)
	listFn   func(ctx context.Context, userID string) ([]trip.Trip, error)
	getFn    func(ctx context.Context, userID, tripID string) (trip.Trip, error)
	updateFn func(ctx context.Context, t trip.Trip) (trip.Trip, error)
	deleteFn func(ctx context.Context, userID, tripID string) error
}

func (f *fakeTripsRepo) Create(ctx context.Context, t trip.Trip) (trip.Trip, error) {
	if f.createFn != nil {
		return f.createFn(ctx, t)
	}
	return t, nil
}

func (f *fakeTripsRepo) ListByUser(ctx context.Context, userID string) ([]trip.Trip, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return []trip.Trip{}, nil
}

func (f *fakeTripsRepo) GetByID(ctx context.Context, userID, tripID string) (trip.Trip, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID, tripID)
	}
	return trip.Trip{}, nil
}

func (f *fakeTripsRepo) Update(ctx context.Context, t trip.Trip) (trip.Trip, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, t)
	}
	return t, nil
}

func (f *fakeTripsRepo) Delete(ctx context.Context, userID, tripID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, tripID)
	}
	return nil
}

// mounts one handler per test with a fixed authenticated identity

func setupRouter(method, path, userID string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, func(c *gin.Context) {
		if userID != "" {
			middlewares.SetUserID(c, userID)
		}
		h(c)
	})

	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func mustDate(t *testing.T, s string) utils.Date {
	t.Helper()

	d, err := utils.ParseDate(s)

	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}

	return d
}

func storedTrip(t *testing.T, userID string) trip.Trip {
	t.Helper()

	now := time.Now().UTC()

	return trip.Trip{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       "Summer Vacation",
		Destination: "Paris, France",
		StartDate:   mustDate(t, "2024-07-01"),
		EndDate:     mustDate(t, "2024-07-15"),
		Budget:      5000,
		Status:      trip.StatusPlanned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateTripHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeTripsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{
				"title": "Summer Vacation",
				"destination": "Paris, France",
				"start_date": "2024-07-01",
				"end_date": "2024-07-15",
				"budget": 5000,
				"status": "planned"
			}`,
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "zero_budget_is_valid",
			body: `{
				"title": "Shoestring",
				"destination": "Lisbon",
				"start_date": "2024-07-01",
				"end_date": "2024-07-02",
				"budget": 0
			}`,
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "missing_required_fields",
			body: `{"title": "No destination"}`,
			// repo must not be called on a bad request
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "end_before_start",
			body: `{
				"title": "Backwards",
				"destination": "Rome",
				"start_date": "2024-07-15",
				"end_date": "2024-07-01"
			}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "negative_budget",
			body: `{
				"title": "Broke",
				"destination": "Rome",
				"start_date": "2024-07-01",
				"end_date": "2024-07-15",
				"budget": -1
			}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "unknown_status",
			body: `{
				"title": "Odd",
				"destination": "Rome",
				"start_date": "2024-07-01",
				"end_date": "2024-07-15",
				"status": "daydreaming"
			}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{
				"title": "Summer Vacation",
				"destination": "Paris, France",
				"start_date": "2024-07-01",
				"end_date": "2024-07-15"
			}`,
			repoSetUp: func(f *fakeTripsRepo) {
				f.createFn = func(ctx context.Context, tr trip.Trip) (trip.Trip, error) {
					return trip.Trip{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTripsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewTripsHandler(repo, nil)

			r := setupRouter(http.MethodPost, "/api/trips", "user-a", h.CreateTrip)

			w := doJSON(r, http.MethodPost, "/api/trips", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCreateTripStampsOwner(t *testing.T) {
	repo := &fakeTripsRepo{}

	var gotOwner string

	repo.createFn = func(ctx context.Context, tr trip.Trip) (trip.Trip, error) {
		gotOwner = tr.UserID
		return tr, nil
	}

	h := handlers.NewTripsHandler(repo, nil)
	r := setupRouter(http.MethodPost, "/api/trips", "user-a", h.CreateTrip)

	w := doJSON(r, http.MethodPost, "/api/trips", `{
		"title": "T",
		"destination": "D",
		"start_date": "2024-01-01",
		"end_date": "2024-01-05",
		"budget": 100,
		"status": "planned"
	}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if gotOwner != "user-a" {
		t.Fatalf("trip persisted with user_id %q, want user-a", gotOwner)
	}

	var resp struct {
		Trip trip.Trip `json:"trip"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.Trip.UserID != "user-a" {
		t.Fatalf("response user_id %q, want user-a", resp.Trip.UserID)
	}
}

func TestGetTripHandler(t *testing.T) {
	owned := storedTrip(t, "user-a")

	ownershipScopedGet := func(ctx context.Context, userID, tripID string) (trip.Trip, error) {
		if userID == owned.UserID && tripID == owned.ID {
			return owned, nil
		}
		return trip.Trip{}, trip.ErrNotFound
	}

	tests := []struct {
		name           string
		userID         string
		tripID         string
		wantStatusCode int
	}{
		{name: "owner_sees_trip", userID: "user-a", tripID: owned.ID, wantStatusCode: http.StatusOK},
		{name: "other_user_gets_404", userID: "user-b", tripID: owned.ID, wantStatusCode: http.StatusNotFound},
		{name: "unknown_id_gets_404", userID: "user-a", tripID: uuid.NewString(), wantStatusCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTripsRepo{getFn: ownershipScopedGet}

			h := handlers.NewTripsHandler(repo, nil)
			r := setupRouter(http.MethodGet, "/api/trips/:id", tt.userID, h.GetTrip)

			req := httptest.NewRequest(http.MethodGet, "/api/trips/"+tt.tripID, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateTripHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeTripsRepo, trip.Trip)
		wantStatusCode int
	}{
		{
			name:           "partial_update_ok",
			body:           `{"title": "Renamed"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name: "merged_dates_invalid",
			// moving start past the stored end must fail validation
			body:           `{"start_date": "2024-08-01"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "merged_budget_invalid",
			body:           `{"budget": -50}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_owned",
			body: `{"title": "Renamed"}`,
			repoSetUp: func(f *fakeTripsRepo, stored trip.Trip) {
				f.getFn = func(ctx context.Context, userID, tripID string) (trip.Trip, error) {
					return trip.Trip{}, trip.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			stored := storedTrip(t, "user-a")

			repo := &fakeTripsRepo{
				getFn: func(ctx context.Context, userID, tripID string) (trip.Trip, error) {
					return stored, nil
				},
			}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo, stored)
			}

			h := handlers.NewTripsHandler(repo, nil)
			r := setupRouter(http.MethodPut, "/api/trips/:id", "user-a", h.UpdateTrip)

			w := doJSON(r, http.MethodPut, "/api/trips/"+stored.ID, tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateTripRefreshesTimestamp(t *testing.T) {
	stored := storedTrip(t, "user-a")
	stored.UpdatedAt = time.Now().UTC().Add(-time.Hour)

	var persisted trip.Trip

	repo := &fakeTripsRepo{
		getFn: func(ctx context.Context, userID, tripID string) (trip.Trip, error) {
			return stored, nil
		},
		updateFn: func(ctx context.Context, tr trip.Trip) (trip.Trip, error) {
			persisted = tr
			return tr, nil
		},
	}

	h := handlers.NewTripsHandler(repo, nil)
	r := setupRouter(http.MethodPut, "/api/trips/:id", "user-a", h.UpdateTrip)

	w := doJSON(r, http.MethodPut, "/api/trips/"+stored.ID, `{"status": "ongoing"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if !persisted.UpdatedAt.After(stored.CreatedAt) || persisted.UpdatedAt.Equal(stored.UpdatedAt) {
		t.Fatalf("updated_at not refreshed: %v", persisted.UpdatedAt)
	}

	if persisted.Status != trip.StatusOngoing {
		t.Fatalf("status not merged, got %q", persisted.Status)
	}
}

func TestDeleteTripHandler(t *testing.T) {
	tests := []struct {
		name           string
		repoSetUp      func(*fakeTripsRepo)
		wantStatusCode int
	}{
		{
			name:           "success",
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "not_owned",
			repoSetUp: func(f *fakeTripsRepo) {
				f.deleteFn = func(ctx context.Context, userID, tripID string) error {
					return trip.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTripsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewTripsHandler(repo, nil)
			r := setupRouter(http.MethodDelete, "/api/trips/:id", "user-a", h.DeleteTrip)

			req := httptest.NewRequest(http.MethodDelete, "/api/trips/"+uuid.NewString(), nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListTripsCacheInvalidation(t *testing.T) {
	listCalls := 0

	repo := &fakeTripsRepo{
		listFn: func(ctx context.Context, userID string) ([]trip.Trip, error) {
			listCalls++
			return []trip.Trip{}, nil
		},
	}

	h := handlers.NewTripsHandler(repo, cache.New(time.Minute))

	r := gin.New()
	r.Use(func(c *gin.Context) { middlewares.SetUserID(c, "user-a") })
	r.GET("/api/trips", h.ListTrips)
	r.POST("/api/trips", h.CreateTrip)

	list := func() {
		req := httptest.NewRequest(http.MethodGet, "/api/trips", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("list failed: %d %s", w.Code, w.Body.String())
		}
	}

	list()
	list()

	if listCalls != 1 {
		t.Fatalf("repo hit %d times, want 1 (second list should be cached)", listCalls)
	}

	w := doJSON(r, http.MethodPost, "/api/trips", `{
		"title": "T",
		"destination": "D",
		"start_date": "2024-01-01",
		"end_date": "2024-01-05"
	}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}

	list()

	if listCalls != 2 {
		t.Fatalf("repo hit %d times, want 2 (create should invalidate the cache)", listCalls)
	}
}
