package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/roamplan/tripplanner/internal/domain/activity"
	"github.com/roamplan/tripplanner/internal/domain/trip"
	"github.com/roamplan/tripplanner/internal/http/handlers"
	"github.com/roamplan/tripplanner/internal/http/middlewares"
	"github.com/roamplan/tripplanner/internal/repo/memory"
	"github.com/roamplan/tripplanner/internal/utils"
)

// fakeTripsReader scopes trip lookup by owner, like the real repo does.

type fakeTripsReader struct {
	trips []trip.Trip
}

func (f *fakeTripsReader) GetByID(ctx context.Context, userID, tripID string) (trip.Trip, error) {
	for _, t := range f.trips {
		if t.ID == tripID && t.UserID == userID {
			return t, nil
		}
	}
	return trip.Trip{}, trip.ErrNotFound
}

func activitiesRouter(t *testing.T, userID string, repo handlers.ActivitiesStore, trips handlers.TripsReader) *gin.Engine {
	t.Helper()

	h := handlers.NewActivitiesHandler(repo, trips)

	r := gin.New()
	r.Use(func(c *gin.Context) { middlewares.SetUserID(c, userID) })

	r.GET("/api/trips/:id/activities", h.ListActivities)
	r.POST("/api/trips/:id/activities", h.CreateActivity)
	r.GET("/api/trips/:id/activities/:activityID", h.GetActivity)
	r.PUT("/api/trips/:id/activities/:activityID", h.UpdateActivity)
	r.DELETE("/api/trips/:id/activities/:activityID", h.DeleteActivity)
	r.GET("/api/trips/:id/itinerary", h.Itinerary)

	return r
}

func parisTrip(t *testing.T) trip.Trip {
	t.Helper()

	return trip.Trip{
		ID:          "trip-1",
		UserID:      "user-a",
		Title:       "Paris",
		Destination: "Paris, France",
		StartDate:   mustDate(t, "2024-07-01"),
		EndDate:     mustDate(t, "2024-07-05"),
		Status:      trip.StatusPlanned,
	}
}

func TestCreateActivityHandler(t *testing.T) {
	tests := []struct {
		name           string
		tripID         string
		body           string
		wantStatusCode int
	}{
		{
			name:   "success",
			tripID: "trip-1",
			body: `{
				"title": "Louvre",
				"activity_date": "2024-07-02",
				"start_time": "09:00",
				"end_time": "12:30",
				"cost": 17,
				"category": "sightseeing",
				"priority": "must-do"
			}`,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "date_before_trip",
			tripID:         "trip-1",
			body:           `{"title": "Early", "activity_date": "2024-06-30"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "date_after_trip",
			tripID:         "trip-1",
			body:           `{"title": "Late", "activity_date": "2024-07-06"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:   "end_time_before_start_time",
			tripID: "trip-1",
			body: `{
				"title": "Backwards",
				"activity_date": "2024-07-02",
				"start_time": "14:00",
				"end_time": "13:00"
			}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "negative_cost",
			tripID:         "trip-1",
			body:           `{"title": "Free?", "activity_date": "2024-07-02", "cost": -5}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "unknown_category",
			tripID:         "trip-1",
			body:           `{"title": "Odd", "activity_date": "2024-07-02", "category": "spelunking"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "foreign_trip",
			tripID:         "trip-of-someone-else",
			body:           `{"title": "Louvre", "activity_date": "2024-07-02"}`,
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewActivitiesRepo()
			trips := &fakeTripsReader{trips: []trip.Trip{parisTrip(t)}}

			r := activitiesRouter(t, "user-a", repo, trips)

			w := doJSON(r, http.MethodPost, "/api/trips/"+tt.tripID+"/activities", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusCreated {
				return
			}

			var resp struct {
				Activity activity.Activity `json:"activity"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}

			if resp.Activity.TripID != "trip-1" {
				t.Fatalf("activity trip_id %q, want trip-1", resp.Activity.TripID)
			}

			if resp.Activity.Priority != activity.PriorityMustDo {
				t.Fatalf("priority %q, want must-do", resp.Activity.Priority)
			}
		})
	}
}

func TestCreateActivityDefaults(t *testing.T) {
	repo := memory.NewActivitiesRepo()
	trips := &fakeTripsReader{trips: []trip.Trip{parisTrip(t)}}

	r := activitiesRouter(t, "user-a", repo, trips)

	w := doJSON(r, http.MethodPost, "/api/trips/trip-1/activities",
		`{"title": "Stroll", "activity_date": "2024-07-03"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Activity activity.Activity `json:"activity"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.Activity.Priority != activity.PriorityMedium {
		t.Fatalf("default priority %q, want medium", resp.Activity.Priority)
	}

	if resp.Activity.Cost != 0 {
		t.Fatalf("default cost %v, want 0", resp.Activity.Cost)
	}

	if resp.Activity.IsBooked {
		t.Fatal("new activity should not be booked by default")
	}
}

func seedActivity(t *testing.T, repo *memory.ActivitiesRepo, a activity.Activity) activity.Activity {
	t.Helper()

	created, err := repo.Create(context.Background(), a)

	if err != nil {
		t.Fatalf("seed activity: %v", err)
	}

	return created
}

func TestListActivitiesFilters(t *testing.T) {
	repo := memory.NewActivitiesRepo()
	trips := &fakeTripsReader{trips: []trip.Trip{parisTrip(t)}}

	seedActivity(t, repo, activity.Activity{
		ID:           "act-1",
		TripID:       "trip-1",
		Title:        "Louvre",
		ActivityDate: mustDate(t, "2024-07-02"),
		Cost:         17,
		Category:     activity.CategorySightseeing,
		Priority:     activity.PriorityMustDo,
		IsBooked:     true,
	})
	seedActivity(t, repo, activity.Activity{
		ID:           "act-2",
		TripID:       "trip-1",
		Title:        "Dinner",
		ActivityDate: mustDate(t, "2024-07-02"),
		Cost:         60,
		Category:     activity.CategoryDining,
		Priority:     activity.PriorityMedium,
	})
	seedActivity(t, repo, activity.Activity{
		ID:           "act-3",
		TripID:       "trip-1",
		Title:        "Versailles",
		ActivityDate: mustDate(t, "2024-07-03"),
		Cost:         21,
		Category:     activity.CategorySightseeing,
		Priority:     activity.PriorityHigh,
	})

	r := activitiesRouter(t, "user-a", repo, trips)

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantCost  float64
	}{
		{name: "no_filter", query: "", wantCount: 3, wantCost: 98},
		{name: "by_date", query: "?date=2024-07-02", wantCount: 2, wantCost: 77},
		{name: "by_category", query: "?category=sightseeing", wantCount: 2, wantCost: 38},
		{name: "by_priority", query: "?priority=must-do", wantCount: 1, wantCost: 17},
		{name: "by_booked", query: "?is_booked=true", wantCount: 1, wantCost: 17},
		{name: "by_booked_numeric", query: "?is_booked=1", wantCount: 1, wantCost: 17},
		{name: "by_unbooked", query: "?is_booked=false", wantCount: 2, wantCost: 81},
		{name: "combined", query: "?date=2024-07-02&category=sightseeing", wantCount: 1, wantCost: 17},
		{name: "no_match", query: "?date=2024-07-04", wantCount: 0, wantCost: 0},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/trips/trip-1/activities"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
			}

			var resp struct {
				Activities []activity.Activity `json:"activities"`
				Count      int                 `json:"count"`
				TotalCost  float64             `json:"total_cost"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}

			if resp.Count != tt.wantCount || len(resp.Activities) != tt.wantCount {
				t.Fatalf("count %d (len %d), want %d", resp.Count, len(resp.Activities), tt.wantCount)
			}

			if resp.TotalCost != tt.wantCost {
				t.Fatalf("total_cost %v, want %v", resp.TotalCost, tt.wantCost)
			}
		})
	}
}

func TestListActivitiesBadFilters(t *testing.T) {
	repo := memory.NewActivitiesRepo()
	trips := &fakeTripsReader{trips: []trip.Trip{parisTrip(t)}}

	r := activitiesRouter(t, "user-a", repo, trips)

	tests := []struct {
		name  string
		query string
	}{
		{name: "garbage_is_booked", query: "?is_booked=yes"},
		{name: "garbage_date", query: "?date=not-a-date"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/trips/trip-1/activities"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateActivityHandler(t *testing.T) {
	trips := &fakeTripsReader{trips: []trip.Trip{parisTrip(t)}}

	tests := []struct {
		name           string
		activityID     string
		body           string
		wantStatusCode int
	}{
		{
			name:           "success",
			activityID:     "act-1",
			body:           `{"is_booked": true, "booking_reference": "LVR-123"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "moved_out_of_range",
			activityID:     "act-1",
			body:           `{"activity_date": "2024-08-01"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "unknown_activity",
			activityID:     "nope",
			body:           `{"is_booked": true}`,
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewActivitiesRepo()

			seedActivity(t, repo, activity.Activity{
				ID:           "act-1",
				TripID:       "trip-1",
				Title:        "Louvre",
				ActivityDate: mustDate(t, "2024-07-02"),
			})

			r := activitiesRouter(t, "user-a", repo, trips)

			w := doJSON(r, http.MethodPut, "/api/trips/trip-1/activities/"+tt.activityID, tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var resp struct {
				Activity activity.Activity `json:"activity"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}

			if !resp.Activity.IsBooked || resp.Activity.BookingReference != "LVR-123" {
				t.Fatalf("update not applied: %+v", resp.Activity)
			}

			if resp.Activity.Title != "Louvre" {
				t.Fatalf("untouched field changed: title %q", resp.Activity.Title)
			}
		})
	}
}

func TestDeleteActivityHandler(t *testing.T) {
	repo := memory.NewActivitiesRepo()
	trips := &fakeTripsReader{trips: []trip.Trip{parisTrip(t)}}

	seedActivity(t, repo, activity.Activity{
		ID:           "act-1",
		TripID:       "trip-1",
		Title:        "Louvre",
		ActivityDate: mustDate(t, "2024-07-02"),
	})

	r := activitiesRouter(t, "user-a", repo, trips)

	req := httptest.NewRequest(http.MethodDelete, "/api/trips/trip-1/activities/act-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	// repeat delete must 404
	req = httptest.NewRequest(http.MethodDelete, "/api/trips/trip-1/activities/act-1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete got status %d, want 404", w.Code)
	}
}

func TestItineraryHandler(t *testing.T) {
	repo := memory.NewActivitiesRepo()
	trips := &fakeTripsReader{trips: []trip.Trip{parisTrip(t)}}

	morning, err := utils.ParseClockTime("09:00")

	if err != nil {
		t.Fatalf("parse clock time: %v", err)
	}

	seedActivity(t, repo, activity.Activity{
		ID:           "act-1",
		TripID:       "trip-1",
		Title:        "Louvre",
		ActivityDate: mustDate(t, "2024-07-02"),
		StartTime:    &morning,
		Cost:         17,
		Category:     activity.CategorySightseeing,
		IsBooked:     true,
	})
	seedActivity(t, repo, activity.Activity{
		ID:           "act-2",
		TripID:       "trip-1",
		Title:        "Dinner",
		ActivityDate: mustDate(t, "2024-07-02"),
		Cost:         60,
		Category:     activity.CategoryDining,
	})
	seedActivity(t, repo, activity.Activity{
		ID:           "act-3",
		TripID:       "trip-1",
		Title:        "Versailles",
		ActivityDate: mustDate(t, "2024-07-03"),
		Cost:         21,
		Category:     activity.CategorySightseeing,
	})

	r := activitiesRouter(t, "user-a", repo, trips)

	req := httptest.NewRequest(http.MethodGet, "/api/trips/trip-1/itinerary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Trip      trip.Trip                      `json:"trip"`
		Itinerary map[string][]activity.Activity `json:"itinerary"`
		Summary   struct {
			TotalActivities      int            `json:"total_activities"`
			TotalCost            float64        `json:"total_cost"`
			BookedActivities     int            `json:"booked_activities"`
			UnbookedActivities   int            `json:"unbooked_activities"`
			ActivitiesByCategory map[string]int `json:"activities_by_category"`
		} `json:"summary"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if len(resp.Itinerary) != 2 {
		t.Fatalf("itinerary has %d days, want 2", len(resp.Itinerary))
	}

	if got := len(resp.Itinerary["2024-07-02"]); got != 2 {
		t.Fatalf("2024-07-02 has %d activities, want 2", got)
	}

	if got := len(resp.Itinerary["2024-07-03"]); got != 1 {
		t.Fatalf("2024-07-03 has %d activities, want 1", got)
	}

	s := resp.Summary

	if s.TotalActivities != 3 || s.TotalCost != 98 || s.BookedActivities != 1 || s.UnbookedActivities != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}

	if s.ActivitiesByCategory["sightseeing"] != 2 || s.ActivitiesByCategory["dining"] != 1 {
		t.Fatalf("unexpected category counts: %v", s.ActivitiesByCategory)
	}

	if resp.Trip.ID != "trip-1" {
		t.Fatalf("itinerary trip id %q, want trip-1", resp.Trip.ID)
	}
}
