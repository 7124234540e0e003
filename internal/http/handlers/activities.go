package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roamplan/tripplanner/internal/config"
	"github.com/roamplan/tripplanner/internal/domain/activity"
	"github.com/roamplan/tripplanner/internal/domain/trip"
	"github.com/roamplan/tripplanner/internal/http/middlewares"
	"github.com/roamplan/tripplanner/internal/utils"
)

type ActivitiesStore interface {
	Create(ctx context.Context, a activity.Activity) (activity.Activity, error)
	ListByTrip(ctx context.Context, tripID string, filter activity.ListFilter) ([]activity.Activity, error)
	GetByID(ctx context.Context, tripID, activityID string) (activity.Activity, error)
	Update(ctx context.Context, a activity.Activity) (activity.Activity, error)
	Delete(ctx context.Context, tripID, activityID string) error
}

type TripsReader interface {
	GetByID(ctx context.Context, userID, tripID string) (trip.Trip, error)
}

type ActivitiesHandler struct {
	repo  ActivitiesStore
	trips TripsReader
}

func NewActivitiesHandler(repo ActivitiesStore, trips TripsReader) *ActivitiesHandler {
	return &ActivitiesHandler{
		repo:  repo,
		trips: trips,
	}
}

// ownedTrip resolves the trip through the requester's ownership scope.
// A foreign trip id 404s here before any activity is touched.
func (h *ActivitiesHandler) ownedTrip(ctx *gin.Context) (trip.Trip, bool) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return trip.Trip{}, false
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	t, err := h.trips.GetByID(cctx, userID, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, trip.ErrNotFound) {
			RespondNotFound(ctx, "Trip not found")
			return trip.Trip{}, false
		}

		RespondInternal(ctx, "Could not fetch trip")
		return trip.Trip{}, false
	}

	return t, true
}

func parseListFilter(ctx *gin.Context) (activity.ListFilter, error) {
	var filter activity.ListFilter

	if raw := ctx.Query("date"); raw != "" {
		d, err := utils.ParseDate(raw)

		if err != nil {
			return filter, err
		}

		filter.Date = &d
	}

	if raw := ctx.Query("category"); raw != "" {
		c := activity.Category(raw)
		filter.Category = &c
	}

	if raw := ctx.Query("priority"); raw != "" {
		p := activity.Priority(raw)
		filter.Priority = &p
	}

	if raw := ctx.Query("is_booked"); raw != "" {
		booked, err := strconv.ParseBool(raw)

		if err != nil {
			return filter, fmt.Errorf("is_booked must be true or false, got %q", raw)
		}

		filter.IsBooked = &booked
	}

	return filter, nil
}

func totalCost(activities []activity.Activity) float64 {
	total := 0.0

	for _, a := range activities {
		total += a.Cost
	}

	return total
}

func (h *ActivitiesHandler) ListActivities(ctx *gin.Context) {
	t, ok := h.ownedTrip(ctx)

	if !ok {
		return
	}

	filter, err := parseListFilter(ctx)

	if err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	activities, err := h.repo.ListByTrip(cctx, t.ID, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list activities")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"count":      len(activities),
		"total_cost": totalCost(activities),
	})
}

func (h *ActivitiesHandler) CreateActivity(ctx *gin.Context) {
	t, ok := h.ownedTrip(ctx)

	if !ok {
		return
	}

	var req activity.CreateActivityRequest

	if !BindJSON(ctx, &req) {
		return
	}

	a := activity.NewFromCreateRequest(t.ID, req)

	if err := a.Validate(t.StartDate, t.EndDate); err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, a)

	if err != nil {
		RespondInternal(ctx, "Could not create activity")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "Activity created successfully",
		"activity": created,
	})
}

func (h *ActivitiesHandler) GetActivity(ctx *gin.Context) {
	t, ok := h.ownedTrip(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	a, err := h.repo.GetByID(cctx, t.ID, ctx.Param("activityID"))

	if err != nil {
		if errors.Is(err, activity.ErrNotFound) {
			RespondNotFound(ctx, "Activity not found")
			return
		}

		RespondInternal(ctx, "Could not fetch activity")
		return
	}

	ctx.JSON(http.StatusOK, a)
}

func (h *ActivitiesHandler) UpdateActivity(ctx *gin.Context) {
	t, ok := h.ownedTrip(ctx)

	if !ok {
		return
	}

	var req activity.UpdateActivityRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	a, err := h.repo.GetByID(cctx, t.ID, ctx.Param("activityID"))

	if err != nil {
		if errors.Is(err, activity.ErrNotFound) {
			RespondNotFound(ctx, "Activity not found")
			return
		}

		RespondInternal(ctx, "Could not fetch activity")
		return
	}

	a.ApplyUpdate(req)

	if err := a.Validate(t.StartDate, t.EndDate); err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	updated, err := h.repo.Update(cctx, a)

	if err != nil {
		if errors.Is(err, activity.ErrNotFound) {
			RespondNotFound(ctx, "Activity not found")
			return
		}

		RespondInternal(ctx, "Could not update activity")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Activity updated successfully",
		"activity": updated,
	})
}

func (h *ActivitiesHandler) DeleteActivity(ctx *gin.Context) {
	t, ok := h.ownedTrip(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, t.ID, ctx.Param("activityID"))

	if err != nil {
		if errors.Is(err, activity.ErrNotFound) {
			RespondNotFound(ctx, "Activity not found")
			return
		}

		RespondInternal(ctx, "Could not delete activity")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// Itinerary returns every activity of the trip grouped by date, with a
// cost and booking summary.
func (h *ActivitiesHandler) Itinerary(ctx *gin.Context) {
	t, ok := h.ownedTrip(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	activities, err := h.repo.ListByTrip(cctx, t.ID, activity.ListFilter{})

	if err != nil {
		RespondInternal(ctx, "Could not build itinerary")
		return
	}

	byDate := make(map[string][]activity.Activity)
	byCategory := make(map[string]int)
	booked := 0

	for _, a := range activities {
		key := a.ActivityDate.String()
		byDate[key] = append(byDate[key], a)

		if a.Category != "" {
			byCategory[string(a.Category)]++
		}

		if a.IsBooked {
			booked++
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"trip":      t,
		"itinerary": byDate,
		"summary": gin.H{
			"total_activities":       len(activities),
			"total_cost":             totalCost(activities),
			"booked_activities":      booked,
			"unbooked_activities":    len(activities) - booked,
			"activities_by_category": byCategory,
		},
	})
}
