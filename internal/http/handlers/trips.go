package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roamplan/tripplanner/internal/cache"
	"github.com/roamplan/tripplanner/internal/config"
	"github.com/roamplan/tripplanner/internal/domain/trip"
	"github.com/roamplan/tripplanner/internal/http/middlewares"
)

type TripsStore interface {
	Create(ctx context.Context, t trip.Trip) (trip.Trip, error)
	ListByUser(ctx context.Context, userID string) ([]trip.Trip, error)
	GetByID(ctx context.Context, userID, tripID string) (trip.Trip, error)
	Update(ctx context.Context, t trip.Trip) (trip.Trip, error)
	Delete(ctx context.Context, userID, tripID string) error
}

type TripsHandler struct {
	repo      TripsStore
	listCache *cache.Cache
}

func NewTripsHandler(repo TripsStore, listCache *cache.Cache) *TripsHandler {
	return &TripsHandler{
		repo:      repo,
		listCache: listCache,
	}
}

// tripsCacheKey is shared with the users handler, whose cascade delete
// must drop the owner's cached list too.
func tripsCacheKey(userID string) string {
	return "trips:" + userID
}

func (h *TripsHandler) invalidate(userID string) {
	if h.listCache != nil {
		h.listCache.Delete(tripsCacheKey(userID))
	}
}

func (h *TripsHandler) ListTrips(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	if h.listCache != nil {
		if v, ok := h.listCache.Get(tripsCacheKey(userID)); ok {
			if trips, ok := v.([]trip.Trip); ok {
				ctx.JSON(http.StatusOK, gin.H{"trips": trips})
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	trips, err := h.repo.ListByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list trips")
		return
	}

	if h.listCache != nil {
		h.listCache.Set(tripsCacheKey(userID), trips)
	}

	ctx.JSON(http.StatusOK, gin.H{"trips": trips})
}

func (h *TripsHandler) CreateTrip(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req trip.CreateTripRequest

	if !BindJSON(ctx, &req) {
		return
	}

	t := trip.NewFromCreateRequest(userID, req)

	if err := t.Validate(); err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, t)

	if err != nil {
		RespondInternal(ctx, "Could not create trip")
		return
	}

	h.invalidate(userID)

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Trip created successfully",
		"trip":    created,
	})
}

func (h *TripsHandler) GetTrip(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	t, err := h.repo.GetByID(cctx, userID, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, trip.ErrNotFound) {
			RespondNotFound(ctx, "Trip not found")
			return
		}

		RespondInternal(ctx, "Could not fetch trip")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TripsHandler) UpdateTrip(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req trip.UpdateTripRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	t, err := h.repo.GetByID(cctx, userID, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, trip.ErrNotFound) {
			RespondNotFound(ctx, "Trip not found")
			return
		}

		RespondInternal(ctx, "Could not fetch trip")
		return
	}

	t.ApplyUpdate(req)

	// invariants must hold on the merged result
	if err := t.Validate(); err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	updated, err := h.repo.Update(cctx, t)

	if err != nil {
		if errors.Is(err, trip.ErrNotFound) {
			RespondNotFound(ctx, "Trip not found")
			return
		}

		RespondInternal(ctx, "Could not update trip")
		return
	}

	h.invalidate(userID)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Trip updated successfully",
		"trip":    updated,
	})
}

func (h *TripsHandler) DeleteTrip(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, userID, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, trip.ErrNotFound) {
			RespondNotFound(ctx, "Trip not found")
			return
		}

		RespondInternal(ctx, "Could not delete trip")
		return
	}

	h.invalidate(userID)

	ctx.Status(http.StatusNoContent)
}
