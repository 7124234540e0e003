package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roamplan/tripplanner/internal/cache"
	"github.com/roamplan/tripplanner/internal/config"
	"github.com/roamplan/tripplanner/internal/domain/user"
	"github.com/roamplan/tripplanner/internal/http/middlewares"
)

type UsersReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type UsersHandler struct {
	users UsersReader
	// shared with the trips handler; the account cascade must drop the
	// owner's cached trip list or a list within the TTL resurrects it
	tripListCache *cache.Cache
}

func NewUsersHandler(users UsersReader, tripListCache *cache.Cache) *UsersHandler {
	return &UsersHandler{
		users:         users,
		tripListCache: tripListCache,
	}
}

func (h *UsersHandler) Profile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch profile")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// DeleteProfile removes the account and, through the store's cascade,
// every trip and activity the account owns.
func (h *UsersHandler) DeleteProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.users.Delete(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete profile")
		return
	}

	if h.tripListCache != nil {
		h.tripListCache.Delete(tripsCacheKey(userID))
	}

	ctx.Status(http.StatusNoContent)
}
