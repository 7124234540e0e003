package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/roamplan/tripplanner/internal/auth"
	"github.com/roamplan/tripplanner/internal/cache"
	"github.com/roamplan/tripplanner/internal/config"
	"github.com/roamplan/tripplanner/internal/http/handlers"
	"github.com/roamplan/tripplanner/internal/http/middlewares"
	"github.com/roamplan/tripplanner/internal/observability"
	"github.com/roamplan/tripplanner/internal/repo/postgres"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "tripplanner"

// UsersStore is the full credential-store surface the router wires up.
type UsersStore interface {
	handlers.UsersStore
	handlers.UsersReader
}

// Deps carries everything the route tree needs, so tests can swap in
// memory repositories without a database.
type Deps struct {
	Users      UsersStore
	Trips      handlers.TripsStore
	Activities handlers.ActivitiesStore
	JWT        *auth.Manager
	Ping       func() error
	Prom       *observability.Prom
}

// NewRouter wires the Postgres-backed route tree.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	prom := observability.NewProm(reg)

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	deps := Deps{
		Users:      postgres.NewUsersRepo(pool, prom),
		Trips:      postgres.NewTripsRepo(pool, prom),
		Activities: postgres.NewActivitiesRepo(pool, prom),
		JWT:        auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL),
		Ping:       ping,
		Prom:       prom,
	}

	r := NewRouterWith(log, cfg, deps)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r
}

// NewRouterWith builds the route tree on top of the supplied dependencies.
func NewRouterWith(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(RequestLogger(log))
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB
	r.Use(middlewares.RequireJSON())

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	r.GET("/", handlers.Index)

	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	tripListCache := cache.New(5 * time.Second)

	authHandler := handlers.NewAuthHandler(deps.Users, deps.JWT)
	usersHandler := handlers.NewUsersHandler(deps.Users, tripListCache)
	tripsHandler := handlers.NewTripsHandler(deps.Trips, tripListCache)
	activitiesHandler := handlers.NewActivitiesHandler(deps.Activities, deps.Trips)

	authMw := middlewares.NewAuthMiddleware(deps.JWT)

	// credential endpoints are limited by client IP, everything behind
	// auth by user id
	authLimiter := middlewares.NewRateLimiter(20, time.Minute)
	apiLimiter := middlewares.NewRateLimiter(120, time.Minute)

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)

	users := api.Group("/users")
	users.Use(authMw.RequireAuth())
	users.Use(apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	users.GET("/profile", usersHandler.Profile)
	users.DELETE("/profile", usersHandler.DeleteProfile)

	trips := api.Group("/trips")
	trips.Use(authMw.RequireAuth())
	trips.Use(apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	trips.GET("", tripsHandler.ListTrips)
	trips.POST("", tripsHandler.CreateTrip)
	trips.GET("/:id", tripsHandler.GetTrip)
	trips.PUT("/:id", tripsHandler.UpdateTrip)
	trips.DELETE("/:id", tripsHandler.DeleteTrip)

	trips.GET("/:id/activities", activitiesHandler.ListActivities)
	trips.POST("/:id/activities", activitiesHandler.CreateActivity)
	trips.GET("/:id/activities/:activityID", activitiesHandler.GetActivity)
	trips.PUT("/:id/activities/:activityID", activitiesHandler.UpdateActivity)
	trips.DELETE("/:id/activities/:activityID", activitiesHandler.DeleteActivity)
	trips.GET("/:id/itinerary", activitiesHandler.Itinerary)

	return r
}
