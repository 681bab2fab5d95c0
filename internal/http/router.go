package http

import (
	"context"
	"log/slog"
	"time"

	"accounthub/internal/auth"
	"accounthub/internal/config"
	"accounthub/internal/http/handlers"
	"accounthub/internal/http/middlewares"
	"accounthub/internal/observability"
	"accounthub/internal/repo/postgres"
	"accounthub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(cfg config.Config, log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("accounthub"))

	// metrics

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up the store, services and handlers

	usersRepo := postgres.NewUsersRepo(pool, prom)
	usersService := service.NewUsersService(usersRepo)
	authService := service.NewAuthService(usersRepo)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	authHandler := handlers.NewAuthHandler(authService, jwtManager, cfg, log)
	usersHandler := handlers.NewUsersHandler(usersService, log)

	// brute-force protection on the credential endpoints
	var counters middlewares.CounterStore
	if rdb != nil {
		counters = middlewares.NewRedisCounterStore(rdb)
	} else {
		counters = middlewares.NewMemoryCounterStore()
	}
	limiter := middlewares.NewRateLimiter(counters, 10, time.Minute)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authGroup.POST("/sign-up", authHandler.SignUp)
	authGroup.POST("/sign-in", authHandler.SignIn)
	authGroup.POST("/sign-out", authHandler.SignOut)

	usersGroup := api.Group("/users")
	usersGroup.Use(authMW.RequireAuth())
	usersGroup.GET("", usersHandler.ListUsers)
	usersGroup.GET("/:id", usersHandler.GetUserByID)
	usersGroup.PATCH("/:id", usersHandler.UpdateUser)
	usersGroup.DELETE("/:id", usersHandler.DeleteUser)

	return r
}
