package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/notekeeper/backend/internal/config"
	"github.com/notekeeper/backend/internal/http/handlers"
	"github.com/notekeeper/backend/internal/http/middlewares"
	"github.com/notekeeper/backend/internal/observability"
	"github.com/notekeeper/backend/internal/store"
)

func NewRouter(log *slog.Logger, st store.Store, verifier *middlewares.AuthMiddleware, jwt handlers.TokenIssuer, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// error bodies carry the underlying failure outside production only
	handlers.SetVerboseErrors(cfg.Env != "production")

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))

	// metrics
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health
	ping := func() error {
		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()

		return st.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/", health.Root)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	// auth routes, rate limited per IP
	authHandler := handlers.NewAuthHandler(st, jwt)
	authLimiter := middlewares.NewRateLimiter(10, time.Minute)

	authGroup := r.Group("/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// notes routes, bearer credential required
	notesHandler := handlers.NewNotesHandler(st)

	notes := r.Group("/notes")
	notes.Use(verifier.RequireAuth())
	notes.GET("", notesHandler.ListNotes)
	notes.POST("", notesHandler.CreateNote)
	notes.GET("/:id", notesHandler.GetNote)
	notes.PUT("/:id", notesHandler.UpdateNote)
	notes.DELETE("/:id", notesHandler.DeleteNote)

	return r
}
