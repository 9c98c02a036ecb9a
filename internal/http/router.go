package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/cartelera/billboard/internal/audit"
	"github.com/cartelera/billboard/internal/auth"
	"github.com/cartelera/billboard/internal/config"
	"github.com/cartelera/billboard/internal/domain/user"
	"github.com/cartelera/billboard/internal/http/handlers"
	"github.com/cartelera/billboard/internal/http/middlewares"
	"github.com/cartelera/billboard/internal/observability"
	"github.com/cartelera/billboard/internal/redisclient"
	"github.com/cartelera/billboard/internal/repo/postgres"
	"github.com/cartelera/billboard/internal/security"
)

// Deps carries everything the router needs wired in. Redis is optional:
// without it the rate limiter falls back to per-instance counters.
type Deps struct {
	Cfg      config.Config
	Log      *slog.Logger
	Pool     *pgxpool.Pool
	Redis    *redisclient.Client
	Tokens   *auth.Manager
	Prom     *observability.Prom
	Registry *prometheus.Registry
	Recorder *audit.Recorder
}

type limiter interface {
	Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc
}

// NewRouter composes the request pipeline. Order matters: identity has to be
// resolved before the role gate, and the audit wrapper sits inside both so a
// recorded action always belongs to an authorized actor.
func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" && d.Cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers.RegisterValidators()

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	r.Use(otelgin.Middleware("billboard"))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// rate limiting: shared window via redis when available
	var general, login limiter

	if d.Redis != nil {
		general = middlewares.NewRedisRateLimiter(d.Redis, d.Cfg.RateLimit, d.Cfg.RateWindow, "rl:general")
		login = middlewares.NewRedisRateLimiter(d.Redis, d.Cfg.AuthRateLimit, d.Cfg.AuthRateWindow, "rl:auth")
	} else {
		general = middlewares.NewRateLimiter(d.Cfg.RateLimit, d.Cfg.RateWindow)
		login = middlewares.NewRateLimiter(d.Cfg.AuthRateLimit, d.Cfg.AuthRateWindow)
	}

	r.Use(general.Middleware(middlewares.KeyByUserOrIP))

	// repositories
	usersRepo := postgres.NewUsersRepo(d.Pool)
	eventsRepo := postgres.NewEventsRepo(d.Pool)
	profilesRepo := postgres.NewProfilesRepo(d.Pool)

	// handlers
	hasher := security.NewHasher(d.Cfg.BcryptCost)
	authHandler := handlers.NewAuthHandler(usersRepo, hasher, d.Tokens, d.Recorder)
	eventsHandler := handlers.NewEventsHandler(eventsRepo, d.Cfg.BillboardTTL)
	profilesHandler := handlers.NewProfilesHandler(profilesRepo)
	adminHandler := handlers.NewAdminHandler(postgres.NewAuditRepo(d.Pool, d.Prom), usersRepo)

	var redisPinger handlers.Pinger
	if d.Redis != nil {
		redisPinger = d.Redis
	}
	healthHandler := handlers.NewHealthHandler(d.Pool, redisPinger)

	authMW := middlewares.NewAuthMiddleware(d.Tokens, usersRepo)

	trail := func(action string) gin.HandlerFunc {
		return middlewares.AuditTrail(d.Recorder, action)
	}

	// public surface
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	r.GET("/events", eventsHandler.ListPublic)
	r.GET("/events/:id", eventsHandler.GetByID)
	r.GET("/profiles", profilesHandler.ListActive)

	// auth surface
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", login.Middleware(middlewares.KeyByIP), authHandler.Register)
		authGroup.POST("/login", login.Middleware(middlewares.KeyByIP), authHandler.Login)
		authGroup.GET("/profile", authMW.RequireAuth(), trail(audit.ActionGetProfile), authHandler.Profile)
	}

	// artist surface: ownership is enforced again at the query level
	artist := r.Group("/")
	artist.Use(authMW.RequireAuth(), authMW.RequireRole(user.RoleArtist))
	{
		artist.GET("/events/mine", eventsHandler.ListMine)
		artist.POST("/events", trail(audit.ActionCreateEvent), eventsHandler.Create)
		artist.PUT("/events/:id", trail(audit.ActionUpdateEvent), eventsHandler.Update)
		artist.DELETE("/events/:id", trail(audit.ActionDeleteEvent), eventsHandler.Delete)

		artist.GET("/profile", profilesHandler.GetMine)
		artist.POST("/profile", trail(audit.ActionCreateProfile), profilesHandler.Upsert)
		artist.PUT("/profile", trail(audit.ActionUpdateProfile), profilesHandler.Upsert)
		artist.DELETE("/profile", trail(audit.ActionDeleteProfile), profilesHandler.Deactivate)
	}

	// admin surface: every route is audit wrapped, reads included
	admin := r.Group("/admin")
	admin.Use(authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin))
	{
		admin.GET("/audit-logs", trail(audit.ActionGetAuditLogs), adminHandler.ListAuditLogs)
		admin.GET("/audit-logs/search", trail(audit.ActionSearchLogs), adminHandler.SearchAuditLogs)
		admin.GET("/audit-logs/export", trail(audit.ActionExportLogs), adminHandler.ExportAuditLogs)
		admin.GET("/audit-logs/:id", trail(audit.ActionGetAuditLog), adminHandler.GetAuditLog)
		admin.GET("/statistics", trail(audit.ActionGetStatistics), adminHandler.Statistics)
	}

	return r
}
