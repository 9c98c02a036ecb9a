package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cartelera/billboard/internal/audit"
	"github.com/cartelera/billboard/internal/auth"
	"github.com/cartelera/billboard/internal/config"
	"github.com/cartelera/billboard/internal/db"
	httpx "github.com/cartelera/billboard/internal/http"
	"github.com/cartelera/billboard/internal/observability"
	"github.com/cartelera/billboard/internal/redisclient"
	"github.com/cartelera/billboard/internal/repo/postgres"
)

func main() {
	// .env is a dev convenience, absence is fine
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load(ctx)

	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	var otelShutdown func(context.Context) error

	if cfg.OTLPEndpoint != "" {
		otelShutdown, err = observability.InitTracer(ctx, "billboard", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("otel init failed", "err", err)
			os.Exit(1)
		}
	}

	pool, err := db.NewPool(cfg.DBURL())

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	if err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
		log.Error("admin bootstrap failed", "err", err)
		os.Exit(1)
	}

	var redis *redisclient.Client

	if cfg.RedisAddr != "" {
		redis = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		if err := redis.Ping(ctx); err != nil {
			log.Warn("redis unreachable at startup, continuing", "err", err)
		}

		defer redis.Close()
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	if err != nil {
		log.Error("token manager init failed", "err", err)
		os.Exit(1)
	}

	recorder := audit.NewRecorder(
		postgres.NewAuditRepo(pool, prom),
		log,
		cfg.AuditBufferSize,
		audit.WithResultCounter(prom.AuditResults),
	)

	router := httpx.NewRouter(httpx.Deps{
		Cfg:      cfg,
		Log:      log,
		Pool:     pool,
		Redis:    redis,
		Tokens:   tokens,
		Prom:     prom,
		Registry: registry,
		Recorder: recorder,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	// flush pending audit writes before the pool closes
	if err := recorder.Close(shutdownCtx); err != nil {
		log.Error("audit recorder drain timed out", "err", err)
	}

	if otelShutdown != nil {
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("otel shutdown failed", "err", err)
		}
	}

	log.Info("shutdown complete")
}
