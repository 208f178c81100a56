// Package main is the entry point of the video backend server.
//
// Startup order:
//
//  1. Configuration: optional .env, then environment variables
//  2. Logging and tracing
//  3. Database: open, instrument, migrate, optionally seed demo data
//  4. WebSocket hub
//  5. HTTP server
//
// SIGINT/SIGTERM drain the HTTP server, stop the hub (closing every client)
// and flush pending spans, each bounded by SHUTDOWN_TIMEOUT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-video-backend/internal/config"
	httpapi "github.com/tbourn/go-video-backend/internal/http"
	"github.com/tbourn/go-video-backend/internal/observability"
	"github.com/tbourn/go-video-backend/internal/realtime"
	"github.com/tbourn/go-video-backend/internal/repo"
	"github.com/tbourn/go-video-backend/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// idempotencyPurgeInterval is how often expired Idempotency-Key rows are removed.
const idempotencyPurgeInterval = time.Hour

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.ConfigureLogger(cfg.OTEL.ServiceName, cfg.LogLevel, cfg.LogPretty, os.Stderr)
	gin.SetMode(cfg.GinMode)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ver := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)
	log.Info().
		Str("version", ver).
		Str("db_driver", cfg.DBDriver).
		Str("api_base", cfg.APIBasePath).
		Msg("starting video backend")

	shutdownTracing, err := observability.Setup(ctx, cfg.OTEL, ver)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error().Err(err).Msg("closing database")
			}
		}
	}()
	go purgeIdempotency(ctx, db, idempotencyPurgeInterval)

	hub := realtime.NewHub()
	hubErr := make(chan error, 1)
	go func() { hubErr <- hub.RunWithContext(ctx) }()
	log.Info().Msg("websocket hub started")

	r := gin.New()
	httpapi.RegisterRoutes(r, db, hub, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-srvErr:
		if err != nil {
			stop()
			return err
		}
	}
	stop()

	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	// Hijacked WebSocket connections are not tracked by srv.Shutdown; the hub
	// closes them once its context is done.
	select {
	case err := <-hubErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("websocket hub stopped")
		}
	case <-sctx.Done():
		log.Warn().Msg("websocket hub did not stop before shutdown timeout")
	}
	return nil
}

// openStore opens the configured database, instruments it, migrates the
// schema and seeds demo data when asked to.
func openStore(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	db, err := repo.Open(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.OTEL.Enabled {
		if err := repo.UseTracing(db); err != nil {
			return nil, err
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, err
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database ready")

	if cfg.SeedSampleData {
		seeded, err := repo.SeedSampleData(ctx, db)
		if err != nil {
			return nil, err
		}
		log.Info().Bool("inserted", seeded).Msg("sample data seeding")
	}
	return db, nil
}

// purgeIdempotency deletes expired Idempotency-Key records every interval
// until ctx is done.
func purgeIdempotency(ctx context.Context, db *gorm.DB, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("expired idempotency keys removed")
			}
		}
	}
}
