package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/lalit-0106/gps-attendance-app/internal/adapters/http"
	natsadapter "github.com/lalit-0106/gps-attendance-app/internal/adapters/nats"
	"github.com/lalit-0106/gps-attendance-app/internal/adapters/postgres"
	"github.com/lalit-0106/gps-attendance-app/internal/adapters/valkey"
	"github.com/lalit-0106/gps-attendance-app/internal/core/domain"
	"github.com/lalit-0106/gps-attendance-app/internal/core/ports"
	"github.com/lalit-0106/gps-attendance-app/internal/core/usecases"
	"github.com/lalit-0106/gps-attendance-app/internal/pkg/config"
	"github.com/lalit-0106/gps-attendance-app/internal/pkg/logging"
	"github.com/lalit-0106/gps-attendance-app/internal/pkg/telemetry"
)

func main() {
	// .env is a dev convenience; absence is fine
	_ = godotenv.Load()

	cfg, err := config.Load("geoclock-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("geoclock-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// The geofence itself comes from config and never changes after this
	// point. Everything below it is optional: broker, cache and database
	// outages degrade diagnostics, never the access decision.
	fence := domain.Geofence{
		OfficeName: cfg.Office.Name,
		Center: domain.Coordinate{
			Latitude:  cfg.Office.Latitude,
			Longitude: cfg.Office.Longitude,
		},
		RadiusMeters: cfg.Office.RadiusMeters,
	}
	slog.Info("geofence configured",
		"office", fence.OfficeName,
		"latitude", fence.Center.Latitude,
		"longitude", fence.Center.Longitude,
		"radius_m", fence.RadiusMeters,
	)

	// NATS publisher for evaluation events
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, evaluation events disabled", "error", err)
	} else {
		events = pub
		defer pub.Close()
	}

	// Raw NATS connection for the WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Valkey cache for the live presence snapshot
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, presence disabled", "error", err)
	} else {
		cacheSvc = cache
		defer cache.Close()
	}

	// Audit database, read side only. The auditor owns writes.
	var db *postgres.DB
	var evalLog ports.EvaluationLogRepository
	dbCtx, dbCancel := context.WithTimeout(ctx, 5*time.Second)
	db, err = postgres.New(dbCtx, cfg.Database.DSN())
	dbCancel()
	if err != nil {
		slog.Warn("audit database unavailable, /v1/evaluations disabled", "error", err)
	} else {
		evalLog = postgres.NewEvaluationRepo(db)
		defer db.Close()
	}

	// Use cases
	presenceSvc := usecases.NewPresenceService(cacheSvc)
	accessSvc := usecases.NewAccessService(fence, events, presenceSvc)

	deps := &http.Dependencies{
		Access:      accessSvc,
		Presence:    presenceSvc,
		Evaluations: evalLog,
		NATS:        natsConn,
		DB:          db,
		Cache:       cacheSvc,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "GeoClock API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.geoclock.example.com",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
