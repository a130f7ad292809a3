package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	natsadapter "github.com/lalit-0106/gps-attendance-app/internal/adapters/nats"
	"github.com/lalit-0106/gps-attendance-app/internal/adapters/postgres"
	"github.com/lalit-0106/gps-attendance-app/internal/core/domain"
	"github.com/lalit-0106/gps-attendance-app/internal/pkg/config"
	"github.com/lalit-0106/gps-attendance-app/internal/pkg/logging"
	"github.com/lalit-0106/gps-attendance-app/internal/pkg/metrics"
)

// metricsAddr serves the auditor's own /metrics; the API port stays free.
const metricsAddr = ":9091"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("geoclock-auditor")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("geoclock-auditor", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The auditor exists to write the evaluation log, so unlike the API it
	// refuses to start without its database.
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewEvaluationRepo(db)

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeEvaluations(ctx, func(ctx context.Context, ev *domain.Evaluation) error {
		if err := repo.Insert(ctx, ev); err != nil {
			metrics.AuditFailures.Inc()
			slog.Error("audit insert failed", "id", ev.ID, "error", err)
			return err
		}
		metrics.EvaluationsAudited.Inc()
		slog.Debug("evaluation audited",
			"id", ev.ID,
			"device", ev.Device,
			"allowed", ev.Allowed,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	// Metrics endpoint plus a pool-stats ticker
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		slog.Info("auditor metrics listening", "addr", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			slog.Error("metrics server stopped", "error", err)
		}
	}()

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	slog.Info("auditor started", "stream", "GEOCLOCK_EVALUATIONS", "consumer", "evaluation-auditor")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received", "signal", sig.String())
	cancel()
	// Let in-flight handlers finish before the deferred closes run
	time.Sleep(2 * time.Second)
}
