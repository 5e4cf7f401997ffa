package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/booking-api/internal/email"
	"github.com/clinicore/booking-api/internal/repository"
	"github.com/clinicore/booking-api/internal/repository/postgres"
	"github.com/clinicore/booking-api/pkg/logger"
	redisbroker "github.com/clinicore/booking-api/pkg/messaging/redis"
	"github.com/clinicore/booking-api/pkg/metrics"
	"github.com/clinicore/booking-api/pkg/worker"
)

// Config is read from the environment; the worker runs headless and
// does not share the API's config file.
type Config struct {
	DatabaseDSN     string `envconfig:"DATABASE_DSN" required:"true"`
	RedisURL        string `envconfig:"REDIS_URL" required:"true"`
	MetricsPort     int    `envconfig:"METRICS_PORT" default:"9090"`
	BatchSize       int    `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalSec int    `envconfig:"OUTBOX_POLL_INTERVAL_SECONDS" default:"5"`
	RetryAttempts   int    `envconfig:"OUTBOX_RETRY_ATTEMPTS" default:"3"`
	RetryDelaySec   int    `envconfig:"OUTBOX_RETRY_DELAY_SECONDS" default:"5"`
	RetentionHours  int    `envconfig:"OUTBOX_RETENTION_HOURS" default:"168"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"noreply@clinic.local"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	zl := log.Logger
	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.RedisURL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.NewMetrics("booking", "worker")

	outboxRepo := postgres.NewOutboxRepository(db)
	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.BatchSize,
		PollInterval:  time.Duration(cfg.PollIntervalSec) * time.Second,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    time.Duration(cfg.RetryDelaySec) * time.Second,
	}, appLogger, appMetrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		cleanupProcessedEvents(ctx, outboxRepo, time.Duration(cfg.RetentionHours)*time.Hour, appLogger)
	}()

	if cfg.SMTPHost != "" {
		emailSvc := email.NewService(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		notifier := worker.NewNotifier(broker, emailSvc, appLogger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			notifier.Run(ctx)
		}()
	} else {
		appLogger.Warn("SMTP not configured, notification emails disabled")
	}

	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)
	wg.Wait()

	log.Info().Msg("worker exited properly")
}

// cleanupProcessedEvents trims outbox rows that have been published and
// kept past the retention window.
func cleanupProcessedEvents(ctx context.Context, repo repository.OutboxRepository, retention time.Duration, appLogger *logger.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteProcessedBefore(ctx, time.Now().Add(-retention))
			if err != nil {
				appLogger.Error(err, "failed to clean up processed outbox events")
				continue
			}
			if deleted > 0 {
				appLogger.Info("cleaned up processed outbox events", "deleted", deleted)
			}
		}
	}
}

