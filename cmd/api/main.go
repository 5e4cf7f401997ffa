package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clinicore/booking-api/internal/config"
	"github.com/clinicore/booking-api/internal/handler"
	appointmentHandler "github.com/clinicore/booking-api/internal/handler/appointment"
	availabilityHandler "github.com/clinicore/booking-api/internal/handler/availability"
	scheduleHandler "github.com/clinicore/booking-api/internal/handler/schedule"
	"github.com/clinicore/booking-api/internal/middleware"
	"github.com/clinicore/booking-api/internal/repository/postgres"
	"github.com/clinicore/booking-api/internal/router"
	appointmentService "github.com/clinicore/booking-api/internal/service/appointment"
	availabilityService "github.com/clinicore/booking-api/internal/service/availability"
	bookingService "github.com/clinicore/booking-api/internal/service/booking"
	scheduleService "github.com/clinicore/booking-api/internal/service/schedule"
	"github.com/clinicore/booking-api/pkg/auth"
	"github.com/clinicore/booking-api/pkg/logger"
	"github.com/clinicore/booking-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := middleware.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.NewMetrics("booking", "api")

	// Repositories
	providerRepo := postgres.NewProviderRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	billingRepo := postgres.NewBillingRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	txManager := postgres.NewTxManager(db)

	// Services
	scheduleSvc := scheduleService.NewService(scheduleRepo)
	availabilitySvc := availabilityService.NewService(providerRepo, appointmentRepo, scheduleSvc, appMetrics)
	bookingSvc := bookingService.NewService(appointmentRepo, scheduleSvc, appMetrics)
	lifecycleSvc := appointmentService.NewService(appointmentRepo, billingRepo, patientRepo, outboxRepo, txManager, appLogger, appMetrics)

	// Handlers
	scheduleH := scheduleHandler.NewHandler(scheduleSvc)
	availabilityH := availabilityHandler.NewHandler(availabilitySvc)
	appointmentH := appointmentHandler.NewHandler(bookingSvc, lifecycleSvc)
	healthH := handler.NewHealthHandler(db)

	authMiddleware := middleware.NewAuthMiddleware(auth.NewVerifier(cfg.JWT.Secret))

	r := router.NewRouter(
		authMiddleware,
		scheduleH,
		availabilityH,
		appointmentH,
		healthH,
		router.RouterConfig{
			RateLimitRPS:  cfg.RateLimit.RPS,
			RateBurst:     cfg.RateLimit.Burst,
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "booking",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
