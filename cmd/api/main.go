package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/carebook/clinic-api/config"
	"github.com/carebook/clinic-api/internal/email"
	authHandler "github.com/carebook/clinic-api/internal/handler/auth"
	clinicianHandler "github.com/carebook/clinic-api/internal/handler/clinician"
	healthHandler "github.com/carebook/clinic-api/internal/handler/health"
	patientHandler "github.com/carebook/clinic-api/internal/handler/patient"
	reportHandler "github.com/carebook/clinic-api/internal/handler/report"
	schedulingHandler "github.com/carebook/clinic-api/internal/handler/scheduling"
	specializationHandler "github.com/carebook/clinic-api/internal/handler/specialization"
	"github.com/carebook/clinic-api/internal/middleware"
	"github.com/carebook/clinic-api/internal/repository/postgres"
	"github.com/carebook/clinic-api/internal/router"
	authService "github.com/carebook/clinic-api/internal/service/auth"
	clinicianService "github.com/carebook/clinic-api/internal/service/clinician"
	patientService "github.com/carebook/clinic-api/internal/service/patient"
	reportService "github.com/carebook/clinic-api/internal/service/report"
	schedulingService "github.com/carebook/clinic-api/internal/service/scheduling"
	specializationService "github.com/carebook/clinic-api/internal/service/specialization"
	"github.com/carebook/clinic-api/pkg/auth"
	"github.com/carebook/clinic-api/pkg/clock"
	"github.com/carebook/clinic-api/pkg/logger"
	"github.com/carebook/clinic-api/pkg/metrics"
	"github.com/carebook/clinic-api/pkg/security"
	"github.com/carebook/clinic-api/pkg/validator"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	if err := validator.RegisterCustomValidators(); err != nil {
		log.Fatal(err, "failed to register validators")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	specializationRepo := postgres.NewSpecializationRepository(db)
	clinicianRepo := postgres.NewClinicianRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	consultationRepo := postgres.NewConsultationRepository(db)
	statsRepo := postgres.NewStatsRepository(db)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(12)

	var emailSvc email.Service = email.NoopService{}
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, log)
	}

	appMetrics := metrics.NewMetrics("clinic_api")

	authSvc := authService.NewService(userRepo, patientRepo, jwtSvc, hasher, emailSvc, log)
	specializationSvc := specializationService.NewService(specializationRepo)
	clinicianSvc := clinicianService.NewService(clinicianRepo, specializationRepo, userRepo, hasher, emailSvc, log)
	patientSvc := patientService.NewService(patientRepo, userRepo)
	reportSvc := reportService.NewService(statsRepo)
	schedulingSvc := schedulingService.NewService(
		clinicianRepo,
		patientRepo,
		availabilityRepo,
		appointmentRepo,
		consultationRepo,
		clock.New(),
		schedulingService.Config{
			SlotInterval: cfg.Scheduling.SlotInterval,
			HorizonDays:  cfg.Scheduling.HorizonDays,
		},
		emailSvc,
		log,
	)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(authMiddleware, router.Handlers{
		Auth:           authHandler.NewHandler(authSvc),
		Specialization: specializationHandler.NewHandler(specializationSvc),
		Clinician:      clinicianHandler.NewHandler(clinicianSvc),
		Patient:        patientHandler.NewHandler(patientSvc),
		Scheduling:     schedulingHandler.NewHandler(schedulingSvc, appMetrics),
		Report:         reportHandler.NewHandler(reportSvc),
		Health:         healthHandler.NewHandler(db),
	}, router.Config{
		RateLimit: rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst: cfg.RateLimit.Burst,
		CORS:      middleware.DefaultCORSConfig(),
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
}
