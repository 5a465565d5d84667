package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/appointment-availability-api/api/swagger"
	"github.com/noah-isme/appointment-availability-api/internal/handler"
	"github.com/noah-isme/appointment-availability-api/internal/middleware"
	"github.com/noah-isme/appointment-availability-api/internal/repository"
	"github.com/noah-isme/appointment-availability-api/internal/service"
	"github.com/noah-isme/appointment-availability-api/pkg/cache"
	"github.com/noah-isme/appointment-availability-api/pkg/config"
	"github.com/noah-isme/appointment-availability-api/pkg/database"
	"github.com/noah-isme/appointment-availability-api/pkg/gcal"
	"github.com/noah-isme/appointment-availability-api/pkg/jobs"
	"github.com/noah-isme/appointment-availability-api/pkg/logger"
	reqidmiddleware "github.com/noah-isme/appointment-availability-api/pkg/middleware/requestid"
)

// @title Appointment Availability API
// @version 1.0.0
// @description Weekly bookable slots for single and combined services
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Availability.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Availability.Timezone, err)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Availability.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, availability cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Availability.CacheTTL, logr, redisClient != nil)

	queue := jobs.NewQueue("calendar", jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})

	calendarCreds := gcal.Config{ClientID: cfg.Calendar.ClientID, ClientSecret: cfg.Calendar.ClientSecret, RedirectURL: cfg.Calendar.RedirectURL}
	calendarEnabled := cfg.Calendar.Enabled && calendarCreds.Configured()
	if cfg.Calendar.Enabled && !calendarEnabled {
		logr.Warn("calendar sync enabled without Google client credentials, external calendars ignored")
	}
	busySvc := service.NewCalendarBusyService(
		repository.NewCalendarIntegrationRepository(db),
		repository.NewGoogleCalendarRepository(gcal.OAuthConfig(calendarCreds)),
		queue,
		metricsSvc,
		logr,
		service.CalendarBusyConfig{
			Enabled:     calendarEnabled,
			Timeout:     cfg.Calendar.FetchTimeout,
			Concurrency: cfg.Calendar.Concurrency,
			MemoTTL:     cfg.Calendar.MemoTTL,
			MemoSize:    cfg.Calendar.MemoSize,
		},
	)
	queue.Handle(service.JobCalendarDisable, func(ctx context.Context, job jobs.Job) error {
		if err := busySvc.DisableIntegrationJob(ctx, job); err != nil {
			return err
		}
		return cacheSvc.InvalidateAvailability(ctx)
	})
	queue.Start(ctx)
	defer queue.Stop()

	availabilitySvc := service.NewAvailabilityService(service.AvailabilityServiceParams{
		Employees:    repository.NewEmployeeRepository(db),
		Services:     repository.NewServiceRepository(db),
		WorkingHours: repository.NewWorkingHoursRepository(db),
		Appointments: repository.NewAppointmentRepository(db),
		BlockedTimes: repository.NewBlockedTimeRepository(db),
		Busy:         busySvc,
		Cache:        cacheSvc,
		Metrics:      metricsSvc,
		Validator:    validator.New(),
		Logger:       logr,
		Config: service.AvailabilityConfig{
			Location:         loc,
			CombineTolerance: cfg.Availability.CombineTolerance,
			CacheTTL:         cfg.Availability.CacheTTL,
		},
	})
	exportSvc := service.NewExportService(availabilitySvc, logr, nil, nil)

	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.ReadinessCheck{
		"database": db.PingContext,
		"cache":    cacheRepo.Ping,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())
	r.Use(cors.New(corsConfig(cfg.CORS)))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/snapshot", metricsHandler.Snapshot)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	availability := api.Group("/availability")
	availability.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit), metricsSvc, logr))
	availability.GET("", availabilityHandler.Week)
	availability.GET("/combined", availabilityHandler.Combined)
	availability.GET("/export", availabilityHandler.Export)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("timezone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", reqidmiddleware.HeaderKey}
	c.ExposeHeaders = []string{"Content-Disposition", reqidmiddleware.HeaderKey}
	c.MaxAge = 12 * time.Hour
	if len(cfg.AllowedOrigins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = cfg.AllowedOrigins
	return c
}
