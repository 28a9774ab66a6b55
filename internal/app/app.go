// Package app wires configuration, storage, services, scheduler, and
// transport into a runnable process.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/config"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/repository"
	cronpkg "github.com/Alhassan777/Quraan-Wird-Bot/internal/infrastructure/cron"
	infradb "github.com/Alhassan777/Quraan-Wird-Bot/internal/infrastructure/db"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/infrastructure/gemini"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/infrastructure/kafka"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/infrastructure/postgres"
	redisinfra "github.com/Alhassan777/Quraan-Wird-Bot/internal/infrastructure/redis"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/service"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/transport/httpapi"
	"github.com/Alhassan777/Quraan-Wird-Bot/pkg/clock"
	"github.com/Alhassan777/Quraan-Wird-Bot/pkg/logger"
)

// App holds the process-level components.
type App struct {
	config      *config.Config
	logger      *zap.SugaredLogger
	httpServer  *httpapi.Server
	ticker      *cronpkg.ReminderTicker
	producer    *kafka.Producer
	dbPool      *pgxpool.Pool
	redisClient *goredis.Client
}

// New builds the application from configuration.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	log.Infow("configuration loaded", "service", cfg.Service.Name, "environment", cfg.Service.Environment)

	ctx := context.Background()

	dbPool, err := infradb.NewPostgresPool(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	log.Info("connected to PostgreSQL")

	var userRepo repository.UserRepository = postgres.NewUserRepository(dbPool)
	checkInRepo := postgres.NewCheckInRepository(dbPool)
	reminderRepo := postgres.NewReminderRepository(dbPool)
	templateRepo := postgres.NewTemplateRepository(dbPool)

	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisinfra.NewClient(ctx, &cfg.Redis)
		if err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		userRepo = redisinfra.NewCachedUserRepository(userRepo, redisClient, cfg.Redis.UserCacheTTL, log)
		log.Info("connected to Redis, user cache enabled")
	}

	clk := clock.NewProvider(cfg.Streak.DefaultTimezone, log)

	producer := kafka.NewProducer(&cfg.Kafka, log)

	streakService := service.NewStreakService(userRepo, checkInRepo, clk, log)
	messageService := service.NewMessageService(templateRepo, log)
	tafsirService := gemini.NewClient(cfg.Gemini, log)

	reminderService := service.NewReminderService(
		userRepo, reminderRepo, streakService, messageService, producer, clk, log,
		service.SchedulerOptions{
			EndOfDayHour:         cfg.Scheduler.EndOfDayHour,
			MaxConcurrency:       cfg.Scheduler.MaxConcurrency,
			SubjectTimeout:       cfg.Scheduler.SubjectTimeout,
			DefaultReminderTimes: parseDefaultTimes(cfg.Streak.DefaultReminderTimes, log),
		},
	)

	var ticker *cronpkg.ReminderTicker
	if cfg.Scheduler.Enabled {
		ticker = cronpkg.NewReminderTicker(
			reminderService, userRepo,
			cfg.Scheduler.TickInterval, cfg.Scheduler.EndOfDayInterval,
			log,
		)
	} else {
		log.Warn("scheduler is disabled; no reminders will be sent")
	}

	handler := httpapi.NewHandler(streakService, reminderService, messageService, tafsirService, userRepo, checkInRepo, log)
	router := httpapi.NewRouter(handler, cfg.Metrics.Enabled, cfg.Metrics.Path)
	httpServer := httpapi.NewServer(router, cfg.HTTP, log)

	return &App{
		config:      cfg,
		logger:      log,
		httpServer:  httpServer,
		ticker:      ticker,
		producer:    producer,
		dbPool:      dbPool,
		redisClient: redisClient,
	}, nil
}

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	if a.ticker != nil {
		if err := a.ticker.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	go func() {
		if err := a.httpServer.Start(); err != nil {
			a.logger.Errorw("http server error", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	a.logger.Infow("service started", "name", a.config.Service.Name, "port", a.config.HTTP.Port)

	<-quit
	a.logger.Info("shutting down...")

	a.httpServer.Stop()

	if a.ticker != nil {
		a.ticker.Stop()
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Warnw("failed to close kafka producer", "error", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnw("failed to close redis client", "error", err)
		}
	}

	a.dbPool.Close()

	a.logger.Info("shutdown complete")
	_ = a.logger.Sync()
	return nil
}

// parseDefaultTimes converts configured "HH:MM" strings, skipping bad entries.
func parseDefaultTimes(raw []string, log *zap.SugaredLogger) []entity.TimeOfDay {
	times := make([]entity.TimeOfDay, 0, len(raw))
	for _, s := range raw {
		t, err := entity.ParseTimeOfDay(s)
		if err != nil {
			log.Warnw("skipping invalid default reminder time", "value", s)
			continue
		}
		times = append(times, t)
	}
	return times
}
