package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	pgRepo "github.com/yashchoube/rajeshwari-tech-sub000/internal/infra/adapter/persistence/postgres"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/infra/db"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/infra/notifier"
	workerPkg "github.com/yashchoube/rajeshwari-tech-sub000/internal/infra/worker"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/logging"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/resilience/retry"
	dashUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/dashboard"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/notify"
	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/config"
	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/ratelimit"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", slog.Any("error", err))
	}
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics(prometheus.DefaultRegisterer)
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("digest_schedule", workerConfig.DigestSchedule),
		slog.String("housekeeping_schedule", workerConfig.HousekeepingSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("digest_window", workerConfig.DigestWindow),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	notifyService := notify.NewService([]notify.Channel{
		notify.NewSlackChannel(notifier.LoadSlackConfig(logger)),
		notify.NewDiscordChannel(notifier.LoadDiscordConfig(logger)),
	}, workerConfig.NotifyMaxConcurrent)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger, notifyService, prometheus.DefaultGatherer)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	loc, err := time.LoadLocation(workerConfig.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", workerConfig.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	scheduler := workerPkg.NewScheduler(loc, workerConfig.JobTimeout, logger, workerMetrics)

	digest := &workerPkg.DigestJob{
		Leads: &dashUC.Service{
			Blogs:       pgRepo.NewBlogRepo(database),
			Enrollments: pgRepo.NewEnrollmentRepo(database),
		},
		Sender:  notifyService,
		Window:  workerConfig.DigestWindow,
		Metrics: workerMetrics,
	}
	if err := scheduler.Add(workerConfig.DigestSchedule, digest); err != nil {
		logger.Error("failed to add digest job", slog.Any("error", err))
		os.Exit(1)
	}

	redisStore := setupHousekeeping(logger, scheduler, workerConfig, workerMetrics)

	scheduler.Start()
	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("timezone", loc.String()))

	<-ctx.Done()
	logger.Info("worker shutting down")
	healthServer.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), workerConfig.JobTimeout)
	defer cancel()
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("scheduled jobs still running at shutdown", slog.Any("error", err))
	}
	if err := notifyService.Shutdown(shutdownCtx); err != nil {
		logger.Warn("notification shutdown incomplete", slog.Any("error", err))
	}
	if redisStore != nil {
		if err := redisStore.Close(); err != nil {
			logger.Error("failed to close rate limit store", slog.Any("error", err))
		}
	}
	logger.Info("worker stopped")
}

// initDatabase opens the pool, retrying while the database starts. The API
// owns the schema.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	openCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	var database *sql.DB
	err := retry.StartupPolicy().Do(openCtx, "open database", func(ctx context.Context) error {
		var err error
		database, err = db.Open(ctx)
		return err
	})
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// setupHousekeeping schedules the shared store report. It only applies to
// the redis backend; in-memory counters live inside each API process.
func setupHousekeeping(logger *slog.Logger, s *workerPkg.Scheduler, cfg *workerPkg.WorkerConfig, m *workerPkg.WorkerMetrics) *ratelimit.RedisStore {
	if cfg.HousekeepingSchedule == "" {
		logger.Info("rate limit housekeeping disabled")
		return nil
	}
	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		logger.Warn("rate limit housekeeping disabled", slog.Any("error", err))
		return nil
	}
	if rlCfg.Store != config.StoreRedis {
		logger.Info("rate limit housekeeping skipped: store is not shared", slog.String("store", rlCfg.Store))
		return nil
	}

	store := ratelimit.NewRedisStore(redis.NewClient(&redis.Options{
		Addr:     rlCfg.RedisAddr,
		Password: rlCfg.RedisPassword,
		DB:       rlCfg.RedisDB,
	}), ratelimit.RedisStoreConfig{
		FailureThreshold: uint32(rlCfg.BreakerFailureThreshold),
		OpenTimeout:      rlCfg.BreakerOpenTimeout,
	})

	job := &workerPkg.HousekeepingJob{Store: store, Metrics: m}
	if err := s.Add(cfg.HousekeepingSchedule, job); err != nil {
		logger.Error("failed to add housekeeping job", slog.Any("error", err))
		os.Exit(1)
	}
	return store
}
