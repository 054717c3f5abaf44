package main

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/common/pagination"
	appconfig "github.com/yashchoube/rajeshwari-tech-sub000/internal/config"
	hhttp "github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/auth"
	hblog "github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/blog"
	hdashboard "github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/dashboard"
	henrollment "github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/enrollment"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/middleware"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/handler/http/requestid"
	pgRepo "github.com/yashchoube/rajeshwari-tech-sub000/internal/infra/adapter/persistence/postgres"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/infra/db"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/infra/notifier"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/logging"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/metrics"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/observability/tracing"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/resilience/retry"
	blogUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/blog"
	dashUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/dashboard"
	enrollUC "github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/enrollment"
	"github.com/yashchoube/rajeshwari-tech-sub000/internal/usecase/notify"
	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/config"
	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/ratelimit"

	_ "github.com/yashchoube/rajeshwari-tech-sub000/docs" // swagger docs
)

// @title           Rajeshwari Tech API
// @version         1.0
// @description     Blog, enrollment and back-office API of the Rajeshwari Tech training site.

// @contact.name   Rajeshwari Tech
// @contact.email  info@rajeshwaritech.com

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin JWT. Send as "Bearer {token}".

func main() {
	loadDotEnv()
	logger := initLogger()

	tp := tracing.Setup(tracing.LoadConfig("rajeshwari-tech-api"))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("failed to shut down tracer provider", slog.Any("error", err))
		}
	}()

	sec := loadSecurityFile(logger)
	admin := loadAdmin(logger, sec)
	jwtSecret := loadJWTSecret(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	components := setupServer(logger, database, version, sec, admin, jwtSecret)

	runServer(logger, database, components, version)
}

// loadDotEnv reads .env when present. Real environment variables win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", slog.Any("error", err))
	}
}

func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// loadSecurityFile reads SECURITY_PROFILES_FILE when set. A file that is set
// but unreadable stops startup.
func loadSecurityFile(logger *slog.Logger) *appconfig.SecurityConfig {
	sec, err := appconfig.LoadSecurityConfigFromEnv()
	if err != nil {
		logger.Error("failed to load security configuration", slog.Any("error", err))
		os.Exit(1)
	}
	return sec
}

// loadAdmin prevents the server from starting with an empty or weak admin
// account.
func loadAdmin(logger *slog.Logger, sec *appconfig.SecurityConfig) *auth.AdminProvider {
	admin, err := auth.LoadAdminProvider(sec)
	if err != nil {
		logger.Error("admin credentials validation failed", slog.Any("error", err))
		os.Exit(1)
	}
	return admin
}

func loadJWTSecret(logger *slog.Logger) []byte {
	secret := os.Getenv("JWT_SECRET")
	if err := auth.ValidateJWTSecret(secret); err != nil {
		logger.Error("JWT_SECRET validation failed", slog.Any("error", err))
		os.Exit(1)
	}
	return []byte(secret)
}

// initDatabase opens the pool, retrying while the database starts, and
// applies the schema.
func initDatabase(logger *slog.Logger) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var database *sql.DB
	err := retry.StartupPolicy().Do(ctx, "open database", func(ctx context.Context) error {
		var err error
		database, err = db.Open(ctx)
		return err
	})
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}

	if err := db.MigrateUp(ctx, database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

func getVersion() string {
	return config.GetEnvString("VERSION", "dev")
}

// ServerComponents holds what the server needs at run time and on shutdown.
type ServerComponents struct {
	Handler         http.Handler
	Notify          notify.Service
	MemoryStore     *ratelimit.MemoryStore // nil with the redis backend
	TokenBucket     *ratelimit.TokenBucket
	RedisStore      *ratelimit.RedisStore // nil with the memory backend
	CleanupInterval time.Duration
	RateLimit       *ratelimit.PrometheusMetrics
}

// rateLimitBackend is the store selected by RATELIMIT_STORE.
type rateLimitBackend struct {
	store  ratelimit.Store
	memory *ratelimit.MemoryStore
	redis  *ratelimit.RedisStore
}

func setupRateLimitStore(logger *slog.Logger, cfg *config.RateLimitConfig) rateLimitBackend {
	if cfg.Store == config.StoreRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := ratelimit.NewRedisStore(client, ratelimit.RedisStoreConfig{
			FailureThreshold: uint32(cfg.BreakerFailureThreshold),
			OpenTimeout:      cfg.BreakerOpenTimeout,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			// Admission fails open while the store is down; start anyway.
			logger.Warn("rate limit store unreachable at startup", slog.Any("error", err))
		}
		logger.Info("rate limiting: redis store", slog.String("addr", cfg.RedisAddr))
		return rateLimitBackend{store: store, redis: store}
	}

	store := ratelimit.NewMemoryStore(ratelimit.MemoryStoreConfig{MaxKeys: cfg.MaxKeys})
	logger.Info("rate limiting: in-memory store", slog.Int("max_keys", cfg.MaxKeys))
	return rateLimitBackend{store: store, memory: store}
}

func setupNotifications(logger *slog.Logger) notify.Service {
	channels := []notify.Channel{
		notify.NewSlackChannel(notifier.LoadSlackConfig(logger)),
		notify.NewDiscordChannel(notifier.LoadDiscordConfig(logger)),
	}
	maxConcurrent := config.GetEnvInt("NOTIFY_MAX_CONCURRENT", 10)
	svc := notify.NewService(channels, maxConcurrent)
	for _, ch := range svc.GetChannelHealth() {
		logger.Info("notification channel", slog.String("channel", ch.Name), slog.Bool("enabled", ch.Enabled))
	}
	return svc
}

func setupServer(
	logger *slog.Logger,
	database *sql.DB,
	version string,
	sec *appconfig.SecurityConfig,
	admin *auth.AdminProvider,
	jwtSecret []byte,
) *ServerComponents {
	paginationCfg := pagination.LoadFromEnv()

	blogRepo := pgRepo.NewBlogRepo(database)
	enrollmentRepo := pgRepo.NewEnrollmentRepo(database)
	notifySvc := setupNotifications(logger)

	blogSvc := &blogUC.Service{Repo: blogRepo, Pagination: paginationCfg}
	enrollSvc := &enrollUC.Service{Repo: enrollmentRepo, Notifier: notifySvc, Pagination: paginationCfg}
	dashSvc := &dashUC.Service{Blogs: blogRepo, Enrollments: enrollmentRepo}

	rateLimitCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		logger.Error("failed to load rate limit configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if !rateLimitCfg.Enabled {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	profiles, err := middleware.LoadProfiles(rateLimitCfg)
	if err != nil {
		logger.Error("failed to load security profiles", slog.Any("error", err))
		os.Exit(1)
	}
	for _, p := range []middleware.SecurityConfig{profiles.PublicForm, profiles.Login, profiles.AdminOnly, profiles.BlogRead} {
		logger.Info("security profile", slog.String("profile", p.String()))
	}

	proxyCfg, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}

	backend := setupRateLimitStore(logger, rateLimitCfg)
	rlMetrics := ratelimit.NewPrometheusMetrics()
	tokenBucket := ratelimit.NewTokenBucket(ratelimit.SystemClock{})

	deps := middleware.Deps{
		Limiter:     ratelimit.NewLimiter(backend.store),
		TokenBucket: tokenBucket,
		Identity:    middleware.NewIdentityResolver(proxyCfg),
		Auth:        &auth.JWTAuthenticator{Secret: jwtSecret, RequiredRole: auth.RoleAdmin},
		Metrics:     rlMetrics,
		Logger:      logger,
		OnReject:    metrics.RecordSecurityRejection,
	}
	guard := func(cfg middleware.SecurityConfig) func(http.Handler) http.Handler {
		return middleware.SecureAPI(cfg, deps)
	}

	mux := http.NewServeMux()

	issuer := &auth.Issuer{Secret: jwtSecret, Expiry: sec.GetJWTExpiry()}
	mux.Handle("POST /auth/token", guard(profiles.Login)(auth.TokenHandler(admin, issuer)))

	hblog.Register(mux, blogSvc, paginationCfg, logger, guard(profiles.BlogRead), guard(profiles.AdminOnly))
	henrollment.Register(mux, enrollSvc, paginationCfg, logger, guard(profiles.PublicForm), guard(profiles.AdminOnly))
	hdashboard.Register(mux, dashSvc, logger, guard(profiles.AdminOnly))

	var storeReport hhttp.RateLimitStore
	if backend.redis != nil {
		storeReport = backend.redis
	} else {
		storeReport = backend.memory
	}
	mux.Handle("GET /health", &hhttp.HealthHandler{
		DB:               database,
		Version:          version,
		RateLimitBackend: rateLimitCfg.Store,
		RateLimitStore:   storeReport,
		Notifier:         notifySvc,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler(rlMetrics.Registry()))
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	return &ServerComponents{
		Handler:         applyMiddleware(logger, mux),
		Notify:          notifySvc,
		MemoryStore:     backend.memory,
		TokenBucket:     tokenBucket,
		RedisStore:      backend.redis,
		CleanupInterval: rateLimitCfg.CleanupInterval,
		RateLimit:       rlMetrics,
	}
}

// applyMiddleware wraps the mux with the global chain. The first listed runs
// first:
//
//	request ID → tracing → logging → recovery → metrics → security headers →
//	CORS → input validation → body limit → timeout
//
// Per-route admission (SecureAPI) runs inside the mux.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	corsConfig, err := middleware.LoadCORSConfig()
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	corsConfig.Logger = &middleware.SlogAdapter{Logger: logger}
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsConfig.Validator.GetAllowedOrigins()),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Int("max_age", corsConfig.MaxAge))

	headersCfg := config.LoadSecurityHeadersConfig()
	if !headersCfg.Enabled {
		logger.Warn("security headers are disabled")
	}

	requestTimeout := config.GetEnvDuration("HTTP_REQUEST_TIMEOUT", hhttp.DefaultRequestTimeout)

	return hhttp.Chain(handler,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.Recover(logger),
		hhttp.MetricsMiddleware,
		middleware.SecurityHeaders(middleware.DefaultSecurityHeadersOptions(headersCfg)),
		middleware.CORS(*corsConfig),
		hhttp.InputValidation(),
		hhttp.LimitRequestBody(int64(config.GetEnvInt("HTTP_MAX_BODY_BYTES", int(hhttp.DefaultMaxBodyBytes)))),
		hhttp.Timeout(requestTimeout),
	)
}

// startBackground starts the store sweepers and the pool stats reporter.
func startBackground(ctx context.Context, logger *slog.Logger, database *sql.DB, c *ServerComponents) {
	if c.MemoryStore != nil {
		go hhttp.StartRateLimitCleanup(ctx, c.MemoryStore, c.CleanupInterval, "memory", c.RateLimit)
		logger.Info("rate limit cleanup started",
			slog.String("store", "memory"),
			slog.Duration("interval", c.CleanupInterval))
	}
	go hhttp.StartRateLimitCleanup(ctx, hhttp.TokenBucketStore(c.TokenBucket), c.CleanupInterval, "token_bucket", c.RateLimit)

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			metrics.UpdateDBConnectionStats(database.Stats())
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, database *sql.DB, c *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startBackground(ctx, logger, database, c)

	addr := config.GetEnvString("HTTP_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           c.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Slowloris
		IdleTimeout:       120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	// Stop background goroutines only after in-flight requests finished.
	cancel()

	if err := c.Notify.Shutdown(shutdownCtx); err != nil {
		logger.Warn("notification shutdown incomplete", slog.Any("error", err))
	}
	if c.RedisStore != nil {
		if err := c.RedisStore.Close(); err != nil {
			logger.Error("failed to close rate limit store", slog.Any("error", err))
		}
	}
	logger.Info("server stopped")
}
