package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/comitanigiacomo/penny-challenge/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/penny-challenge/internal/adapters/handler/http"
	"github.com/comitanigiacomo/penny-challenge/internal/adapters/mail"
	"github.com/comitanigiacomo/penny-challenge/internal/adapters/repository"
	"github.com/comitanigiacomo/penny-challenge/internal/config"
	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/comitanigiacomo/penny-challenge/internal/core/services"
	"github.com/comitanigiacomo/penny-challenge/internal/core/workers"
	"github.com/comitanigiacomo/penny-challenge/internal/storage"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("application terminated with error", zap.Error(err))
	}
}

type stores struct {
	users  domain.UserRepository
	states domain.SavedStateRepository
	db     *sqlx.DB
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		logger.Info("connecting to postgres")
		db, err := storage.OpenPostgres(ctx, cfg.PostgresDSN(), storage.PoolConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
		})
		if err != nil {
			return nil, err
		}
		return &stores{
			users:  repository.NewPostgresUserRepository(db),
			states: repository.NewPostgresSavedStateRepository(db),
			db:     db,
		}, nil

	case config.BackendSQLite:
		logger.Info("opening sqlite", zap.String("path", cfg.SQLitePath))
		db, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:  repository.NewSQLiteUserRepository(db),
			states: repository.NewSQLiteSavedStateRepository(db),
			db:     db,
		}, nil

	default:
		logger.Warn("using in-memory storage, data is lost on restart")
		return &stores{
			users:  repository.NewInMemoryUserRepository(),
			states: repository.NewInMemorySavedStateRepository(),
		}, nil
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	startTime := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if st.db != nil {
		defer st.db.Close()
	}

	var healthChecks []adapterHTTP.HealthCheck
	if st.db != nil {
		healthChecks = append(healthChecks, adapterHTTP.HealthCheck{Name: "database", Check: st.db.PingContext})
	}

	var (
		rdb         *redis.Client
		rateLimits  domain.RateLimitStore
		magicLinks  domain.MagicLinkStore
		memoryLimit *cache.MemoryRateLimitStore
	)
	states := st.states

	if cfg.RedisEnabled() {
		rdb, err = cache.NewRedisClient(cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		rateLimits = cache.NewRedisRateLimitStore(rdb)
		magicLinks = cache.NewRedisMagicLinkStore(rdb)
		states = repository.NewCachedSavedStateRepository(states, rdb, logger)
		healthChecks = append(healthChecks, adapterHTTP.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		logger.Info("redis connected", zap.String("host", cfg.RedisHost))
	} else {
		memoryLimit = cache.NewMemoryRateLimitStore(nil)
		rateLimits = memoryLimit
		magicLinks = cache.NewMemoryMagicLinkStore(nil)
		logger.Warn("redis not configured, using in-memory rate limits and magic links")
	}

	var mailer domain.Mailer
	if cfg.ResendAPIKey != "" {
		mailer = mail.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
	} else {
		mailer = mail.NewLogMailer(logger)
		logger.Warn("RESEND_API_KEY not set, magic links are logged instead of sent")
	}
	mailWorker := workers.NewMailWorker(mailer, logger)

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, services.SessionDuration, st.users)
	authService := services.NewAuthService(st.users, magicLinks, mailWorker, tokenService, cfg.BaseURL)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		CalculatorHandler: adapterHTTP.NewCalculatorHandler(services.NewCalculatorService(time.Now)),
		AuthHandler:       adapterHTTP.NewAuthHandler(authService),
		SavedHandler:      adapterHTTP.NewSavedHandler(services.NewSavedStateService(states)),
		Tokens:            tokenService,
		RateLimits:        rateLimits,
		GlobalLimit:       adapterHTTP.RateLimit{Limit: cfg.GlobalRateLimit, Window: cfg.GlobalRateWindow},
		SavedLimit:        adapterHTTP.RateLimit{Limit: cfg.SavedRateLimit, Window: cfg.SavedRateWindow},
		AllowedOrigin:     cfg.CORSOrigin,
		HealthChecks:      healthChecks,
		Logger:            logger,
		StartTime:         startTime,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	mailWorker.Start(ctx)
	g.Go(func() error {
		mailWorker.Wait()
		return nil
	})

	if memoryLimit != nil {
		g.Go(func() error {
			return memoryLimit.Run(ctx, cfg.RateSweepInterval)
		})
	}

	g.Go(func() error {
		logger.Info("penny challenge API listening", zap.String("addr", cfg.Addr()), zap.String("backend", cfg.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		logger.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}
