package main

import (
	"context"
	"log"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/eventhub/api/handler"
	"github.com/fastygo/eventhub/internal/authz"
	"github.com/fastygo/eventhub/internal/config"
	"github.com/fastygo/eventhub/internal/infrastructure/buffer"
	"github.com/fastygo/eventhub/internal/infrastructure/metrics"
	"github.com/fastygo/eventhub/internal/infrastructure/monitor"
	oidcInfra "github.com/fastygo/eventhub/internal/infrastructure/oidc"
	pgInfra "github.com/fastygo/eventhub/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/eventhub/internal/infrastructure/redis"
	"github.com/fastygo/eventhub/internal/middleware"
	"github.com/fastygo/eventhub/internal/router"
	"github.com/fastygo/eventhub/internal/services"
	"github.com/fastygo/eventhub/internal/services/lifecycle"
	"github.com/fastygo/eventhub/internal/token"
	"github.com/fastygo/eventhub/pkg/httpcontext"
	"github.com/fastygo/eventhub/pkg/logger"
	"github.com/fastygo/eventhub/repository"
	boltRepo "github.com/fastygo/eventhub/repository/bolt"
	"github.com/fastygo/eventhub/repository/postgres"
	redisRepo "github.com/fastygo/eventhub/repository/redis"
	authUC "github.com/fastygo/eventhub/usecase/auth"
	eventUC "github.com/fastygo/eventhub/usecase/event"
	registrationUC "github.com/fastygo/eventhub/usecase/registration"
	userUC "github.com/fastygo/eventhub/usecase/user"
)

type repositories struct {
	users      repository.UserRepository
	events     repository.EventRepository
	activities repository.ActivityRepository
	health     monitor.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.Context(context.Background())
	defer stop()

	repos := openStorage(appCtx, cfg, manager, zapLogger)

	var redisClient *redislib.Client
	var attempts repository.AttemptCounter
	var redisHealth monitor.Pinger
	if cfg.Redis.Enabled {
		redisClient, err = redisInfra.NewClient(cfg.Redis)
		if err != nil {
			// The throttle fails open; login keeps working without it.
			zapLogger.Warn("redis unavailable, login throttling disabled", zap.Error(err))
		} else {
			manager.RegisterCloser("redis", redisClient)
			attempts = redisRepo.NewAttemptCounter(redisClient, cfg.Auth.AttemptWindow)
			redisHealth = redisInfra.Health{Client: redisClient}
		}
	}

	bufferStore, err := buffer.Open(cfg.Buffer.Path, buffer.DefaultBucket)
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.RegisterCloser("buffer", bufferStore)
	if cfg.Buffer.RetentionHours > 0 {
		cutoff := time.Now().Add(-time.Duration(cfg.Buffer.RetentionHours) * time.Hour)
		pruned, err := bufferStore.Prune(cutoff)
		if err != nil {
			zapLogger.Warn("buffer cleanup failed", zap.Error(err))
		} else if pruned > 0 {
			zapLogger.Info("expired spooled activities pruned", zap.Int("count", pruned))
		}
	}

	mon := monitor.New(monitor.Targets{
		StorageDriver: cfg.Storage.Driver,
		Storage:       repos.health,
		Redis:         redisHealth,
		Buffer:        bufferStore,
	}, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		repos.activities,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})
	activityBridge := services.NewActivityBridge(bufferProcessor)

	tokens, err := token.New(token.Config{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL,
	})
	if err != nil {
		zapLogger.Fatal("token service", zap.Error(err))
	}

	var identity authUC.IdentityVerifier
	if cfg.OIDC.Enabled() {
		verifier, err := oidcInfra.Discover(appCtx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, zapLogger)
		if err != nil {
			zapLogger.Fatal("oidc discovery failed", zap.String("issuer", cfg.OIDC.Issuer), zap.Error(err))
		}
		identity = verifier
	}

	var appMetrics *metrics.Metrics
	if cfg.HTTP.EnableMetrics {
		appMetrics = metrics.New()
	}

	gate := authz.New(zapLogger)
	authUseCase := authUC.New(repos.users, tokens, attempts, identity, authUC.Config{
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		AdminEmails:      cfg.Auth.AdminEmails,
	}, zapLogger)
	eventUseCase := eventUC.New(repos.events, repos.activities, gate, activityBridge, zapLogger)
	var observer registrationUC.Observer
	if appMetrics != nil {
		observer = appMetrics
	}
	registrationUseCase := registrationUC.New(repos.events, gate, activityBridge, observer, zapLogger)
	userUseCase := userUC.New(repos.users, gate, zapLogger)

	if cfg.Auth.AdminEmail != "" {
		bootCtx, bootCancel := context.WithTimeout(appCtx, cfg.Context.RequestTimeout)
		if _, err := authUseCase.EnsureAdmin(bootCtx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			zapLogger.Fatal("admin bootstrap failed", zap.Error(err))
		}
		bootCancel()
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:         apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Event:        apiHandler.NewEventHandler(eventUseCase, ctxAdapter, zapLogger),
		Registration: apiHandler.NewRegistrationHandler(registrationUseCase, ctxAdapter, zapLogger),
		User:         apiHandler.NewUserHandler(userUseCase, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}
	if appMetrics != nil {
		handlers.Metrics = appMetrics.Handler()
	}

	resolver := middleware.NewResolver(tokens, repos.users)
	authMiddleware := middleware.Authenticate(resolver, ctxAdapter, zapLogger)
	r := router.New(handlers, authMiddleware, router.Options{IdentityLogin: authUseCase.IdentityEnabled()})

	server := &fasthttp.Server{
		Handler:            appMetrics.Middleware(r.Handler),
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
		MaxRequestBodySize: 1 << 20,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()
	zapLogger.Info("shutdown requested")

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) repositories {
	switch cfg.Storage.Driver {
	case config.StorageDriverBolt:
		store, err := boltRepo.Open(cfg.Storage.BoltPath)
		if err != nil {
			zapLogger.Fatal("failed to open bolt storage", zap.String("path", cfg.Storage.BoltPath), zap.Error(err))
		}
		manager.RegisterCloser("bolt_storage", store)
		zapLogger.Info("using bolt storage", zap.String("path", cfg.Storage.BoltPath))
		return repositories{
			users:      boltRepo.NewUserRepository(store),
			events:     boltRepo.NewEventRepository(store),
			activities: boltRepo.NewActivityRepository(store),
			health:     store,
		}
	default:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		return repositories{
			users:      postgres.NewUserRepository(pool),
			events:     postgres.NewEventRepository(pool),
			activities: postgres.NewActivityRepository(pool),
			health:     pool,
		}
	}
}
