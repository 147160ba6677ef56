package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bookhub/internal/auth"
	"github.com/MrSnakeDoc/bookhub/internal/config"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver"
	"github.com/MrSnakeDoc/bookhub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookhub/internal/links"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
	"github.com/MrSnakeDoc/bookhub/internal/metrics"
	"github.com/MrSnakeDoc/bookhub/internal/redis"
	"github.com/MrSnakeDoc/bookhub/internal/scheduler"
	"github.com/MrSnakeDoc/bookhub/internal/service"
	redisstore "github.com/MrSnakeDoc/bookhub/internal/store/redis"
	"github.com/MrSnakeDoc/bookhub/internal/store/sqldb"
	"github.com/MrSnakeDoc/bookhub/internal/upload"
	"github.com/MrSnakeDoc/bookhub/internal/utils"
	"github.com/MrSnakeDoc/bookhub/internal/version"
)

type App struct {
	cfg           *config.Config
	logger        logger.Logger
	server        *httpserver.Server
	store         *sqldb.Store
	redisClient   *goredis.Client
	linkValidator *scheduler.LinkValidator
	gc            *scheduler.GarbageCollector
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Database first - nothing works without it
	bootCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	loggerClient.Info("opening database", logger.String("driver", cfg.DBDriver))
	store, err := sqldb.Open(bootCtx, cfg.DBDriver, cfg.DBDSN, sqldb.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		loggerClient.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Database initialized successfully")

	// Redis is optional. Caches must stay untyped nil when it is off.
	var (
		profileCache service.ProfileCache
		linkCache    service.LinkCache
		cachePinger  deps.Pinger
	)
	redisClient, err := redis.New(bootCtx, redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	switch {
	case errors.Is(err, redis.ErrDisabled):
		loggerClient.Info("redis not configured, identity and link caches disabled")
	case err != nil:
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	default:
		cache := redisstore.NewStore(redisClient, cfg.IdentityCacheTTL, cfg.LinkRevalidateAfter)
		profileCache, linkCache, cachePinger = cache, cache, cache
		loggerClient.Info("Redis initialized successfully")
	}

	var uploader *upload.Uploader
	if cfg.MinioEndpoint != "" {
		uploader, err = upload.NewMinio(bootCtx, upload.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
		if err != nil {
			loggerClient.Errorf("Failed to initialize object storage: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("object storage ready", logger.String("bucket", cfg.MinioBucket))
	} else {
		loggerClient.Info("object storage not configured, uploads disabled")
	}

	var tokens *auth.TokenService
	if cfg.JWTSecret != "" {
		tokens, err = auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			loggerClient.Errorf("Failed to initialize token verification: %v", err)
			os.Exit(1)
		}
	}
	if cfg.DemoMode {
		loggerClient.Warn("demo mode enabled, anonymous requests act as the demo user")
	}

	m := metrics.New()
	checker := links.New(links.WithBatching(cfg.LinkBatchSize, cfg.LinkBatchPause))

	dna := service.NewDNAService(store, loggerClient)

	linkRecheckTrigger := make(chan struct{}, 1)
	var validatorCache scheduler.LinkStatusCache
	if linkCache != nil {
		validatorCache = linkCache
	}
	linkValidator := scheduler.NewLinkValidator(
		store,
		checker,
		validatorCache,
		m,
		loggerClient,
		cfg.LinkCheckInterval,
		linkRecheckTrigger,
	)

	gc := scheduler.NewGarbageCollector(
		store,
		loggerClient,
		cfg.GCInterval,
		cfg.DNAEventRetention,
		cfg.DismissedRecRetention,
	)

	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		TimeNow:            time.Now,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		TrustProxy:         cfg.TrustProxy,
		CORSOrigins:        cfg.CORSOrigins,
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitBurst:     cfg.RateLimitBurst,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Tokens:             tokens,
		DemoMode:           cfg.DemoMode,
		DBDriver:           store.Driver(),
		DB:                 store,
		Cache:              cachePinger,
		Metrics:            m,
		Profiles:           service.NewProfileService(store, profileCache, m, loggerClient),
		Bookmarks:          service.NewBookmarkService(store, dna, m, loggerClient),
		Folders:            service.NewFolderService(store, dna),
		Tags:               service.NewTagService(store, dna),
		Relationships:      service.NewRelationshipService(store, m),
		Capsules:           service.NewCapsuleService(store),
		DNA:                dna,
		Preferences:        service.NewPreferenceService(store),
		Links:              service.NewLinkService(store, checker, linkCache, m, loggerClient),
		Imports:            service.NewImportService(store, dna, m, loggerClient),
		Maintenance:        service.NewMaintenanceService(store, profileCache, loggerClient),
		Uploader:           uploader,
		LinkRecheckTrigger: linkRecheckTrigger,
	}

	server := httpserver.New(cfg.ListenPort, d)

	return &App{
		cfg:           cfg,
		logger:        loggerClient,
		server:        server,
		store:         store,
		redisClient:   redisClient,
		linkValidator: linkValidator,
		gc:            gc,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting BookHub v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Link validation runs in the background and never blocks startup
	a.linkValidator.Start(ctx)
	a.logger.Info("link validator started",
		logger.Duration("interval", a.cfg.LinkCheckInterval))

	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	a.logger.Info("garbage collector started",
		logger.Duration("interval", a.cfg.GCInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.shutdownBackends()
		return err
	}

	a.linkValidator.Stop()
	a.gc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.shutdownBackends()
	a.logger.Info("✅ BookHub stopped cleanly")
	return nil
}

func (a *App) shutdownBackends() {
	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, "redis", a.logger)
	}
	utils.CloseLogged(a.store, "database", a.logger)
	_ = a.logger.Sync()
}
