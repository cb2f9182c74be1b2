package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ndvoropaev/linkup/internal/config"
	"github.com/ndvoropaev/linkup/internal/infra/httpclient"
	s3infra "github.com/ndvoropaev/linkup/internal/infra/s3"
	"github.com/ndvoropaev/linkup/internal/infra/textgen"
	"github.com/ndvoropaev/linkup/internal/jobs/expiry"
	pgrepo "github.com/ndvoropaev/linkup/internal/repo/postgres"
	redrepo "github.com/ndvoropaev/linkup/internal/repo/redis"
	authsvc "github.com/ndvoropaev/linkup/internal/services/auth"
	discoverysvc "github.com/ndvoropaev/linkup/internal/services/discovery"
	enrichmentsvc "github.com/ndvoropaev/linkup/internal/services/enrichment"
	matchessvc "github.com/ndvoropaev/linkup/internal/services/matches"
	preferencessvc "github.com/ndvoropaev/linkup/internal/services/preferences"
	ratesvc "github.com/ndvoropaev/linkup/internal/services/rate"
	swipesvc "github.com/ndvoropaev/linkup/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	expiryJob  *expiry.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	candidateRepo := pgrepo.NewCandidateRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	threadRepo := pgrepo.NewThreadRepo(pool)
	notificationRepo := pgrepo.NewNotificationRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	preferenceRepo := pgrepo.NewPreferenceRepo(pool)
	txManager := pgrepo.NewTxManager(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret)

	var generator enrichmentsvc.Generator
	if cfg.Enrichment.Endpoint != "" {
		client, err := textgen.NewClient(
			cfg.Enrichment.Endpoint,
			cfg.Enrichment.APIKey,
			httpclient.New(cfg.Enrichment.Timeout),
		)
		if err != nil {
			log.Warn("textgen init failed, matches will not be enriched", zap.Error(err))
		} else {
			generator = client
		}
	}
	enrichmentService := enrichmentsvc.NewService(generator, cfg.Enrichment.Timeout, log)

	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Limits.LikesPerMinute, cfg.Limits.LikesPer10Sec)

	discoveryService := discoverysvc.NewService(candidateRepo, discoverysvc.Config{
		PoolSize: cfg.Discovery.PoolSize,
	})

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
		discoveryService.AttachAvatarSigner(s3infra.NewSigner(s3Client, cfg.S3.Bucket))
	}

	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Tx:            txManager,
		SwipeStore:    swipeRepo,
		MatchStore:    matchRepo,
		ThreadStore:   threadRepo,
		Notifications: notificationRepo,
		Profiles:      profileRepo,
		RateLimiter:   rateLimiter,
		Enricher:      enrichmentService,
		Logger:        log,
	}, swipesvc.Config{
		MatchTTL:       cfg.Matching.TTL,
		SummaryTimeout: cfg.Enrichment.Timeout,
	})

	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		MatchStore: matchRepo,
		Profiles:   profileRepo,
		Icebreaker: enrichmentService,
	})

	preferencesService := preferencessvc.NewService(preferenceRepo)

	expiryJob := expiry.New(matchRepo, cfg.Matching.SweepInterval, log)

	RegisterRoutes(r, Dependencies{
		JWTManager:         jwtManager,
		DiscoveryService:   discoveryService,
		SwipeService:       swipeService,
		MatchService:       matchesService,
		PreferencesService: preferencesService,
		MatchSweeper:       expiryJob,
		Logger:             log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		expiryJob:  expiryJob,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RunExpirySweeper blocks until ctx is cancelled.
func (a *App) RunExpirySweeper(ctx context.Context) error {
	if a.expiryJob == nil {
		return nil
	}
	return a.expiryJob.Run(ctx)
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
