package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/irfndi/meets-match-sub000/internal/config"
	s3infra "github.com/irfndi/meets-match-sub000/internal/infra/s3"
	pgrepo "github.com/irfndi/meets-match-sub000/internal/repo/postgres"
	redrepo "github.com/irfndi/meets-match-sub000/internal/repo/redis"
	actionssvc "github.com/irfndi/meets-match-sub000/internal/services/actions"
	ledgersvc "github.com/irfndi/meets-match-sub000/internal/services/ledger"
	matchessvc "github.com/irfndi/meets-match-sub000/internal/services/matches"
	matchingsvc "github.com/irfndi/meets-match-sub000/internal/services/matching"
	profilessvc "github.com/irfndi/meets-match-sub000/internal/services/profiles"
	ratesvc "github.com/irfndi/meets-match-sub000/internal/services/rate"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
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
	cacheRepo := redrepo.NewCacheRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)

	profileRepo := pgrepo.NewProfileRepo(pool)
	actionRepo := pgrepo.NewActionRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)

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
	}

	ledgerService, err := ledgersvc.NewService(ledgersvc.Dependencies{
		Actions: actionRepo,
		Cache:   cacheRepo,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("build ledger service: %w", err)
	}

	var photoSigner matchingsvc.PhotoSigner
	if s3Client != nil {
		photoSigner = s3infra.NewPhotoSigner(s3Client, cfg.S3.Bucket)
	}

	matchingService, err := matchingsvc.NewService(matchingsvc.Dependencies{
		Profiles: profileRepo,
		Ledger:   ledgerService,
		Cache:    cacheRepo,
		Photos:   photoSigner,
		Logger:   log,
	}, matchingsvc.Config{
		PoolLimit:        cfg.Matching.PoolLimit,
		FetchConcurrency: cfg.Matching.FetchConcurrency,
		StoreTimeout:     cfg.Matching.StoreTimeout,
		PhotoURLTTL:      cfg.Matching.PhotoURLTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("build matching service: %w", err)
	}

	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Limits.LikesPerMinute, cfg.Limits.LikesPer10Sec)

	actionsService, err := actionssvc.NewService(actionssvc.Dependencies{
		Tx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		Actions: actionRepo,
		Matches: matchRepo,
		Ledger:  ledgerService,
		Limiter: rateLimiter,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("build actions service: %w", err)
	}

	matchesService, err := matchessvc.NewService(matchRepo)
	if err != nil {
		return nil, fmt.Errorf("build matches service: %w", err)
	}

	profilesService, err := profilessvc.NewService(profilessvc.Dependencies{
		Store:  profileRepo,
		Cache:  cacheRepo,
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("build profiles service: %w", err)
	}

	RegisterRoutes(r, Dependencies{
		MatchingService: matchingService,
		ActionsService:  actionsService,
		MatchesService:  matchesService,
		ProfilesService: profilesService,
		Logger:          log,
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
