package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GlebRadaev/creator-ledger/internal/config"
	"github.com/GlebRadaev/creator-ledger/internal/eligibility"
	"github.com/GlebRadaev/creator-ledger/internal/handlers"
	"github.com/GlebRadaev/creator-ledger/internal/lock"
	"github.com/GlebRadaev/creator-ledger/internal/observability"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
	"github.com/GlebRadaev/creator-ledger/internal/provider"
	"github.com/GlebRadaev/creator-ledger/internal/release"
	"github.com/GlebRadaev/creator-ledger/internal/repo"
	"github.com/GlebRadaev/creator-ledger/internal/service"
	"github.com/GlebRadaev/creator-ledger/internal/worker"
	"github.com/GlebRadaev/creator-ledger/pkg/auth"
	"github.com/GlebRadaev/creator-ledger/pkg/clients"
	"github.com/GlebRadaev/creator-ledger/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg   *config.Config
	api   *handlers.Handlers
	srv   *service.Services
	repo  *repo.Repositories
	pool  *pgxpool.Pool
	redis *redis.Client

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("can't load config: %w", err)
	}

	err = logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}
	observability.Init()

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(ctx, pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)

	locker, err := a.releaseLocker(ctx, cfg)
	if err != nil {
		zap.L().Error("redis connection failed: ", zap.Error(err))
		return fmt.Errorf("can't connect to redis: %w", err)
	}

	httpClient := clients.NewHTTPClient(cfg.HTTPClientRetries)
	a.cfg = cfg
	a.pool = pool
	a.repo = repo.New(pg.New(pool))
	a.srv = service.New(cfg, a.repo, txManager, service.Clients{
		Eligibility: eligibility.New(cfg.EligibilityAddress, httpClient),
		Provider:    provider.New(cfg.ProviderAddress, httpClient),
		Locker:      locker,
	})
	a.api = handlers.New(a.srv, auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer), cfg.WebhookSecret, cfg.CreatorRateLimit)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}
	a.startWorkers(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

// releaseLocker returns nil when no redis is configured; the sweep then runs unlocked.
func (a *Application) releaseLocker(ctx context.Context, cfg *config.Config) (release.Locker, error) {
	if cfg.RedisURL == "" {
		zap.L().Info("REDIS_URL not set, hold release runs without a distributed lock")
		return nil, nil
	}
	client, err := lock.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	a.redis = client
	return lock.NewRedisLocker(client), nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			zap.L().Error("http server shutdown failed", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

// startWorkers runs the schedulers under a.wg so Wait outlives their last sweep.
func (a *Application) startWorkers(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.srv.ReleaseService.Start(ctx)
	}()

	reconciler := worker.NewReconciliationWorker(a.srv.ReconcileService, a.cfg.ReconcileInterval)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		reconciler.Start(ctx)
	}()
}

// closeConnections releases the connections once every server and worker has stopped.
func (a *Application) closeConnections() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			zap.L().Warn("redis close failed", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	a.closeConnections()
	close(a.errCh)
	wg.Wait()

	return appErr
}
