// Package app wires configuration, storage, cache and HTTP serving into a
// runnable blog or to-do application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-todo/internal/cache"
	"blog-todo/internal/config"
	"blog-todo/internal/database"
	"blog-todo/internal/handlers"
	"blog-todo/internal/logging"
	"blog-todo/internal/models"
	"blog-todo/internal/monitoring"
	"blog-todo/internal/repositories"
	"blog-todo/internal/server"
	"blog-todo/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// sharedL1TTL bounds how stale one process's in-memory copy can be when
// several processes share Redis.
const sharedL1TTL = 30 * time.Second

type App struct {
	Config *config.Config
	Router *gin.Engine

	log    *slog.Logger
	pool   *database.DatabasePool
	cache  *cache.MultiLevelCache
	warmer *cache.CacheWarmer
}

// Run loads .env and the environment, then serves app ("blog" or "todo")
// until SIGINT or SIGTERM.
func Run(name string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	format := cfg.Log.Format
	if cfg.IsProduction() {
		format = "json"
	}
	log := logging.New(logging.Options{Level: cfg.Log.Level, Format: format}).With(slog.String("app", name))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(ctx)
}

// New opens the database, migrates the schema and builds the router.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	pool, err := database.NewDatabasePool(database.PoolConfigFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, log: log, pool: pool}

	health := monitoring.NewHealthChecker()
	health.Register("database", pool.Health)

	health.RegisterStats("database", pool.Stats)

	if cfg.Cache.Enabled {
		a.cache = newCache(cfg, log)
		if cfg.Redis.Enabled {
			health.Register("cache", a.cache.Health)
		}
		health.RegisterStats("cache", a.cache.Stats)

		// Shared entries written by an earlier run may predate changes made
		// to the database while no process was serving.
		if err := a.cache.DeletePattern(ctx, "*"); err != nil {
			log.WarnContext(ctx, "cache purge failed", slog.String("error", err.Error()))
		}

		if cfg.Cache.Warm {
			a.warmer = cache.NewCacheWarmer(a.cache, cache.WarmupStrategy{Interval: cfg.Cache.WarmInterval}, log)
			health.RegisterStats("cache_warmer", a.warmer.GetStats)
		}
	}

	var routes server.RouteRegistrar
	switch cfg.App {
	case "blog":
		if err := database.Migrate(ctx, pool.DB, log, &models.Post{}); err != nil {
			a.Close()
			return nil, err
		}
		var repo repositories.PostRepository = repositories.NewPostRepository(pool.DB)
		if a.cache != nil {
			repo = repositories.NewCachedPostRepository(repo, a.cache, cfg.Cache.TTL, log)
			a.addWarmupJob("posts:list", func(ctx context.Context) error {
				_, err := repo.List(ctx)
				return err
			})
		}
		routes = server.BlogRoutes(handlers.NewPostHandler(services.NewPostService(repo, log), log))
	case "todo":
		if err := database.Migrate(ctx, pool.DB, log, &models.Task{}); err != nil {
			a.Close()
			return nil, err
		}
		var repo repositories.TaskRepository = repositories.NewTaskRepository(pool.DB)
		if a.cache != nil {
			repo = repositories.NewCachedTaskRepository(repo, a.cache, cfg.Cache.TTL, log)
			a.addWarmupJob("tasks:list", func(ctx context.Context) error {
				_, err := repo.List(ctx)
				return err
			})
		}
		routes = server.TodoRoutes(handlers.NewTaskHandler(services.NewTaskService(repo, log), log))
	default:
		a.Close()
		return nil, fmt.Errorf("unknown application %q", cfg.App)
	}

	router, err := server.NewRouter(cfg, log, health, routes)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Router = router
	return a, nil
}

func (a *App) addWarmupJob(name string, load func(ctx context.Context) error) {
	if a.warmer != nil {
		a.warmer.AddWarmupJob(cache.WarmupJob{Name: name, Load: load})
	}
}

func newCache(cfg *config.Config, log *slog.Logger) *cache.MultiLevelCache {
	if !cfg.Redis.Enabled {
		return cache.NewMultiLevelCache(nil, cache.WithL1TTL(cfg.Cache.TTL), cache.WithLogger(log))
	}
	breaker := cache.WithBreakerConfig(cache.BreakerConfig{
		Threshold: cfg.Cache.BreakerThreshold,
		Cooldown:  cfg.Cache.BreakerCooldown,
	})

	opts := cache.DefaultRedisOptions()
	opts.Addr = cfg.GetRedisAddr()
	opts.Password = cfg.Redis.Password
	opts.DB = cfg.Redis.DB
	opts.PoolSize = cfg.Redis.PoolSize
	opts.DialTimeout = cfg.Redis.DialTimeout
	opts.ReadTimeout = cfg.Redis.ReadTimeout
	opts.WriteTimeout = cfg.Redis.WriteTimeout
	opts.KeyPrefix = cfg.App + ":"
	redisCache := cache.NewRedisCache(opts)

	l1TTL := cfg.Cache.TTL
	if l1TTL <= 0 || l1TTL > sharedL1TTL {
		l1TTL = sharedL1TTL
	}
	return cache.NewMultiLevelCache(redisCache, cache.WithL1TTL(l1TTL), cache.WithLogger(log), breaker)
}

// Serve listens on the configured address until ctx is cancelled, then
// drains in-flight requests within the shutdown timeout.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.GetServerAddr(),
		Handler:           a.Router,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      a.Config.Server.WriteTimeout,
		IdleTimeout:       a.Config.Server.IdleTimeout,
	}

	if a.warmer != nil {
		a.warmer.Start(ctx)
		defer a.warmer.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down", slog.Duration("timeout", a.Config.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}

func (a *App) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.pool != nil {
		errs = append(errs, a.pool.Close())
	}
	return errors.Join(errs...)
}
