package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// WarmupJob loads one cache entry, usually by reading through a cached
// repository so the normal key layout is used.
type WarmupJob struct {
	Name string
	Load func(ctx context.Context) error
}

type WarmupStrategy struct {
	// Interval repeats warming while the warmer runs. Zero warms once.
	Interval       time.Duration
	ConcurrentJobs int
}

type CacheWarmer struct {
	cache    Cache
	strategy WarmupStrategy
	log      *slog.Logger

	mu      sync.Mutex
	jobs    []WarmupJob
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	lastRun    time.Time
	lastErrors int
}

func NewCacheWarmer(cache Cache, strategy WarmupStrategy, log *slog.Logger) *CacheWarmer {
	if strategy.ConcurrentJobs <= 0 {
		strategy.ConcurrentJobs = 3
	}
	if log == nil {
		log = slog.Default()
	}
	return &CacheWarmer{cache: cache, strategy: strategy, log: log}
}

// AddWarmupJob registers job. Jobs start in registration order.
func (cw *CacheWarmer) AddWarmupJob(job WarmupJob) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.jobs = append(cw.jobs, job)
}

// Start warms the cache in the background and, with a positive interval,
// keeps doing so until Stop is called or ctx ends.
func (cw *CacheWarmer) Start(ctx context.Context) {
	cw.mu.Lock()
	if cw.running {
		cw.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	cw.running = true
	cw.cancel = cancel
	cw.done = make(chan struct{})
	done := cw.done
	cw.mu.Unlock()

	go func() {
		defer close(done)
		cw.WarmNow(ctx)

		if cw.strategy.Interval <= 0 {
			return
		}
		ticker := time.NewTicker(cw.strategy.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cw.WarmNow(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels any warming in flight and waits for it to return.
func (cw *CacheWarmer) Stop() {
	cw.mu.Lock()
	if !cw.running {
		cw.mu.Unlock()
		return
	}
	cw.running = false
	cancel, done := cw.cancel, cw.done
	cw.mu.Unlock()

	cancel()
	<-done
}

// WarmNow runs every job once and returns the number that failed. Nothing
// runs while the cache reports itself unhealthy.
func (cw *CacheWarmer) WarmNow(ctx context.Context) int {
	if err := cw.cache.Health(ctx); err != nil {
		cw.log.WarnContext(ctx, "cache warmup skipped", slog.String("error", err.Error()))
		return 0
	}

	cw.mu.Lock()
	jobs := make([]WarmupJob, len(cw.jobs))
	copy(jobs, cw.jobs)
	cw.mu.Unlock()

	var (
		failedMu sync.Mutex
		failed   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cw.strategy.ConcurrentJobs)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := job.Load(gctx); err != nil {
				cw.log.WarnContext(gctx, "cache warmup job failed",
					slog.String("job", job.Name),
					slog.String("error", err.Error()))
				failedMu.Lock()
				failed++
				failedMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	cw.mu.Lock()
	cw.lastRun = time.Now()
	cw.lastErrors = failed
	cw.mu.Unlock()

	cw.log.DebugContext(ctx, "cache warmed", slog.Int("jobs", len(jobs)), slog.Int("failed", failed))
	return failed
}

func (cw *CacheWarmer) GetStats() map[string]interface{} {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	return map[string]interface{}{
		"running":         cw.running,
		"interval":        cw.strategy.Interval.String(),
		"total_jobs":      len(cw.jobs),
		"concurrent_jobs": cw.strategy.ConcurrentJobs,
		"last_run":        cw.lastRun,
		"last_errors":     cw.lastErrors,
	}
}
