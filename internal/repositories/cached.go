package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"blog-todo/internal/cache"
	"blog-todo/internal/models"
)

const (
	postListKey = "posts:list"
	taskListKey = "tasks:list"
)

func postKey(id uint) string { return fmt.Sprintf("post:%d", id) }
func taskKey(id uint) string { return fmt.Sprintf("task:%d", id) }

// CachedPostRepository serves List and Get from the cache and invalidates on
// every successful write. Not-found results are never cached.
type CachedPostRepository struct {
	next   PostRepository
	cache  cache.Cache
	ttl    time.Duration
	log    *slog.Logger
	writes writeEpoch
}

func NewCachedPostRepository(next PostRepository, c cache.Cache, ttl time.Duration, log *slog.Logger) *CachedPostRepository {
	return &CachedPostRepository{next: next, cache: c, ttl: ttl, log: log}
}

func (r *CachedPostRepository) List(ctx context.Context) ([]models.Post, error) {
	var cached []models.Post
	if err := r.cache.Get(ctx, postListKey, &cached); err == nil {
		return cached, nil
	}

	epoch := r.writes.current()
	posts, err := r.next.List(ctx)
	if err != nil {
		return posts, err
	}
	r.writes.fill(ctx, r.cache, r.log, epoch, postListKey, posts, r.ttl)
	return posts, nil
}

func (r *CachedPostRepository) Get(ctx context.Context, id uint) (models.Post, error) {
	var cached models.Post
	if err := r.cache.Get(ctx, postKey(id), &cached); err == nil {
		return cached, nil
	}

	epoch := r.writes.current()
	post, err := r.next.Get(ctx, id)
	if err != nil {
		return post, err
	}
	r.writes.fill(ctx, r.cache, r.log, epoch, postKey(id), post, r.ttl)
	return post, nil
}

func (r *CachedPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.next.Create(ctx, post); err != nil {
		return err
	}
	r.writes.advance()
	invalidateEntries(ctx, r.cache, r.log, postListKey)
	return nil
}

func (r *CachedPostRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.next.Update(ctx, post); err != nil {
		return err
	}
	r.writes.advance()
	invalidateEntries(ctx, r.cache, r.log, postListKey, postKey(post.ID))
	return nil
}

func (r *CachedPostRepository) Delete(ctx context.Context, id uint) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.writes.advance()
	invalidateEntries(ctx, r.cache, r.log, postListKey, postKey(id))
	return nil
}

// CachedTaskRepository is the task counterpart of CachedPostRepository.
type CachedTaskRepository struct {
	next   TaskRepository
	cache  cache.Cache
	ttl    time.Duration
	log    *slog.Logger
	writes writeEpoch
}

func NewCachedTaskRepository(next TaskRepository, c cache.Cache, ttl time.Duration, log *slog.Logger) *CachedTaskRepository {
	return &CachedTaskRepository{next: next, cache: c, ttl: ttl, log: log}
}

func (r *CachedTaskRepository) List(ctx context.Context) ([]models.Task, error) {
	var cached []models.Task
	if err := r.cache.Get(ctx, taskListKey, &cached); err == nil {
		return cached, nil
	}

	epoch := r.writes.current()
	tasks, err := r.next.List(ctx)
	if err != nil {
		return tasks, err
	}
	r.writes.fill(ctx, r.cache, r.log, epoch, taskListKey, tasks, r.ttl)
	return tasks, nil
}

func (r *CachedTaskRepository) Get(ctx context.Context, id uint) (models.Task, error) {
	var cached models.Task
	if err := r.cache.Get(ctx, taskKey(id), &cached); err == nil {
		return cached, nil
	}

	epoch := r.writes.current()
	task, err := r.next.Get(ctx, id)
	if err != nil {
		return task, err
	}
	r.writes.fill(ctx, r.cache, r.log, epoch, taskKey(id), task, r.ttl)
	return task, nil
}

func (r *CachedTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.next.Create(ctx, task); err != nil {
		return err
	}
	r.writes.advance()
	invalidateEntries(ctx, r.cache, r.log, taskListKey)
	return nil
}

func (r *CachedTaskRepository) Update(ctx context.Context, task *models.Task) error {
	if err := r.next.Update(ctx, task); err != nil {
		return err
	}
	r.writes.advance()
	invalidateEntries(ctx, r.cache, r.log, taskListKey, taskKey(task.ID))
	return nil
}

func (r *CachedTaskRepository) Delete(ctx context.Context, id uint) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.writes.advance()
	invalidateEntries(ctx, r.cache, r.log, taskListKey, taskKey(id))
	return nil
}

// writeEpoch counts committed writes so a read that started before a write
// never leaves its result in the cache.
type writeEpoch struct {
	n atomic.Uint64
}

func (w *writeEpoch) current() uint64 { return w.n.Load() }

// advance must run after the write commits and before its keys are
// invalidated.
func (w *writeEpoch) advance() { w.n.Add(1) }

// fill stores value unless a write committed since epoch was taken. A write
// that lands while the entry is being stored is caught by the second check.
func (w *writeEpoch) fill(ctx context.Context, c cache.Cache, log *slog.Logger, epoch uint64, key string, value interface{}, ttl time.Duration) {
	if w.current() != epoch {
		return
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		log.WarnContext(ctx, "cache set failed", "key", key, "error", err)
		return
	}
	if w.current() != epoch {
		invalidateEntries(ctx, c, log, key)
	}
}

func invalidateEntries(ctx context.Context, c cache.Cache, log *slog.Logger, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		log.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}
