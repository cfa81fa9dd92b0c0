package monitoring

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthCheck struct {
	Name    string    `json:"name"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	LastRun time.Time `json:"last_run"`
}

type HealthCheckFunc func(ctx context.Context) error

// StatsFunc reports a component's runtime figures for /health.
type StatsFunc func() map[string]interface{}

type HealthChecker struct {
	mu        sync.RWMutex
	checks    map[string]HealthCheckFunc
	stats     map[string]StatsFunc
	timeout   time.Duration
	startTime time.Time
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks:    make(map[string]HealthCheckFunc),
		stats:     make(map[string]StatsFunc),
		timeout:   5 * time.Second,
		startTime: time.Now(),
	}
}

func (h *HealthChecker) Register(name string, check HealthCheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

func (h *HealthChecker) RegisterStats(name string, stats StatsFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats[name] = stats
}

// Details collects every registered StatsFunc.
func (h *HealthChecker) Details() map[string]map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	details := make(map[string]map[string]interface{}, len(h.stats))
	for name, stats := range h.stats {
		details[name] = stats()
	}
	return details
}

// Run executes every registered check and reports whether all passed.
func (h *HealthChecker) Run(ctx context.Context) (map[string]HealthCheck, bool) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	h.mu.RUnlock()
	sort.Strings(names)

	results := make(map[string]HealthCheck, len(names))
	healthy := true
	for _, name := range names {
		h.mu.RLock()
		check := h.checks[name]
		h.mu.RUnlock()

		result := HealthCheck{Name: name, Status: "healthy", LastRun: time.Now()}
		checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
		if err := check(checkCtx); err != nil {
			result.Status = "unhealthy"
			result.Message = err.Error()
			healthy = false
		}
		cancel()
		results[name] = result
	}
	return results, healthy
}

func (h *HealthChecker) HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checks, healthy := h.Run(c.Request.Context())

		overallStatus := "healthy"
		status := http.StatusOK
		if !healthy {
			overallStatus = "unhealthy"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":    overallStatus,
			"timestamp": time.Now(),
			"checks":    checks,
			"details":   h.Details(),
			"uptime":    time.Since(h.startTime).String(),
		})
	}
}

func (h *HealthChecker) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, healthy := h.Run(c.Request.Context()); !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "not ready",
				"timestamp": time.Now(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now(),
		})
	}
}

func (h *HealthChecker) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"timestamp": time.Now(),
			"uptime":    time.Since(h.startTime).String(),
		})
	}
}
