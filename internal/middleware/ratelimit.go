package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client IP. Idle clients are swept
// lazily on the request path, so no background goroutine is needed.
type RateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	limit       rate.Limit
	burst       int
	idleTimeout time.Duration
	lastSweep   time.Time
	now         func() time.Time
}

func NewRateLimiter(requestsPerMinute, burst int, idleTimeout time.Duration) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if idleTimeout <= 0 {
		idleTimeout = 10 * time.Minute
	}
	return &RateLimiter{
		visitors:    make(map[string]*visitor),
		limit:       rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:       burst,
		idleTimeout: idleTimeout,
		lastSweep:   time.Now(),
		now:         time.Now,
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idleTimeout {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.idleTimeout {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Len reports how many clients are currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

func (rl *RateLimiter) Stats() map[string]interface{} {
	return map[string]interface{}{
		"clients":          rl.Len(),
		"requests_per_sec": float64(rl.limit),
		"burst":            rl.burst,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.limiterFor(c.ClientIP())
		reservation := limiter.ReserveN(rl.now(), 1)
		if !reservation.OK() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		if delay := reservation.DelayFrom(rl.now()); delay > 0 {
			reservation.CancelAt(rl.now())
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
