package cache

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned without calling L2 while the breaker is open.
var ErrBreakerOpen = errors.New("redis circuit breaker is open")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

type BreakerConfig struct {
	// Threshold is the number of consecutive failures that opens the breaker.
	Threshold int
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
	// Probes is how many calls run half-open; all must succeed to close.
	Probes int
	// OnStateChange, if set, is called with the lock released.
	OnStateChange func(from, to BreakerState)
}

type BreakerStats struct {
	State        string    `json:"state"`
	Failures     int       `json:"consecutive_failures"`
	Trips        int64     `json:"trips"`
	Rejected     int64     `json:"rejected"`
	OpenedAt     time.Time `json:"opened_at,omitempty"`
	CooldownSecs float64   `json:"cooldown_seconds"`
}

// Breaker guards calls to Redis so an outage costs one fast rejection per
// lookup instead of a dial timeout.
type Breaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu         sync.Mutex
	state      BreakerState
	generation uint64
	failures   int
	inFlight   int
	succeeded  int
	openedAt   time.Time
	trips      int64
	rejected   int64
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.Probes <= 0 {
		cfg.Probes = 1
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// Do runs fn unless the breaker is open and records its outcome.
func (b *Breaker) Do(fn func() error) error {
	probe, err := b.acquire()
	if err != nil {
		return err
	}
	err = fn()
	b.release(probe, err == nil)
	return err
}

// acquire admits a call. Half-open admissions return the probe generation so
// results from calls admitted earlier are not counted as probes.
func (b *Breaker) acquire() (uint64, error) {
	b.mu.Lock()
	from := b.state
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		b.state = BreakerHalfOpen
		b.generation++
		b.inFlight, b.succeeded = 0, 0
	}

	var (
		probe uint64
		err   error
	)
	switch {
	case b.state == BreakerOpen:
		err = ErrBreakerOpen
	case b.state == BreakerHalfOpen && b.inFlight+b.succeeded >= b.cfg.Probes:
		err = ErrBreakerOpen
	case b.state == BreakerHalfOpen:
		b.inFlight++
		probe = b.generation
	}
	if err != nil {
		b.rejected++
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
	return probe, err
}

func (b *Breaker) release(probe uint64, ok bool) {
	b.mu.Lock()
	from := b.state

	switch b.state {
	case BreakerHalfOpen:
		if probe == 0 || probe != b.generation {
			break
		}
		b.inFlight--
		if !ok {
			b.trip()
			break
		}
		b.succeeded++
		if b.succeeded >= b.cfg.Probes {
			b.state = BreakerClosed
			b.failures = 0
		}
	case BreakerClosed:
		if ok {
			b.failures = 0
			break
		}
		b.failures++
		if b.failures >= b.cfg.Threshold {
			b.trip()
		}
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

// trip opens the breaker. Callers hold b.mu.
func (b *Breaker) trip() {
	b.state = BreakerOpen
	b.openedAt = b.now()
	b.trips++
}

func (b *Breaker) notify(from, to BreakerState) {
	if from != to && b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BreakerStats{
		State:        b.state.String(),
		Failures:     b.failures,
		Trips:        b.trips,
		Rejected:     b.rejected,
		OpenedAt:     b.openedAt,
		CooldownSecs: b.cfg.Cooldown.Seconds(),
	}
}
