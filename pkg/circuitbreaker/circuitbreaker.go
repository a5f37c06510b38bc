// Package circuitbreaker stops calling a failing dependency for a cooldown
// period once too many calls fail within a sliding window.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned without calling the guarded function while the
// breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type Config struct {
	Name string
	// MaxFailures is how many failures inside Window are tolerated; one more
	// opens the breaker.
	MaxFailures int
	Window      time.Duration
	// Cooldown is how long the breaker stays open before letting one trial
	// call through.
	Cooldown time.Duration
}

type CircuitBreaker struct {
	cfg Config
	log *slog.Logger
	now func() time.Time

	mu       sync.Mutex
	state    State
	failures []time.Time
	openedAt time.Time
	trial    bool
}

func New(cfg Config, log *slog.Logger) *CircuitBreaker {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &CircuitBreaker{
		cfg: cfg,
		log: log.With("component", "circuitbreaker", "breaker", cfg.Name),
		now: time.Now,
	}
}

// Execute calls fn unless the breaker is open. Only one trial call runs
// while half-open; concurrent callers get ErrOpen.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.before(); err != nil {
		return err
	}
	err := fn(ctx)
	cb.after(err)
	return err
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cfg.Cooldown {
			return ErrOpen
		}
		cb.transition(StateHalfOpen)
		cb.trial = true
	case StateHalfOpen:
		if cb.trial {
			return ErrOpen
		}
		cb.trial = true
	}
	return nil
}

func (cb *CircuitBreaker) after(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	if cb.state == StateHalfOpen {
		cb.trial = false
		if err != nil {
			cb.open(now)
		} else {
			cb.failures = cb.failures[:0]
			cb.transition(StateClosed)
		}
		return
	}

	cb.prune(now)
	if err == nil {
		return
	}
	cb.failures = append(cb.failures, now)
	if len(cb.failures) > cb.cfg.MaxFailures {
		cb.open(now)
	}
}

func (cb *CircuitBreaker) open(now time.Time) {
	cb.openedAt = now
	cb.failures = cb.failures[:0]
	cb.transition(StateOpen)
}

func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}
	cb.log.Warn("circuit breaker state changed", "from", cb.state.String(), "to", to.String())
	cb.state = to
}

// prune drops failures older than the window.
func (cb *CircuitBreaker) prune(now time.Time) {
	cutoff := now.Add(-cb.cfg.Window)
	keep := 0
	for keep < len(cb.failures) && !cb.failures[keep].After(cutoff) {
		keep++
	}
	cb.failures = cb.failures[keep:]
}
