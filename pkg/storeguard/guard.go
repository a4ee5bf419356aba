// Package storeguard wraps calls to a backing store with retry and a circuit breaker.
//
// Errors that are answers from the store (a missing record, a failed conditional update)
// are classified as permanent by Config.Permanent: they are returned at once, never
// retried, and count as successes for the breaker. Everything else is treated as a store
// failure.
package storeguard

import (
	"context"
	"errors"
	"time"

	"tokocart/pkg/logger"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker/v2"
)

// Config tunes one guard.
type Config struct {
	Name            string
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// BreakerFailures is the number of consecutive store failures that opens the breaker.
	BreakerFailures uint32
	// BreakerTimeout is how long the breaker stays open before letting a probe through.
	BreakerTimeout time.Duration

	// Permanent reports errors that must not be retried.
	Permanent func(error) bool
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig(name string) Config {
	return Config{
		Name:            name,
		MaxTries:        4,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Guard is safe for concurrent use.
type Guard struct {
	cfg     Config
	breaker *gobreaker.CircuitBreaker[any]
	log     *logger.Logger
}

// New creates a guard from cfg. Zero-valued numeric fields fall back to DefaultConfig.
func New(cfg Config, log *logger.Logger) *Guard {
	def := DefaultConfig(cfg.Name)
	if cfg.MaxTries == 0 {
		cfg.MaxTries = def.MaxTries
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = def.BreakerFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = def.BreakerTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}

	g := &Guard{cfg: cfg, log: log}
	g.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || g.isAnswer(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("store circuit breaker changed state", "store", name, "from", from.String(), "to", to.String())
		},
	})
	return g
}

// State exposes the breaker state, mostly for health reporting.
func (g *Guard) State() gobreaker.State {
	return g.breaker.State()
}

// isAnswer reports errors that say nothing about store health.
func (g *Guard) isAnswer(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return g.cfg.Permanent != nil && g.cfg.Permanent(err)
}

func (g *Guard) isPermanent(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	return g.isAnswer(err)
}

func execute[T any](ctx context.Context, g *Guard, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := g.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}

// Once runs fn a single time through the breaker. Use it for writes that are not safe to
// repeat after an ambiguous failure.
func Once[T any](ctx context.Context, g *Guard, op string, fn func(context.Context) (T, error)) (T, error) {
	v, err := execute(ctx, g, fn)
	if err != nil && !g.isAnswer(err) {
		g.log.Warn("store call failed", "store", g.cfg.Name, "op", op, "error", err)
	}
	return v, err
}

// Retry runs fn through the breaker, retrying store failures with exponential backoff.
func Retry[T any](ctx context.Context, g *Guard, op string, fn func(context.Context) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.cfg.InitialInterval
	b.MaxInterval = g.cfg.MaxInterval

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := execute(ctx, g, fn)
		if err == nil {
			return v, nil
		}
		if g.isPermanent(err) {
			return v, backoff.Permanent(err)
		}
		g.log.Warn("store call failed", "store", g.cfg.Name, "op", op, "attempt", attempt, "error", err)
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(g.cfg.MaxTries))
}

// RetryErr is Retry for operations without a result.
func RetryErr(ctx context.Context, g *Guard, op string, fn func(context.Context) error) error {
	_, err := Retry(ctx, g, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// OnceErr is Once for operations without a result.
func OnceErr(ctx context.Context, g *Guard, op string, fn func(context.Context) error) error {
	_, err := Once(ctx, g, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
