package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/VML-Technologies/VML.Perito-sub005/pkg/logctx"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/metrics"
)

const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxRequests = 100
)

var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitError carries the wait hint for a rejected call.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s, retry after %ds", ErrRateLimited.Error(), retrySeconds(e.RetryAfter))
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// RetryAfterSeconds rounds the wait up to whole seconds, never below one.
func (e *RateLimitError) RetryAfterSeconds() int { return retrySeconds(e.RetryAfter) }

func retrySeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long until the oldest hit in the window expires.
	// Zero when Allowed.
	RetryAfter time.Duration
}

// Err returns a *RateLimitError for rejected decisions and nil otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &RateLimitError{RetryAfter: d.RetryAfter}
}

// Store keeps the hit timestamps per key. Hit must be atomic per key: prune,
// count, compare with limit and record now as one step.
type Store interface {
	Hit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (Decision, error)
	Name() string
}

type Options struct {
	Enabled     bool
	Window      time.Duration
	MaxRequests int
	// Now is the clock; time.Now when nil.
	Now func() time.Time
}

// Limiter is a sliding-window limiter over a Store.
type Limiter struct {
	store   Store
	enabled bool
	window  time.Duration
	limit   int
	now     func() time.Time
	log     *zap.SugaredLogger
}

func NewLimiter(store Store, opts Options, log *zap.SugaredLogger) *Limiter {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.MaxRequests <= 0 {
		opts.MaxRequests = DefaultMaxRequests
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Limiter{
		store:   store,
		enabled: opts.Enabled,
		window:  opts.Window,
		limit:   opts.MaxRequests,
		now:     opts.Now,
		log:     log,
	}
}

func (l *Limiter) Enabled() bool { return l.enabled }

func (l *Limiter) Limit() int { return l.limit }

// Allow counts one call for key. A disabled limiter allows everything. When
// the store fails the call is allowed and the error is returned for logging.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	if !l.enabled {
		return Decision{Allowed: true, Remaining: l.limit}, nil
	}
	d, err := l.store.Hit(ctx, key, l.now(), l.window, l.limit)
	if err != nil {
		logctx.FromCtx(ctx, l.log).Warnw("rate_limit_store_error", "store", l.store.Name(), "key", key, "err", err)
		return Decision{Allowed: true}, fmt.Errorf("rate limit store %s: %w", l.store.Name(), err)
	}
	metrics.IncRateLimitDecision(l.store.Name(), d.Allowed)
	if !d.Allowed {
		logctx.FromCtx(ctx, l.log).Infow("rate_limit_rejected", "key", key, "retry_after_ms", d.RetryAfter.Milliseconds())
	}
	return d, nil
}
