package ratelimit

import (
	"context"
	"time"

	domainRateLimit "github.com/betterhyq/LexPlain/pkg/domain/ratelimit"
	"github.com/betterhyq/LexPlain/pkg/infra/breaker"
	"github.com/betterhyq/LexPlain/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

// Limiter enforces a fixed-window quota per client identity.
type Limiter interface {
	// CheckAndConsume always consumes one unit, including for requests that
	// end up denied. It never returns an error: when the store cannot be
	// reached the request is allowed.
	CheckAndConsume(ctx context.Context, identity string) domainRateLimit.Decision
}

type Options struct {
	Limit  int64
	Window time.Duration
	// Timeout bounds each store call. Zero means the caller's context only.
	Timeout time.Duration
	Breaker breaker.Breaker
	Now     func() time.Time
}

type limiter struct {
	logger *logrus.Logger
	store  domainRateLimit.Store
	opts   Options
}

func NewLimiter(logger *logrus.Logger, store domainRateLimit.Store, opts Options) Limiter {
	if opts.Limit <= 0 {
		opts.Limit = domainRateLimit.DefaultLimit
	}
	if opts.Window < time.Second {
		opts.Window = domainRateLimit.DefaultWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &limiter{
		logger: logger,
		store:  store,
		opts:   opts,
	}
}

func (l *limiter) CheckAndConsume(ctx context.Context, identity string) domainRateLimit.Decision {
	windowID := domainRateLimit.WindowID(l.opts.Now(), l.opts.Window)
	key := domainRateLimit.Key(identity, windowID)

	count, ttl, err := l.consume(ctx, key)
	if err != nil {
		l.logger.WithError(err).WithField("key", key).Warn("rate limit store unavailable, allowing request")
		prometheus.RateLimitDecisions.WithLabelValues(prometheus.OutcomeFailOpen).Inc()
		return domainRateLimit.Decision{
			Allowed: true,
			Current: 0,
			Limit:   l.opts.Limit,
		}
	}

	decision := domainRateLimit.Decision{
		Allowed: count <= l.opts.Limit,
		Current: count,
		Limit:   l.opts.Limit,
	}
	if decision.Allowed {
		prometheus.RateLimitDecisions.WithLabelValues(prometheus.OutcomeAllowed).Inc()
		return decision
	}

	decision.RetryAfter = l.retryAfter(ttl)
	prometheus.RateLimitDecisions.WithLabelValues(prometheus.OutcomeDenied).Inc()
	l.logger.WithFields(logrus.Fields{
		"key":         key,
		"current":     count,
		"retry_after": decision.RetryAfter,
	}).Debug("rate limit exceeded")
	return decision
}

func (l *limiter) consume(ctx context.Context, key string) (int64, time.Duration, error) {
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	if l.opts.Breaker == nil {
		return l.store.Consume(ctx, key, l.opts.Window)
	}

	var (
		count int64
		ttl   time.Duration
	)
	err := l.opts.Breaker.Execute(func() error {
		var err error
		count, ttl, err = l.store.Consume(ctx, key, l.opts.Window)
		return err
	})
	return count, ttl, err
}

// retryAfter falls back to the full window when the store reports no TTL.
// Both stores report whole seconds.
func (l *limiter) retryAfter(ttl time.Duration) int {
	if seconds := int(ttl / time.Second); seconds > 0 {
		return seconds
	}
	return int(l.opts.Window / time.Second)
}
