package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/chainkit/chainkit/chain"
)

// RateLimitOption configures the rate limiter.
type RateLimitOption func(*rateLimitConfig)

type rateLimitConfig struct {
	keyFunc  func(*chain.Context) string
	interval time.Duration
	logger   Logger
}

// WithRateLimitKeyFunc sets a function to extract a rate limit key from the
// execution. This allows per-client or per-route rate limiting.
func WithRateLimitKeyFunc(fn func(*chain.Context) string) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.keyFunc = fn
	}
}

// WithRateLimitInterval sets the refill window. Default is one second.
func WithRateLimitInterval(d time.Duration) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.interval = d
	}
}

// WithRateLimitLogger sets the logger for rate limit events.
func WithRateLimitLogger(l Logger) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.logger = l
	}
}

// RateLimit returns middleware that limits request rate using a token bucket
// algorithm, keyed by client IP unless a key function overrides it. Rejected
// requests short-circuit with 429 and X-RateLimit-* headers.
func RateLimit(rate int, burst int, opts ...RateLimitOption) chain.Middleware {
	cfg := &rateLimitConfig{
		keyFunc:  func(c *chain.Context) string { return c.IP() },
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	limiter := ratelimit.New(&ratelimit.Config{
		Rate:     rate,
		Burst:    burst,
		Interval: cfg.interval,
	})

	return chain.NewMiddleware("ratelimit", func(c *chain.Context, next chain.Next) (chain.Result, error) {
		key := cfg.keyFunc(c)

		if !limiter.Allow(c.Context(), key) {
			if cfg.logger != nil {
				cfg.logger.Warn("rate limit exceeded",
					Field{Key: "path", Value: c.Request().Path()},
					Field{Key: "key", Value: key},
				)
			}
			c.Response().
				SetHeader("X-RateLimit-Limit", strconv.Itoa(rate)).
				SetHeader("X-RateLimit-Remaining", "0").
				SetHeader("Retry-After", strconv.Itoa(int(cfg.interval/time.Second))).
				SetStatus(http.StatusTooManyRequests).
				JSON(map[string]string{"error": "rate limit exceeded"})
			return chain.Done(), nil
		}

		return chain.Continue(), next()
	})
}

// RateLimitByPath returns rate limiting middleware that applies per-path
// limits instead of per-client limits.
func RateLimitByPath(rate int, burst int, opts ...RateLimitOption) chain.Middleware {
	allOpts := append([]RateLimitOption{
		WithRateLimitKeyFunc(func(c *chain.Context) string {
			return c.Request().Path()
		}),
	}, opts...)
	return RateLimit(rate, burst, allOpts...)
}
