package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/chainkit/chainkit/chain"
)

// CacheOption configures the cache middleware.
type CacheOption func(*cacheConfig)

type cacheConfig struct {
	keyFunc func(*chain.Context) string
	now     func() time.Time
	logger  Logger
}

// WithCacheKeyFunc sets a function to derive the cache key. The default is
// method plus full URL.
func WithCacheKeyFunc(fn func(*chain.Context) string) CacheOption {
	return func(o *cacheConfig) {
		o.keyFunc = fn
	}
}

// WithCacheClock overrides the clock, for tests.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(o *cacheConfig) {
		o.now = now
	}
}

// WithCacheLogger sets the logger for cache events.
func WithCacheLogger(l Logger) CacheOption {
	return func(o *cacheConfig) {
		o.logger = l
	}
}

type cacheEntry struct {
	resp    *chain.Response
	expires time.Time
}

// Cache returns middleware that caches built GET responses in memory for
// ttl. A hit short-circuits with the cached snapshot replayed onto the
// response builder and X-Cache: HIT; a miss continues down the chain and
// stores the outcome during the unwind when a response body was produced.
//
// The entry map is shared across executions and guarded by a mutex; it is the
// only cross-request state the middleware owns.
func Cache(ttl time.Duration, opts ...CacheOption) chain.Middleware {
	cfg := &cacheConfig{
		keyFunc: func(c *chain.Context) string {
			return c.Request().Method() + " " + c.Request().URL()
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var mu sync.Mutex
	entries := make(map[string]cacheEntry)

	return chain.NewMiddleware("cache", func(c *chain.Context, next chain.Next) (chain.Result, error) {
		if c.Request().Method() != http.MethodGet {
			return chain.Continue(), next()
		}

		key := cfg.keyFunc(c)

		mu.Lock()
		entry, ok := entries[key]
		if ok && cfg.now().After(entry.expires) {
			delete(entries, key)
			ok = false
		}
		mu.Unlock()

		if ok {
			if cfg.logger != nil {
				cfg.logger.Debug("cache hit", F("key", key))
			}
			replay(c.Response(), entry.resp)
			c.Response().SetHeader("X-Cache", "HIT")
			return chain.Done(), nil
		}

		c.Response().SetHeader("X-Cache", "MISS")
		if err := next(); err != nil {
			return chain.Result{}, err
		}

		if snap, err := c.Response().Build(); err == nil && snap.HasContent() && snap.Status() < http.StatusBadRequest {
			mu.Lock()
			entries[key] = cacheEntry{resp: snap, expires: cfg.now().Add(ttl)}
			mu.Unlock()
		}
		return chain.Continue(), nil
	})
}

// replay copies a cached snapshot onto a fresh builder.
func replay(b *chain.ResponseBuilder, snap *chain.Response) {
	b.SetStatus(snap.Status())
	for k, vals := range snap.Header() {
		for i, v := range vals {
			if i == 0 {
				b.SetHeader(k, v)
			} else {
				b.AddHeader(k, v)
			}
		}
	}
	switch snap.Kind() {
	case chain.KindText:
		b.Text(string(snap.Body()))
	case chain.KindJSON:
		// Body is already serialized; replay as a binary payload with the
		// cached Content-Type so it is not re-encoded.
		b.Blob(snap.Header().Get("Content-Type"), snap.Body())
	case chain.KindBinary:
		b.Blob(snap.Header().Get("Content-Type"), snap.Body())
	}
}
