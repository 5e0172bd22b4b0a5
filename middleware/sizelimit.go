package middleware

import (
	"fmt"
	"net/http"

	"github.com/chainkit/chainkit/chain"
)

// SizeLimitOption configures the size limit middleware.
type SizeLimitOption func(*sizeLimitConfig)

type sizeLimitConfig struct {
	logger Logger
}

// WithSizeLimitLogger sets the logger for size limit events.
func WithSizeLimitLogger(l Logger) SizeLimitOption {
	return func(o *sizeLimitConfig) {
		o.logger = l
	}
}

// SizeLimit returns middleware that rejects requests whose body exceeds
// maxBytes with a 413 short-circuit. The declared Content-Length is checked
// first; when absent, the memoized body is measured.
func SizeLimit(maxBytes int64, opts ...SizeLimitOption) chain.Middleware {
	cfg := &sizeLimitConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return chain.NewMiddleware("sizelimit", func(c *chain.Context, next chain.Next) (chain.Result, error) {
		size := c.Request().ContentLength()
		if size < 0 && c.Request().HasBody() {
			if b, err := c.Request().Bytes(); err == nil {
				size = int64(len(b))
			}
		}

		if size > maxBytes {
			if cfg.logger != nil {
				cfg.logger.Warn("request size limit exceeded",
					Field{Key: "path", Value: c.Request().Path()},
					Field{Key: "size", Value: size},
					Field{Key: "max", Value: maxBytes},
				)
			}
			c.Response().
				SetStatus(http.StatusRequestEntityTooLarge).
				JSON(map[string]string{
					"error": fmt.Sprintf("request size %d exceeds limit of %d bytes", size, maxBytes),
				})
			return chain.Done(), nil
		}

		return chain.Continue(), next()
	})
}

// Common size limit presets.
const (
	// KB is 1024 bytes.
	KB = 1024
	// MB is 1024 * 1024 bytes.
	MB = 1024 * 1024
)
