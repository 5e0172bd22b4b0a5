// Package gin adapts chainkit chains to the gin web framework.
package gin

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chainkit/chainkit/chain"
)

// Option configures the adapter.
type Option func(*config)

type config struct {
	passThrough bool
	errorFunc   func(c *gin.Context, err error)
}

// WithPassThrough controls whether an execution that produced no content
// falls through to the remaining gin handlers. Enabled by default.
func WithPassThrough(enabled bool) Option {
	return func(cfg *config) {
		cfg.passThrough = enabled
	}
}

// WithErrorHandler sets the function invoked when a chain execution fails.
// The default records the error on the gin context and aborts with 500.
func WithErrorHandler(fn func(c *gin.Context, err error)) Option {
	return func(cfg *config) {
		cfg.errorFunc = fn
	}
}

// Middleware returns a gin.HandlerFunc running the chain. A short-circuit or
// produced content renders the canonical response and aborts the gin
// pipeline. Pass-through merges chain-written headers onto the gin writer,
// rearms a chain-consumed body, and calls c.Next().
func Middleware(ch *chain.Chain, opts ...Option) gin.HandlerFunc {
	cfg := &config{
		passThrough: true,
		errorFunc: func(c *gin.Context, err error) {
			_ = c.Error(err)
			c.AbortWithStatus(500)
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *gin.Context) {
		reqOpts := []chain.RequestOption{
			chain.WithHeaders(c.Request.Header),
			chain.WithRemoteAddr(c.Request.RemoteAddr),
		}
		if c.Request.Body != nil {
			reqOpts = append(reqOpts, chain.WithBody(c.Request.Body))
		}
		req := chain.NewRequest(c.Request.Method, c.Request.URL.RequestURI(), reqOpts...)

		out, err := ch.Execute(c.Request.Context(), req, chain.WithClientIP(c.ClientIP()))
		if err != nil {
			cfg.errorFunc(c, err)
			return
		}

		if out.Done || out.Response.Written() || !cfg.passThrough {
			for k, vals := range out.Response.Header() {
				for _, v := range vals {
					c.Writer.Header().Add(k, v)
				}
			}
			c.Status(out.Response.Status())
			if len(out.Response.Body()) > 0 {
				_, _ = c.Writer.Write(out.Response.Body())
			}
			c.Abort()
			return
		}

		for k, vals := range out.Response.Header() {
			for _, v := range vals {
				c.Writer.Header().Add(k, v)
			}
		}
		if req.BodyConsumed() {
			if b, err := req.Bytes(); err == nil {
				c.Request.Body = io.NopCloser(bytes.NewReader(b))
			} else {
				c.Request.Body = http.NoBody
			}
		}
		c.Next()
	}
}
