// Package fasthttp adapts chainkit chains to the fasthttp server runtime.
package fasthttp

import (
	"bytes"
	"net/http"

	"github.com/valyala/fasthttp"

	"github.com/chainkit/chainkit/chain"
)

// Option configures the adapter.
type Option func(*config)

type config struct {
	passThrough bool
	errorFunc   func(ctx *fasthttp.RequestCtx, err error)
}

// WithPassThrough controls whether an execution that produced no content
// falls through to the wrapped handler. Enabled by default.
func WithPassThrough(enabled bool) Option {
	return func(c *config) {
		c.passThrough = enabled
	}
}

// WithErrorHandler sets the function invoked when a chain execution fails.
// The default writes a plain 500.
func WithErrorHandler(fn func(ctx *fasthttp.RequestCtx, err error)) Option {
	return func(c *config) {
		c.errorFunc = fn
	}
}

// Wrap returns a fasthttp middleware running the chain in front of next.
// On pass-through the chain's header mutations are merged onto the native
// response before next runs; the native body is untouched since PostBody
// reads from fasthttp's buffer without draining it.
func Wrap(c *chain.Chain, opts ...Option) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	cfg := newConfig(opts)
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(rctx *fasthttp.RequestCtx) {
			out, err := execute(c, rctx)
			if err != nil {
				cfg.errorFunc(rctx, err)
				return
			}
			if out.Done || out.Response.Written() || !cfg.passThrough {
				render(rctx, out.Response)
				return
			}
			for k, vals := range out.Response.Header() {
				for _, v := range vals {
					rctx.Response.Header.Add(k, v)
				}
			}
			next(rctx)
		}
	}
}

// Handler returns a terminal fasthttp.RequestHandler for the chain.
func Handler(c *chain.Chain, opts ...Option) fasthttp.RequestHandler {
	cfg := newConfig(opts)
	return func(rctx *fasthttp.RequestCtx) {
		out, err := execute(c, rctx)
		if err != nil {
			cfg.errorFunc(rctx, err)
			return
		}
		render(rctx, out.Response)
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		passThrough: true,
		errorFunc: func(ctx *fasthttp.RequestCtx, err error) {
			ctx.Error(fasthttp.StatusMessage(fasthttp.StatusInternalServerError), fasthttp.StatusInternalServerError)
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func execute(c *chain.Chain, rctx *fasthttp.RequestCtx) (*chain.Outcome, error) {
	header := make(http.Header)
	rctx.Request.Header.VisitAll(func(k, v []byte) {
		header.Add(string(k), string(v))
	})

	reqOpts := []chain.RequestOption{
		chain.WithHeaders(header),
		chain.WithRemoteAddr(rctx.RemoteAddr().String()),
	}
	if body := rctx.PostBody(); len(body) > 0 {
		reqOpts = append(reqOpts, chain.WithBody(bytes.NewReader(body)))
	}

	req := chain.NewRequest(string(rctx.Method()), string(rctx.RequestURI()), reqOpts...)
	// RequestCtx itself is the context; it is canceled when the connection
	// goes away.
	return c.Execute(rctx, req, chain.WithClientIP(rctx.RemoteIP().String()))
}

func render(rctx *fasthttp.RequestCtx, resp *chain.Response) {
	for k, vals := range resp.Header() {
		for _, v := range vals {
			rctx.Response.Header.Add(k, v)
		}
	}
	rctx.SetStatusCode(resp.Status())
	if len(resp.Body()) > 0 {
		rctx.SetBody(resp.Body())
	}
}
