// Package nethttp adapts chainkit chains to the net/http server runtime.
//
// The adapter translates *http.Request into the canonical request, executes
// the chain, and either renders the canonical response or hands control to
// the wrapped handler when the chain passed through.
package nethttp

import (
	"bytes"
	"io"
	"net"
	"net/http"

	"github.com/chainkit/chainkit/chain"
)

// Option configures the adapter.
type Option func(*config)

type config struct {
	passThrough bool
	errorFunc   func(w http.ResponseWriter, r *http.Request, err error)
	clientIP    func(r *http.Request) string
}

// WithPassThrough controls whether an execution that produced no content
// falls through to the wrapped handler. Enabled by default for Wrap;
// irrelevant for Handler, which always renders.
func WithPassThrough(enabled bool) Option {
	return func(c *config) {
		c.passThrough = enabled
	}
}

// WithErrorHandler sets the function invoked when a chain execution fails.
// The default writes a plain 500.
func WithErrorHandler(fn func(w http.ResponseWriter, r *http.Request, err error)) Option {
	return func(c *config) {
		c.errorFunc = fn
	}
}

// WithClientIP overrides client address extraction. The default strips the
// port from RemoteAddr.
func WithClientIP(fn func(r *http.Request) string) Option {
	return func(c *config) {
		c.clientIP = fn
	}
}

// Wrap returns a net/http middleware that runs the chain in front of next.
// When the chain short-circuits or writes content, the canonical response is
// rendered and next never runs. On pass-through the chain's header mutations
// are merged onto the native writer and a chain-consumed body is rearmed
// before next takes over.
func Wrap(c *chain.Chain, opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			out, req, err := execute(c, r, cfg)
			if err != nil {
				cfg.errorFunc(w, r, err)
				return
			}
			if out.Done || out.Response.Written() || !cfg.passThrough {
				render(w, out.Response)
				return
			}
			mergeHeaders(w.Header(), out.Response.Header())
			restoreBody(r, req)
			next.ServeHTTP(w, r)
		})
	}
}

// Handler returns a terminal http.Handler for the chain. A pass-through
// outcome renders whatever the builder holds, status 200 by default.
func Handler(c *chain.Chain, opts ...Option) http.Handler {
	cfg := newConfig(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, _, err := execute(c, r, cfg)
		if err != nil {
			cfg.errorFunc(w, r, err)
			return
		}
		render(w, out.Response)
	})
}

func newConfig(opts []Option) *config {
	cfg := &config{
		passThrough: true,
		errorFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		},
		clientIP: clientIP,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func execute(c *chain.Chain, r *http.Request, cfg *config) (*chain.Outcome, *chain.Request, error) {
	req := chain.NewRequest(r.Method, r.URL.RequestURI(),
		chain.WithHeaders(r.Header),
		chain.WithBody(r.Body),
		chain.WithRemoteAddr(r.RemoteAddr),
	)
	out, err := c.Execute(r.Context(), req, chain.WithClientIP(cfg.clientIP(r)))
	return out, req, err
}

// mergeHeaders copies chain-written headers onto the native writer so
// annotating middleware survive pass-through.
func mergeHeaders(dst, src http.Header) {
	for k, vals := range src {
		for _, v := range vals {
			dst.Add(k, v)
		}
	}
}

// restoreBody rearms r.Body from the memoized buffer when the chain consumed
// the original source, so the native handler still sees the full payload.
func restoreBody(r *http.Request, req *chain.Request) {
	if !req.BodyConsumed() {
		return
	}
	if b, err := req.Bytes(); err == nil {
		r.Body = io.NopCloser(bytes.NewReader(b))
	} else {
		r.Body = http.NoBody
	}
}

func render(w http.ResponseWriter, resp *chain.Response) {
	mergeHeaders(w.Header(), resp.Header())
	w.WriteHeader(resp.Status())
	if len(resp.Body()) > 0 {
		_, _ = w.Write(resp.Body())
	}
}

// clientIP strips the port from RemoteAddr, falling back to the raw value.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr == "" {
		return chain.UnknownIP
	}
	return r.RemoteAddr
}
