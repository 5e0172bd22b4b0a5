package chain

import (
	"context"
)

// UnknownIP is the sentinel client address used when the adapter could not
// determine one.
const UnknownIP = "unknown"

// Context bundles everything one execution owns: the canonical request, the
// response builder, the shared state, and ambient metadata. A Context is
// allocated by Execute, lives for exactly one execution, and must not be
// retained afterwards. It is not safe for concurrent use.
type Context struct {
	ctx   context.Context
	req   *Request
	res   *ResponseBuilder
	state *State
	ip    string

	// scratch holds per-execution values that are not part of the shared
	// state contract, e.g. adapter escape hatches.
	scratch map[string]any
}

func newContext(ctx context.Context, req *Request, initial map[string]any, ip string) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if ip == "" {
		ip = UnknownIP
	}
	st := NewState()
	for k, v := range initial {
		st.Set(k, v)
	}
	return &Context{
		ctx:   ctx,
		req:   req,
		res:   NewResponseBuilder(),
		state: st,
		ip:    ip,
	}
}

// Context returns the context.Context the execution runs under. Middleware
// performing blocking work should observe its cancellation.
func (c *Context) Context() context.Context { return c.ctx }

// WithContext replaces the execution's context.Context. Used by deadline and
// cancellation middleware.
func (c *Context) WithContext(ctx context.Context) {
	if ctx != nil {
		c.ctx = ctx
	}
}

// Request returns the canonical request.
func (c *Context) Request() *Request { return c.req }

// Response returns the response builder.
func (c *Context) Response() *ResponseBuilder { return c.res }

// State returns the shared state for this execution.
func (c *Context) State() *State { return c.state }

// IP returns the client address, or UnknownIP.
func (c *Context) IP() string { return c.ip }

// SetScratch stores a per-execution value outside the shared state contract.
func (c *Context) SetScratch(key string, v any) {
	if c.scratch == nil {
		c.scratch = make(map[string]any)
	}
	c.scratch[key] = v
}

// Scratch returns a value stored with SetScratch.
func (c *Context) Scratch(key string) (any, bool) {
	v, ok := c.scratch[key]
	return v, ok
}
