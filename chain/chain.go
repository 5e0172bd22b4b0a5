package chain

import (
	"context"
)

// Chain is an ordered, immutable sequence of middleware units. Use returns a
// new Chain, so a base chain can be extended into variants while executions
// against the base keep running untouched.
type Chain struct {
	units []Middleware
}

// New builds a chain from the given units, in registration order.
func New(units ...Middleware) *Chain {
	c := &Chain{}
	return c.Use(units...)
}

// Use returns a new Chain with the units appended. The receiver is never
// mutated.
func (c *Chain) Use(units ...Middleware) *Chain {
	merged := make([]Middleware, 0, len(c.units)+len(units))
	merged = append(merged, c.units...)
	merged = append(merged, units...)
	return &Chain{units: merged}
}

// UseFunc appends an unnamed handler.
func (c *Chain) UseFunc(h Handler) *Chain {
	return c.Use(NewMiddleware("", h))
}

// Len returns the number of units in the chain.
func (c *Chain) Len() int { return len(c.units) }

// Names returns the unit names in registration order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.units))
	for i, u := range c.units {
		names[i] = u.Name
	}
	return names
}

// Outcome is the result of one execution. Done reports whether any unit
// short-circuited; Response is the built snapshot; State is the final shared
// state, exposed for introspection.
type Outcome struct {
	Done     bool
	Response *Response
	State    *State
}

// ExecuteOption configures a single execution.
type ExecuteOption func(*executeConfig)

type executeConfig struct {
	initialState map[string]any
	clientIP     string
}

// WithInitialState seeds the execution's shared state.
func WithInitialState(state map[string]any) ExecuteOption {
	return func(cfg *executeConfig) {
		cfg.initialState = state
	}
}

// WithClientIP records the client address on the Context.
func WithClientIP(ip string) ExecuteOption {
	return func(cfg *executeConfig) {
		cfg.clientIP = ip
	}
}

// Execute runs the chain against req. Units run in registration order on the
// way down; code after next() runs in reverse order on the way back up. The
// first Done result seen during the unwind is authoritative: units registered
// after it never ran, units registered before it still unwind normally.
//
// A handler error aborts the execution and propagates untranslated. The
// chain itself never writes to the response on error; converting faults to
// responses is the job of an error-handling middleware registered early.
func (c *Chain) Execute(ctx context.Context, req *Request, opts ...ExecuteOption) (*Outcome, error) {
	cfg := &executeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	cc := newContext(ctx, req, cfg.initialState, cfg.clientIP)
	out := &Outcome{State: cc.state}

	var run func(i int) error
	run = func(i int) error {
		if i >= len(c.units) {
			// Innermost continuation: nothing left, fall through.
			return nil
		}
		unit := c.units[i]
		invoked := false
		next := Next(func() error {
			if invoked {
				return nil
			}
			invoked = true
			return run(i + 1)
		})
		res, err := unit.Handler(cc, next)
		if err != nil {
			return err
		}
		if res.Done && !out.Done {
			out.Done = true
		}
		return nil
	}

	if err := run(0); err != nil {
		return nil, err
	}

	snap, err := cc.res.Build()
	if err != nil {
		return nil, err
	}
	out.Response = snap
	return out, nil
}
