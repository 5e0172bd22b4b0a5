package chain

// Next is the continuation handed to a handler. Invoking it runs the
// remaining suffix of the chain and returns once everything downstream has
// completed. A handler invokes its continuation at most once; further calls
// are no-ops.
type Next func() error

// Result is a handler's completion signal. Done true means the handler wrote
// a terminal response and the chain must not continue past it; Done false
// means "I do not want to short-circuit" and says nothing about what happened
// downstream.
type Result struct {
	Done bool
}

// Done is shorthand for a short-circuiting result.
func Done() Result { return Result{Done: true} }

// Continue is shorthand for a non-short-circuiting result.
func Continue() Result { return Result{} }

// Handler is the executable part of a middleware unit. It may inspect and
// mutate the Context before calling next, and run unwind code after next
// returns. Errors propagate out of Execute untranslated.
type Handler func(c *Context, next Next) (Result, error)

// Middleware is a named middleware unit. Units are stateless with respect to
// the chain; anything a middleware needs across invocations must be closed
// over by its factory.
type Middleware struct {
	Name    string
	Handler Handler
}

// NewMiddleware normalizes a raw handler into a named unit. An empty name
// falls back to "anonymous" so log output stays attributable.
func NewMiddleware(name string, h Handler) Middleware {
	if name == "" {
		name = "anonymous"
	}
	return Middleware{Name: name, Handler: h}
}
