// Package chain implements the middleware composition core: canonical
// request/response types, a per-execution Context, and an ordered Chain of
// named middleware units executed through nested continuations.
//
// # Basic Usage
//
// Build a chain and execute it against a canonical request:
//
//	c := chain.New(
//	    chain.NewMiddleware("timer", func(ctx *chain.Context, next chain.Next) (chain.Result, error) {
//	        start := time.Now()
//	        if err := next(); err != nil {
//	            return chain.Result{}, err
//	        }
//	        ctx.Response().SetHeader("X-Elapsed", time.Since(start).String())
//	        return chain.Result{}, nil
//	    }),
//	)
//	out, err := c.Execute(context.Background(), req)
//
// # Control Flow
//
// Each handler receives the Context and a Next continuation. Calling next
// yields to the remaining suffix of the chain; returning Result{Done: true}
// without calling next short-circuits, and nothing registered later runs.
// Code after next returns is the unwind phase and executes in reverse
// registration order.
//
// # Concurrency
//
// A Chain is immutable once built: Use returns a new Chain and never mutates
// the receiver, so a chain may be shared across concurrently running
// executions. Each Execute call allocates a fresh Context; no state leaks
// between executions.
package chain
