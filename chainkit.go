// Package chainkit provides a composable middleware chain runtime for
// request processing pipelines.
//
// chainkit models a pipeline as an ordered sequence of named middleware
// units. Each unit receives the execution context and an explicit
// continuation, and decides whether to invoke the rest of the chain or to
// short-circuit with a finished response:
//
//	ch := chainkit.New().
//	    Use(middleware.Recover()).
//	    Use(middleware.RequestID()).
//	    Use(middleware.Logging(logger)).
//	    Use(middleware.Auth(middleware.BearerTokenAuthenticator(verify)))
//
//	out, err := ch.Execute(ctx, chainkit.NewRequest("GET", "/api/items"))
//
// Chains are immutable; Use returns a new chain, so a shared base can be
// extended per route without copying middleware by hand. Adapters under
// adapter/ mount a chain in front of net/http, fasthttp, and gin handlers.
package chainkit

import (
	"context"

	"github.com/chainkit/chainkit/chain"
	"github.com/chainkit/chainkit/middleware"
)

// Re-export core types for convenience.

// Chain is an immutable ordered sequence of middleware units.
type Chain = chain.Chain

// Context carries the request, response builder, and shared state through
// one execution.
type Context = chain.Context

// Request is the canonical immutable request.
type Request = chain.Request

// RequestOption configures a Request at construction.
type RequestOption = chain.RequestOption

// ResponseBuilder accumulates the canonical response.
type ResponseBuilder = chain.ResponseBuilder

// Response is an immutable snapshot of a built response.
type Response = chain.Response

// State is the shared key/value bag visible to every unit in an execution.
type State = chain.State

// Outcome is the result of executing a chain.
type Outcome = chain.Outcome

// Middleware is a named unit in a chain.
type Middleware = chain.Middleware

// Handler is the function a middleware unit runs.
type Handler = chain.Handler

// Next is the continuation handed to each unit.
type Next = chain.Next

// Result reports whether a unit finished the pipeline.
type Result = chain.Result

// ExecuteOption configures a single Execute call.
type ExecuteOption = chain.ExecuteOption

// Logger is the structured logging interface used by the bundled
// middleware.
type Logger = middleware.Logger

// LogField is one key/value pair attached to a log line.
type LogField = middleware.Field

// Construction re-exports.
var (
	New           = chain.New
	NewRequest    = chain.NewRequest
	NewMiddleware = chain.NewMiddleware
	Done          = chain.Done
	Continue      = chain.Continue
)

// Request option re-exports.
var (
	WithHeader     = chain.WithHeader
	WithHeaders    = chain.WithHeaders
	WithBody       = chain.WithBody
	WithBodyBytes  = chain.WithBodyBytes
	WithRemoteAddr = chain.WithRemoteAddr
)

// Execute option re-exports.
var (
	WithInitialState = chain.WithInitialState
	WithClientIP     = chain.WithClientIP
)

// F constructs a log field.
var F = middleware.F

// Production returns a chain seeded with the recommended defaults: panic
// recovery, request ID assignment, and structured logging. Append
// application units with Use.
func Production(logger Logger, units ...Middleware) *Chain {
	return chain.New(middleware.DefaultStack(logger)...).Use(units...)
}

// Execute runs the chain against the request. It is shorthand for
// ch.Execute with the same arguments.
func Execute(ctx context.Context, ch *Chain, req *Request, opts ...ExecuteOption) (*Outcome, error) {
	return ch.Execute(ctx, req, opts...)
}
