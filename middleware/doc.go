// Package middleware provides the bundled middleware suite for chainkit
// chains.
//
// Each constructor returns a chain.Middleware that follows the continuation
// contract: pre-processing before next, short-circuiting by returning a Done
// result without calling next, and unwind work after next returns.
//
// # Basic Usage
//
//	c := chain.New(middleware.DefaultStack(logger)...).
//	    Use(middleware.CORS(middleware.DefaultCORSConfig())).
//	    Use(middleware.Auth(middleware.BearerTokenAuthenticator(validate)))
//
// # Available Middleware
//
//   - Recover: catches panics and short-circuits with a 500 response
//   - RequestID: injects a unique request ID into state and response headers
//   - Logging: logs method, path, status and timing
//   - Timeout: enforces a deadline on the execution's context
//   - SizeLimit: rejects oversized request bodies with 413
//   - RateLimit: token-bucket limiting keyed by client IP, 429 on excess
//   - Auth: pluggable authenticators (bearer, API key, HS256 JWT), 401 on failure
//   - CORS: preflight handling and response annotation
//   - Cache: in-memory caching of GET responses
//   - OTel: OpenTelemetry spans and metrics per execution
//
// # Custom Middleware
//
// Implement custom middleware with chain.NewMiddleware:
//
//	func Tenant(header string) chain.Middleware {
//	    return chain.NewMiddleware("tenant", func(c *chain.Context, next chain.Next) (chain.Result, error) {
//	        c.State().Set("tenant", c.Request().Header().Get(header))
//	        return chain.Continue(), next()
//	    })
//	}
package middleware
