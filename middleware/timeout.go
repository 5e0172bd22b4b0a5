package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/chainkit/chainkit/chain"
)

// Timeout returns middleware that enforces a deadline on the execution's
// context. Downstream handlers observe the deadline through
// Context.Context(); when the downstream aborts with DeadlineExceeded, the
// middleware converts it to a 504 short-circuit instead of propagating the
// error.
func Timeout(d time.Duration) chain.Middleware {
	return chain.NewMiddleware("timeout", func(c *chain.Context, next chain.Next) (chain.Result, error) {
		ctx, cancel := context.WithTimeout(c.Context(), d)
		defer cancel()
		c.WithContext(ctx)

		err := next()
		if err != nil && errors.Is(err, context.DeadlineExceeded) {
			c.Response().
				SetStatus(http.StatusGatewayTimeout).
				JSON(map[string]string{"error": "request timed out"})
			return chain.Done(), nil
		}
		return chain.Continue(), err
	})
}
