package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/chainkit/chainkit/chain"
)

// RequestIDKey is the typed state key under which the request ID is stored.
var RequestIDKey = chain.NewKey[string]("request_id")

// RequestIDHeader is the header carrying the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID returns middleware that ensures every execution carries a unique
// request ID. An ID supplied by the client in X-Request-ID is preserved;
// otherwise one is generated. The ID is stored in state and echoed on the
// response.
func RequestID() chain.Middleware {
	return RequestIDWithGenerator(generateID)
}

// RequestIDWithGenerator returns middleware that uses a custom ID generator.
func RequestIDWithGenerator(generator func() string) chain.Middleware {
	return chain.NewMiddleware("requestid", func(c *chain.Context, next chain.Next) (chain.Result, error) {
		id := c.Request().Header().Get(RequestIDHeader)
		if id == "" {
			id = generator()
		}
		chain.Set(c, RequestIDKey, id)
		c.Response().SetHeader(RequestIDHeader, id)
		return chain.Continue(), next()
	})
}

// generateID generates a random request ID.
// Uses crypto/rand for better uniqueness than time-based IDs.
func generateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
