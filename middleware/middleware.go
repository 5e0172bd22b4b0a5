package middleware

import (
	"time"

	"github.com/chainkit/chainkit/chain"
)

// DefaultStack returns the recommended production middleware stack.
// This includes panic recovery, request ID injection, and logging.
func DefaultStack(logger Logger) []chain.Middleware {
	return []chain.Middleware{
		Recover(),
		RequestID(),
		Logging(logger),
	}
}

// DefaultStackWithTimeout returns the default stack with a timeout middleware.
func DefaultStackWithTimeout(logger Logger, timeout time.Duration) []chain.Middleware {
	return []chain.Middleware{
		Recover(),
		RequestID(),
		Timeout(timeout),
		Logging(logger),
	}
}
