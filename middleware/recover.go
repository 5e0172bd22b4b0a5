package middleware

import (
	"fmt"
	"net/http"

	"github.com/chainkit/chainkit/chain"
)

// PanicHandler converts a recovered panic value into a completion signal for
// the execution. It may write to the response builder.
type PanicHandler func(c *chain.Context, panicVal any) (chain.Result, error)

// Recover returns middleware that catches panics from downstream handlers and
// short-circuits with a 500 response.
func Recover() chain.Middleware {
	return RecoverWithHandler(defaultPanicHandler)
}

// RecoverWithHandler returns middleware that catches panics and calls the
// provided handler. This allows custom panic handling such as logging or
// alerting.
func RecoverWithHandler(handler PanicHandler) chain.Middleware {
	return chain.NewMiddleware("recover", func(c *chain.Context, next chain.Next) (res chain.Result, err error) {
		defer func() {
			if r := recover(); r != nil {
				res, err = handler(c, r)
			}
		}()
		return chain.Continue(), next()
	})
}

func defaultPanicHandler(c *chain.Context, panicVal any) (chain.Result, error) {
	var msg string
	switch v := panicVal.(type) {
	case error:
		msg = fmt.Sprintf("panic: %v", v)
	case string:
		msg = fmt.Sprintf("panic: %s", v)
	default:
		msg = fmt.Sprintf("panic: %v", v)
	}
	c.Response().
		SetStatus(http.StatusInternalServerError).
		JSON(map[string]string{"error": msg})
	return chain.Done(), nil
}
