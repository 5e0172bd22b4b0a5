package middleware

import (
	"context"
	"testing"

	"github.com/chainkit/chainkit/chain"
)

func TestRequestID(t *testing.T) {
	t.Run("generates an id and echoes it", func(t *testing.T) {
		var seen string
		c := chain.New(RequestID()).
			UseFunc(func(cc *chain.Context, next chain.Next) (chain.Result, error) {
				seen, _ = chain.Get(cc, RequestIDKey)
				return chain.Continue(), next()
			})

		out, err := c.Execute(context.Background(), chain.NewRequest("GET", "/"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen == "" {
			t.Fatal("no request id in state")
		}
		if len(seen) != 32 {
			t.Errorf("id length = %d, want 32 hex chars", len(seen))
		}
		if got := out.Response.Header().Get(RequestIDHeader); got != seen {
			t.Errorf("response header = %q, state = %q", got, seen)
		}
	})

	t.Run("preserves a client-supplied id", func(t *testing.T) {
		c := chain.New(RequestID())
		req := chain.NewRequest("GET", "/", chain.WithHeader(RequestIDHeader, "client-id"))

		out, err := c.Execute(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := out.Response.Header().Get(RequestIDHeader); got != "client-id" {
			t.Errorf("header = %q, want client-id", got)
		}
	})

	t.Run("custom generator", func(t *testing.T) {
		c := chain.New(RequestIDWithGenerator(func() string { return "fixed" }))

		out, err := c.Execute(context.Background(), chain.NewRequest("GET", "/"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, _ := out.State.Get(RequestIDKey.Name()); got != "fixed" {
			t.Errorf("state id = %v, want fixed", got)
		}
	})

	t.Run("ids differ across executions", func(t *testing.T) {
		c := chain.New(RequestID())
		ids := make(map[string]bool)
		for i := 0; i < 10; i++ {
			out, err := c.Execute(context.Background(), chain.NewRequest("GET", "/"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			ids[out.Response.Header().Get(RequestIDHeader)] = true
		}
		if len(ids) != 10 {
			t.Errorf("got %d distinct ids, want 10", len(ids))
		}
	})
}
