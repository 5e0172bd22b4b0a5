package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/chainkit/chainkit/chain"
)

func TestTimeout(t *testing.T) {
	t.Run("fast handlers are unaffected", func(t *testing.T) {
		c := chain.New(Timeout(time.Second)).
			UseFunc(func(cc *chain.Context, next chain.Next) (chain.Result, error) {
				cc.Response().Text("quick")
				return chain.Continue(), next()
			})

		out, err := c.Execute(context.Background(), chain.NewRequest("GET", "/"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Done {
			t.Error("Done = true, want false")
		}
		if string(out.Response.Body()) != "quick" {
			t.Errorf("body = %q", out.Response.Body())
		}
	})

	t.Run("deadline is visible downstream", func(t *testing.T) {
		var hadDeadline bool
		c := chain.New(Timeout(time.Minute)).
			UseFunc(func(cc *chain.Context, next chain.Next) (chain.Result, error) {
				_, hadDeadline = cc.Context().Deadline()
				return chain.Continue(), next()
			})

		if _, err := c.Execute(context.Background(), chain.NewRequest("GET", "/")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !hadDeadline {
			t.Error("downstream handler saw no deadline")
		}
	})

	t.Run("deadline exceeded becomes a 504 short-circuit", func(t *testing.T) {
		c := chain.New(Timeout(10 * time.Millisecond)).
			UseFunc(func(cc *chain.Context, next chain.Next) (chain.Result, error) {
				select {
				case <-cc.Context().Done():
					return chain.Result{}, cc.Context().Err()
				case <-time.After(time.Second):
					return chain.Continue(), nil
				}
			})

		out, err := c.Execute(context.Background(), chain.NewRequest("GET", "/"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !out.Done {
			t.Error("Done = false, want true")
		}
		if out.Response.Status() != http.StatusGatewayTimeout {
			t.Errorf("status = %d, want 504", out.Response.Status())
		}
	})
}
