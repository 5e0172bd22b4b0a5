package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/chainkit/chainkit/chain"
)

func TestCORS(t *testing.T) {
	t.Run("preflight short-circuits with 204", func(t *testing.T) {
		ran := false
		c := chain.New(CORS(DefaultCORSConfig())).
			UseFunc(func(cc *chain.Context, next chain.Next) (chain.Result, error) {
				ran = true
				return chain.Continue(), next()
			})

		req := chain.NewRequest("OPTIONS", "/items",
			chain.WithHeader("Origin", "https://app.example.com"))
		out, err := c.Execute(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !out.Done {
			t.Error("preflight did not short-circuit")
		}
		if out.Response.Status() != http.StatusNoContent {
			t.Errorf("status = %d, want 204", out.Response.Status())
		}
		if out.Response.Header().Get("Access-Control-Allow-Methods") == "" {
			t.Error("missing Access-Control-Allow-Methods")
		}
		if ran {
			t.Error("downstream handler ran on preflight")
		}
	})

	t.Run("simple request is annotated and continues", func(t *testing.T) {
		c := chain.New(CORS(DefaultCORSConfig())).
			UseFunc(func(cc *chain.Context, next chain.Next) (chain.Result, error) {
				cc.Response().Text("data")
				return chain.Continue(), next()
			})

		req := chain.NewRequest("GET", "/items",
			chain.WithHeader("Origin", "https://app.example.com"))
		out, err := c.Execute(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Done {
			t.Error("simple request short-circuited")
		}
		if got := out.Response.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, want *", got)
		}
		if string(out.Response.Body()) != "data" {
			t.Errorf("body = %q", out.Response.Body())
		}
	})

	t.Run("disallowed origin gets no CORS headers", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://allowed.example.com"}
		c := chain.New(CORS(cfg))

		req := chain.NewRequest("GET", "/items",
			chain.WithHeader("Origin", "https://evil.example.com"))
		out, err := c.Execute(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Response.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("CORS headers set for disallowed origin")
		}
	})

	t.Run("exact origin echo with credentials", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://app.example.com"}
		cfg.AllowCredentials = true
		c := chain.New(CORS(cfg))

		req := chain.NewRequest("GET", "/items",
			chain.WithHeader("Origin", "https://app.example.com"))
		out, _ := c.Execute(context.Background(), req)
		if got := out.Response.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if out.Response.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("missing Allow-Credentials")
		}
	})

	t.Run("expose headers on actual requests", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.ExposeHeaders = []string{"X-Request-ID"}
		c := chain.New(CORS(cfg))

		req := chain.NewRequest("GET", "/items",
			chain.WithHeader("Origin", "https://app.example.com"))
		out, _ := c.Execute(context.Background(), req)
		if got := out.Response.Header().Get("Access-Control-Expose-Headers"); got != "X-Request-ID" {
			t.Errorf("Expose-Headers = %q", got)
		}
	})
}
