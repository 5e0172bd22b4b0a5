package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/chainkit/chainkit/chain"
)

// mockLogger captures log calls for testing.
type mockLogger struct {
	entries []logEntry
}

type logEntry struct {
	level   string
	message string
	fields  []Field
}

func (l *mockLogger) Info(msg string, fields ...Field) {
	l.entries = append(l.entries, logEntry{level: "info", message: msg, fields: fields})
}

func (l *mockLogger) Error(msg string, fields ...Field) {
	l.entries = append(l.entries, logEntry{level: "error", message: msg, fields: fields})
}

func (l *mockLogger) Debug(msg string, fields ...Field) {
	l.entries = append(l.entries, logEntry{level: "debug", message: msg, fields: fields})
}

func (l *mockLogger) Warn(msg string, fields ...Field) {
	l.entries = append(l.entries, logEntry{level: "warn", message: msg, fields: fields})
}

func (l *mockLogger) field(entry int, key string) (any, bool) {
	if entry >= len(l.entries) {
		return nil, false
	}
	for _, f := range l.entries[entry].fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func TestLogging(t *testing.T) {
	t.Run("logs completed executions at info", func(t *testing.T) {
		logger := &mockLogger{}
		c := chain.New(Logging(logger)).
			UseFunc(func(cc *chain.Context, next chain.Next) (chain.Result, error) {
				cc.Response().SetStatus(http.StatusCreated).Text("ok")
				return chain.Done(), nil
			})

		_, err := c.Execute(context.Background(), chain.NewRequest("POST", "/items"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(logger.entries) != 1 {
			t.Fatalf("expected 1 log entry, got %d", len(logger.entries))
		}
		entry := logger.entries[0]
		if entry.level != "info" {
			t.Errorf("level = %q, want info", entry.level)
		}
		if entry.message != "request completed" {
			t.Errorf("message = %q", entry.message)
		}
		if v, ok := logger.field(0, "method"); !ok || v != "POST" {
			t.Errorf("method field = %v ok=%v", v, ok)
		}
		if v, ok := logger.field(0, "status"); !ok || v != http.StatusCreated {
			t.Errorf("status field = %v ok=%v", v, ok)
		}
		if v, ok := logger.field(0, "duration"); ok {
			if _, isDur := v.(time.Duration); !isDur {
				t.Errorf("duration field has type %T", v)
			}
		} else {
			t.Error("missing duration field")
		}
	})

	t.Run("logs handler errors at error level and re-propagates", func(t *testing.T) {
		logger := &mockLogger{}
		boom := errors.New("handler failed")
		c := chain.New(Logging(logger)).
			UseFunc(func(cc *chain.Context, next chain.Next) (chain.Result, error) {
				return chain.Result{}, boom
			})

		_, err := c.Execute(context.Background(), chain.NewRequest("GET", "/items"))
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want %v", err, boom)
		}

		if len(logger.entries) != 1 || logger.entries[0].level != "error" {
			t.Fatalf("entries = %+v, want one error entry", logger.entries)
		}
		if v, ok := logger.field(0, "error"); !ok || v != "handler failed" {
			t.Errorf("error field = %v ok=%v", v, ok)
		}
	})

	t.Run("includes request id when present", func(t *testing.T) {
		logger := &mockLogger{}
		c := chain.New(RequestIDWithGenerator(func() string { return "rid-1" })).
			Use(Logging(logger))

		if _, err := c.Execute(context.Background(), chain.NewRequest("GET", "/")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v, ok := logger.field(0, "request_id"); !ok || v != "rid-1" {
			t.Errorf("request_id field = %v ok=%v", v, ok)
		}
	})
}
