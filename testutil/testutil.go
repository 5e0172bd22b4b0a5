// Package testutil provides testing utilities for chainkit pipelines.
//
// This package helps developers write tests for their middleware chains by
// providing request builders, execution helpers, assertion helpers, and a
// recording logger.
//
// Example usage:
//
//	func TestMyChain(t *testing.T) {
//	    ch := chain.New().Use(middleware.RequestID())
//
//	    out := testutil.MustExecute(t, ch, testutil.GetRequest("/items"))
//	    testutil.AssertHeader(t, out, "X-Request-ID", "")
//	}
package testutil

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/chainkit/chainkit/chain"
	"github.com/chainkit/chainkit/middleware"
)

// GetRequest builds a GET request for the given path.
func GetRequest(path string, opts ...chain.RequestOption) *chain.Request {
	return chain.NewRequest("GET", path, opts...)
}

// PostJSON builds a POST request whose body is the JSON encoding of v.
// It fails the test if v cannot be marshaled.
func PostJSON(t testing.TB, path string, v any) *chain.Request {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("testutil: marshal body: %v", err)
	}
	return chain.NewRequest("POST", path,
		chain.WithHeader("Content-Type", "application/json"),
		chain.WithBodyBytes(data),
	)
}

// PostText builds a POST request with a plain text body.
func PostText(path, body string) *chain.Request {
	return chain.NewRequest("POST", path,
		chain.WithHeader("Content-Type", "text/plain"),
		chain.WithBody(strings.NewReader(body)),
	)
}

// MustExecute runs the chain and fails the test on error.
func MustExecute(t testing.TB, ch *chain.Chain, req *chain.Request, opts ...chain.ExecuteOption) *chain.Outcome {
	t.Helper()
	out, err := ch.Execute(context.Background(), req, opts...)
	if err != nil {
		t.Fatalf("testutil: chain execution failed: %v", err)
	}
	return out
}

// AssertStatus fails the test if the outcome's response status differs.
func AssertStatus(t testing.TB, out *chain.Outcome, want int) {
	t.Helper()
	if got := out.Response.Status(); got != want {
		t.Errorf("status = %d, want %d", got, want)
	}
}

// AssertHeader fails the test if the named header does not match. An empty
// want asserts only that the header is present.
func AssertHeader(t testing.TB, out *chain.Outcome, name, want string) {
	t.Helper()
	got := out.Response.Header().Get(name)
	if want == "" {
		if got == "" {
			t.Errorf("header %q missing", name)
		}
		return
	}
	if got != want {
		t.Errorf("header %q = %q, want %q", name, got, want)
	}
}

// AssertBody fails the test if the response body differs.
func AssertBody(t testing.TB, out *chain.Outcome, want string) {
	t.Helper()
	if got := string(out.Response.Body()); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

// AssertBodyContains fails the test if the response body does not contain
// the substring.
func AssertBodyContains(t testing.TB, out *chain.Outcome, substr string) {
	t.Helper()
	if got := string(out.Response.Body()); !strings.Contains(got, substr) {
		t.Errorf("body %q does not contain %q", got, substr)
	}
}

// AssertDone fails the test if the outcome's short-circuit flag differs.
func AssertDone(t testing.TB, out *chain.Outcome, want bool) {
	t.Helper()
	if out.Done != want {
		t.Errorf("done = %v, want %v", out.Done, want)
	}
}

// Recorder tracks the order in which units enter and unwind. Register its
// units around the code under test to verify execution order.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Unit returns a middleware that records "enter:<name>" before calling the
// continuation and "exit:<name>" after it returns.
func (r *Recorder) Unit(name string) chain.Middleware {
	return chain.NewMiddleware(name, func(c *chain.Context, next chain.Next) (chain.Result, error) {
		r.record("enter:" + name)
		err := next()
		r.record("exit:" + name)
		return chain.Continue(), err
	})
}

// Terminal returns a middleware that records its invocation and
// short-circuits with the given status.
func (r *Recorder) Terminal(name string, status int) chain.Middleware {
	return chain.NewMiddleware(name, func(c *chain.Context, next chain.Next) (chain.Result, error) {
		r.record("terminal:" + name)
		c.Response().SetStatus(status)
		return chain.Done(), nil
	})
}

// Events returns the recorded events in order.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// LogEntry is one captured log line.
type LogEntry struct {
	Level  string
	Msg    string
	Fields []middleware.Field
}

// RecordingLogger captures log entries for assertions. Safe for concurrent
// use.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (l *RecordingLogger) Info(msg string, fields ...middleware.Field) {
	l.append("info", msg, fields)
}

func (l *RecordingLogger) Error(msg string, fields ...middleware.Field) {
	l.append("error", msg, fields)
}

func (l *RecordingLogger) Debug(msg string, fields ...middleware.Field) {
	l.append("debug", msg, fields)
}

func (l *RecordingLogger) Warn(msg string, fields ...middleware.Field) {
	l.append("warn", msg, fields)
}

func (l *RecordingLogger) append(level, msg string, fields []middleware.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Fields: fields})
}

// Entries returns the captured entries in order.
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Field returns the value of the named field on the entry, or nil.
func (e LogEntry) Field(key string) any {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}
