package middleware

import (
	"log/slog"
	"time"

	"github.com/chainkit/chainkit/chain"
)

// Logger is the interface for structured logging.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logging returns middleware that logs each execution. Completed executions
// are logged at info level; executions aborted by a handler error are logged
// at error level before the error continues to propagate.
func Logging(logger Logger) chain.Middleware {
	return chain.NewMiddleware("logging", func(c *chain.Context, next chain.Next) (chain.Result, error) {
		start := time.Now()

		err := next()

		duration := time.Since(start)
		fields := []Field{
			F("method", c.Request().Method()),
			F("path", c.Request().Path()),
			F("duration", duration),
		}
		if id, ok := chain.Get(c, RequestIDKey); ok {
			fields = append(fields, F("request_id", id))
		}

		if err != nil {
			fields = append(fields, F("error", err.Error()))
			logger.Error("request failed", fields...)
			return chain.Result{}, err
		}

		fields = append(fields, F("status", c.Response().Status()))
		logger.Info("request completed", fields...)
		return chain.Continue(), nil
	})
}

// NopLogger is a logger that discards all log entries.
type NopLogger struct{}

func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Warn(msg string, fields ...Field)  {}

// NewSlogLogger bridges a log/slog logger into the Logger interface.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l: l}
}

type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) args(fields []Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}

func (s slogLogger) Info(msg string, fields ...Field)  { s.l.Info(msg, s.args(fields)...) }
func (s slogLogger) Error(msg string, fields ...Field) { s.l.Error(msg, s.args(fields)...) }
func (s slogLogger) Debug(msg string, fields ...Field) { s.l.Debug(msg, s.args(fields)...) }
func (s slogLogger) Warn(msg string, fields ...Field)  { s.l.Warn(msg, s.args(fields)...) }
