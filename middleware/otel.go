package middleware

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/chainkit/chainkit/chain"
)

const instrumentationName = "github.com/chainkit/chainkit"

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*otelConfig)

type otelConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	serviceName    string
	skipPaths      map[string]bool
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(c *otelConfig) {
		c.meterProvider = mp
	}
}

// WithOTelServiceName sets the service name for telemetry.
func WithOTelServiceName(name string) OTelOption {
	return func(c *otelConfig) {
		c.serviceName = name
	}
}

// WithOTelSkipPaths specifies request paths to skip for tracing.
func WithOTelSkipPaths(paths ...string) OTelOption {
	return func(c *otelConfig) {
		for _, p := range paths {
			c.skipPaths[p] = true
		}
	}
}

// OTel returns middleware that adds OpenTelemetry tracing and metrics.
// It creates a span per execution and records request counts and latency.
func OTel(opts ...OTelOption) chain.Middleware {
	cfg := &otelConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		serviceName:    "chainkit",
		skipPaths:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tracer := cfg.tracerProvider.Tracer(
		instrumentationName,
		trace.WithInstrumentationVersion("1.0.0"),
	)

	meter := cfg.meterProvider.Meter(
		instrumentationName,
		metric.WithInstrumentationVersion("1.0.0"),
	)

	requestCounter, _ := meter.Int64Counter(
		"chainkit.requests",
		metric.WithDescription("Total number of chain executions"),
		metric.WithUnit("{request}"),
	)

	requestDuration, _ := meter.Float64Histogram(
		"chainkit.request.duration",
		metric.WithDescription("Duration of chain executions"),
		metric.WithUnit("ms"),
	)

	errorCounter, _ := meter.Int64Counter(
		"chainkit.errors",
		metric.WithDescription("Total number of handler errors"),
		metric.WithUnit("{error}"),
	)

	return chain.NewMiddleware("otel", func(c *chain.Context, next chain.Next) (chain.Result, error) {
		if cfg.skipPaths[c.Request().Path()] {
			return chain.Continue(), next()
		}

		spanName := c.Request().Method() + " " + c.Request().Path()
		ctx, span := tracer.Start(c.Context(), spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request().Method()),
				attribute.String("url.path", c.Request().Path()),
				attribute.String("service.name", cfg.serviceName),
			),
		)
		defer span.End()
		c.WithContext(ctx)

		if id, ok := chain.Get(c, RequestIDKey); ok {
			span.SetAttributes(attribute.String("http.request_id", id))
		}

		startTime := time.Now()
		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", c.Request().Method()),
			attribute.String("service.name", cfg.serviceName),
		}
		requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

		err := next()

		duration := float64(time.Since(startTime).Milliseconds())
		requestDuration.Record(ctx, duration, metric.WithAttributes(attrs...))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			errorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
			return chain.Result{}, err
		}

		status := c.Response().Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, "")
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return chain.Continue(), nil
	})
}
