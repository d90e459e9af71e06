// Package tracing provides OpenTelemetry tracing setup for a11yscan.
//
// The audit engine opens one span per rule run through the global tracer
// provider. Without Setup, that provider is a no-op and spans cost nothing.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// ShutdownTimeout bounds how long Shutdown waits for pending spans.
const ShutdownTimeout = 10 * time.Second

// ErrNoEndpoint is returned by Setup when no OTLP endpoint is configured.
var ErrNoEndpoint = errors.New("no OTLP endpoint configured")

// Config holds configuration for tracing setup.
type Config struct {
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string

	// ServiceVersion is reported as the service.version resource attribute.
	ServiceVersion string

	// OTLPEndpoint is the host:port of an OTLP/HTTP collector, for example
	// "127.0.0.1:4318". The exporter adds the path.
	OTLPEndpoint string

	// Insecure disables TLS to the collector.
	Insecure bool

	// SampleRatio is the fraction of traces sampled, between 0 and 1.
	SampleRatio float64
}

// DefaultConfig returns a configuration that samples every trace.
func DefaultConfig(serviceName, version string) Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		SampleRatio:    1.0,
	}
}

// Setup initializes OpenTelemetry tracing with an OTLP/HTTP exporter and
// installs the provider globally. The returned function flushes and stops
// the provider.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (func(context.Context) error, error) {
	if cfg.OTLPEndpoint == "" {
		return nil, ErrNoEndpoint
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	return install(ctx, cfg, sdktrace.WithBatcher(exporter), logger)
}

// install builds a tracer provider around the given span processor option
// and installs it globally.
func install(ctx context.Context, cfg Config, processor sdktrace.TracerProviderOption, logger *slog.Logger) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logger.Debug("tracing enabled",
		"service", cfg.ServiceName,
		"endpoint", cfg.OTLPEndpoint,
		"sampleRatio", cfg.SampleRatio,
	)

	return tp.Shutdown, nil
}

// Shutdown calls shutdown with ShutdownTimeout and logs a failure.
// A nil shutdown is a no-op.
func Shutdown(shutdown func(context.Context) error, logger *slog.Logger) error {
	if shutdown == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := shutdown(ctx); err != nil {
		logger.Error("failed to shut down tracing", "error", err)
		return err
	}
	return nil
}
