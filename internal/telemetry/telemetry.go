// Package telemetry installs the OpenTelemetry tracer provider. Spans are
// created throughout chefbot with otel.Tracer; without Setup they go to the
// global no-op provider.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DefaultServiceName is reported when Config.ServiceName is empty.
const DefaultServiceName = "chefbot"

// Config configures trace export.
type Config struct {
	// OTLPEndpoint is the host:port of an OTLP/HTTP collector. Empty
	// disables export.
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	ServiceName string `yaml:"service_name"`

	// SampleRate is the fraction of root spans kept. 0 means 1.
	SampleRate float64 `yaml:"sample_rate"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`
}

// Enabled reports whether trace export is configured.
func (c Config) Enabled() bool { return c.OTLPEndpoint != "" }

// Validate checks the configuration without contacting the collector.
func (c Config) Validate() error {
	var errs []error
	if c.SampleRate < 0 || c.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("telemetry: sample_rate must be within [0, 1], got %g", c.SampleRate))
	}
	if c.OTLPEndpoint != "" {
		if _, err := url.Parse("http://" + c.OTLPEndpoint); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: invalid otlp_endpoint %q: %w", c.OTLPEndpoint, err))
		}
	}
	return errors.Join(errs...)
}

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(context.Context) error

// Setup installs a global tracer provider exporting to cfg.OTLPEndpoint.
// When export is disabled it changes nothing and returns a no-op shutdown.
func Setup(ctx context.Context, cfg Config, version string) (ShutdownFunc, error) {
	if !cfg.Enabled() {
		return func(context.Context) error { return nil }, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	name := cfg.ServiceName
	if name == "" {
		name = DefaultServiceName
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", name),
		attribute.String("service.version", version),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating resource: %w", err)
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating exporter: %w", err)
	}

	rate := cfg.SampleRate
	if rate == 0 {
		rate = 1
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
