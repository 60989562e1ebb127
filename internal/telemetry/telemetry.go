// Package telemetry installs the OpenTelemetry tracer provider behind the
// spans emitted by the download manager and the HTTP client.
package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Options selects how spans leave the process.
type Options struct {
	Service string
	Version string

	// Spans, when set, receives every finished span as indented JSON.
	// Without it spans are sampled but not exported.
	Spans io.Writer
}

// Setup installs a global tracer provider. The returned func flushes
// buffered spans; callers must run it before exiting or they lose them.
func Setup(ctx context.Context, opts Options) (func(context.Context) error, error) {
	if opts.Service == "" {
		opts.Service = "imagegrid"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName(opts.Service),
			semconv.ServiceVersion(opts.Version),
		),
	)
	if err != nil {
		return nil, err
	}

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	if opts.Spans != nil {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(opts.Spans), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exp))
	}

	tp := sdktrace.NewTracerProvider(providerOpts...)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
