// Package observability configures OpenTelemetry tracing for the server. The
// router (otelgin), the services (one span per operation) and the GORM
// plugin all create spans through the global provider installed here.
package observability

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"google.golang.org/grpc/credentials"

	"github.com/tbourn/go-video-backend/internal/config"
)

// serviceNamespace groups this service's spans with the rest of the platform.
const serviceNamespace = "video"

// Shutdown flushes pending spans and stops the exporter.
type Shutdown func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Test seams.
var (
	newOTLPClient = otlptracegrpc.NewClient

	newOTLPExporterFn = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return otlptrace.New(ctx, client)
	}

	newServiceResourceFn = func(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
		return resource.New(
			ctx,
			resource.WithAttributes(
				semconv.ServiceName(serviceName),
				semconv.ServiceVersion(version),
				semconv.ServiceNamespace(serviceNamespace),
			),
		)
	}
)

// Setup installs a batching OTLP/gRPC tracer provider and W3C propagators.
// With tracing disabled it changes nothing and returns a no-op Shutdown.
// On error the global provider and propagator are left untouched.
func Setup(ctx context.Context, cfg config.OTELConfig, version string) (Shutdown, error) {
	if !cfg.Enabled {
		return noopShutdown, nil
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}

	exp, err := newOTLPExporterFn(ctx, newOTLPClient(opts...))
	if err != nil {
		return nil, err
	}
	res, err := newServiceResourceFn(ctx, cfg.ServiceName, version)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(samplerFor(cfg.SampleRatio)),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		log.Warn().Err(err).Str("component", "otel").Msg("telemetry export error")
	}))

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Bool("insecure", cfg.Insecure).
		Float64("sample_ratio", cfg.SampleRatio).
		Msg("tracing enabled")

	return tp.Shutdown, nil
}

// samplerFor honors the parent's decision and samples root spans by ratio.
func samplerFor(ratio float64) sdktrace.Sampler {
	var root sdktrace.Sampler
	switch {
	case ratio >= 1:
		root = sdktrace.AlwaysSample()
	case ratio <= 0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(ratio)
	}
	return sdktrace.ParentBased(root)
}
