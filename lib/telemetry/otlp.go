package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// exporterConfig describes one OTLP signal sink. Protocol is "grpc" or
// "http"; anything else falls back to http, which is what most hosted
// collectors speak.
type exporterConfig struct {
	Protocol string            `json:"protocol"`
	Endpoint string            `json:"endpoint"`
	Headers  map[string]string `json:"headers"`
}

type config struct {
	Traces  exporterConfig `json:"traces"`
	Metrics exporterConfig `json:"metrics"`
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, c config) (*trace.TracerProvider, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	var exporter trace.SpanExporter
	var err error
	switch c.Traces.Protocol {
	case "grpc":
		exporter, err = otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(c.Traces.Endpoint),
			otlptracegrpc.WithHeaders(c.Traces.Headers),
		)
	default:
		exporter, err = otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(c.Traces.Endpoint),
			otlptracehttp.WithHeaders(c.Traces.Headers),
		)
	}
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "exporting traces", "protocol", c.Traces.Protocol, "endpoint", c.Traces.Endpoint)

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	), nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, c config) (*metric.MeterProvider, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	var exporter metric.Exporter
	var err error
	switch c.Metrics.Protocol {
	case "grpc":
		exporter, err = otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(c.Metrics.Endpoint),
			otlpmetricgrpc.WithHeaders(c.Metrics.Headers),
		)
	default:
		exporter, err = otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(c.Metrics.Endpoint),
			otlpmetrichttp.WithHeaders(c.Metrics.Headers),
		)
	}
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "exporting metrics", "protocol", c.Metrics.Protocol, "endpoint", c.Metrics.Endpoint)

	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(time.Second*5))),
		metric.WithResource(r),
	), nil
}
