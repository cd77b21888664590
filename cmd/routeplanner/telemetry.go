package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/pdrpinto/routeplanner"
	"github.com/pdrpinto/routeplanner/config"
)

const serviceName = "routeplanner"

// telemetry owns the OpenTelemetry providers handed to every search the server runs.
// A nil provider leaves that signal on the otel globals.
type telemetry struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

// setupTelemetry builds the providers selected by cfg. Search metrics are exported as
// Prometheus collectors on registerer; spans are written to traceOut.
func setupTelemetry(cfg config.TelemetryConfig, registerer prometheus.Registerer, traceOut io.Writer) (*telemetry, error) {
	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", serviceName),
	)
	t := &telemetry{}

	if cfg.Metrics {
		exporter, err := promexporter.New(promexporter.WithRegisterer(registerer))
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		t.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
	}

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(traceOut))
		if err != nil {
			return nil, fmt.Errorf("create trace exporter: %w", err)
		}
		t.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
	case "none", "":
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.TraceExporter)
	}
	return t, nil
}

// options returns the planner options that route searches through t.
func (t *telemetry) options() []routeplanner.Option {
	var opts []routeplanner.Option
	if t.meterProvider != nil {
		opts = append(opts, routeplanner.WithMeterProvider(t.meterProvider))
	}
	if t.tracerProvider != nil {
		opts = append(opts, routeplanner.WithTracerProvider(t.tracerProvider))
	}
	return opts
}

// shutdown flushes pending spans and stops both providers.
func (t *telemetry) shutdown(ctx context.Context) error {
	var errs []error
	if t.tracerProvider != nil {
		errs = append(errs, t.tracerProvider.Shutdown(ctx))
	}
	if t.meterProvider != nil {
		errs = append(errs, t.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
