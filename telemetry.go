package routeplanner

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/pdrpinto/routeplanner"

// searchInstruments are the metrics recorded for every finished search.
type searchInstruments struct {
	total     metric.Int64Counter
	latency   metric.Float64Histogram
	expansion metric.Int64Histogram
}

// instrumentCache maps a metric.MeterProvider to its *searchInstruments.
var instrumentCache sync.Map

func meterProvider(options Options) metric.MeterProvider {
	if options.MeterProvider != nil {
		return options.MeterProvider
	}
	return otel.GetMeterProvider()
}

func tracerProvider(options Options) trace.TracerProvider {
	if options.TracerProvider != nil {
		return options.TracerProvider
	}
	return otel.GetTracerProvider()
}

// instrumentsFor creates the instruments of provider on first use. Safe to call from any
// goroutine.
func instrumentsFor(provider metric.MeterProvider) (*searchInstruments, error) {
	if cached, ok := instrumentCache.Load(provider); ok {
		return cached.(*searchInstruments), nil
	}

	meter := provider.Meter(instrumentationName)
	var (
		instruments searchInstruments
		err         error
	)
	instruments.total, err = meter.Int64Counter(
		"routeplanner_search_total",
		metric.WithDescription("Total number of route searches by outcome"),
	)
	if err != nil {
		return nil, err
	}

	instruments.latency, err = meter.Float64Histogram(
		"routeplanner_search_duration_seconds",
		metric.WithDescription("Duration of route searches"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	instruments.expansion, err = meter.Int64Histogram(
		"routeplanner_search_expanded_nodes",
		metric.WithDescription("Nodes popped from the frontier per search"),
	)
	if err != nil {
		return nil, err
	}

	actual, _ := instrumentCache.LoadOrStore(provider, &instruments)
	return actual.(*searchInstruments), nil
}

func recordSearchMetrics(ctx context.Context, options Options, duration time.Duration, expanded int, outcome string) {
	instruments, err := instrumentsFor(meterProvider(options))
	if err != nil {
		options.Logger.Debug("search metrics unavailable", "error", err)
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	instruments.total.Add(ctx, 1, attrs)
	instruments.latency.Record(ctx, duration.Seconds(), attrs)
	instruments.expansion.Record(ctx, int64(expanded), attrs)
}

func startSearchSpan(ctx context.Context, options Options) (context.Context, trace.Span) {
	return tracerProvider(options).Tracer(instrumentationName).Start(ctx, "routeplanner.Search",
		trace.WithAttributes(attribute.String("search.policy", options.Policy.String())),
	)
}

func setSearchSpanResult(span trace.Span, expanded int, outcome string) {
	span.SetAttributes(
		attribute.Int("search.expanded_nodes", expanded),
		attribute.String("search.outcome", outcome),
	)
}
