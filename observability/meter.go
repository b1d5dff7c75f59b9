package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/kbukum/pipelinekit/logger"
)

// initMeter installs an OTLP HTTP meter provider as the global provider.
func initMeter(ctx context.Context, cfg *Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns the package meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics holds the instruments recorded by the validation service.
type Metrics struct {
	requestTotal       metric.Int64Counter
	requestDuration    metric.Float64Histogram
	validationTotal    metric.Int64Counter
	validationProblems metric.Int64Counter
	validationDuration metric.Float64Histogram
	migrationTotal     metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestTotal, err := meter.Int64Counter("request.total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("request.duration",
		metric.WithDescription("Duration of requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request.duration histogram: %w", err)
	}

	validationTotal, err := meter.Int64Counter("validation.total",
		metric.WithDescription("Total number of validated pipeline documents"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating validation.total counter: %w", err)
	}

	validationProblems, err := meter.Int64Counter("validation.problems",
		metric.WithDescription("Problems found, by problem type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating validation.problems counter: %w", err)
	}

	validationDuration, err := meter.Float64Histogram("validation.duration",
		metric.WithDescription("Duration of document validation in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating validation.duration histogram: %w", err)
	}

	migrationTotal, err := meter.Int64Counter("migration.total",
		metric.WithDescription("Total number of migrated pipeline documents"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating migration.total counter: %w", err)
	}

	return &Metrics{
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		validationTotal:    validationTotal,
		validationProblems: validationProblems,
		validationDuration: validationDuration,
		migrationTotal:     migrationTotal,
	}, nil
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("method", method),
		attribute.Int("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("method", method),
	))
}

// RecordValidation records one validation run. problemTypes holds the type
// of every problem found.
func (m *Metrics) RecordValidation(ctx context.Context, problemTypes []string, duration time.Duration) {
	if m == nil {
		return
	}
	status := "clean"
	if len(problemTypes) > 0 {
		status = "problems"
	}
	m.validationTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.validationDuration.Record(ctx, duration.Seconds())

	counts := map[string]int64{}
	for _, t := range problemTypes {
		counts[t]++
	}
	for t, n := range counts {
		m.validationProblems.Add(ctx, n, metric.WithAttributes(attribute.String("type", t)))
	}
}

// RecordMigration records a document migrated between two versions.
func (m *Metrics) RecordMigration(ctx context.Context, from, to int) {
	if m == nil {
		return
	}
	m.migrationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("from_version", from),
		attribute.Int("to_version", to),
	))
}
