// Package telemetry exports sync metrics to an OpenTelemetry collector.
package telemetry

import (
	"context"
	"fmt"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "flowstate"

// Exporter records one set of measurements per finished sync.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	syncsTotal    metric.Int64Counter
	durationHist  metric.Float64Histogram
	fragmentation metric.Int64Histogram
	debtHist      metric.Float64Histogram
	commitsTotal  metric.Int64Counter
	eventsTotal   metric.Int64Counter
}

var _ contract.MetricsExporter = &Exporter{} // Compile-time check

// NewExporter creates an exporter that pushes to the OTLP gRPC endpoint.
func NewExporter(ctx context.Context, endpoint string, insecure bool) (*Exporter, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("otel endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}
	return NewExporterWithReader(sdkmetric.NewPeriodicReader(exp))
}

// NewExporterWithReader creates an exporter collected by reader.
func NewExporterWithReader(reader sdkmetric.Reader) (*Exporter, error) {
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(resource.NewSchemaless(
			attribute.String("service.name", meterName),
		)),
	)
	meter := provider.Meter(meterName)

	e := &Exporter{provider: provider}
	var err error
	if e.syncsTotal, err = meter.Int64Counter("flowstate_syncs_total",
		metric.WithDescription("Total number of sync runs"),
		metric.WithUnit("{sync}")); err != nil {
		return nil, fmt.Errorf("creating syncs counter: %w", err)
	}
	if e.durationHist, err = meter.Float64Histogram("flowstate_sync_duration_seconds",
		metric.WithDescription("Sync duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	if e.fragmentation, err = meter.Int64Histogram("flowstate_fragmentation_score",
		metric.WithDescription("Fragmentation score of synced weeks"),
		metric.WithUnit("{score}")); err != nil {
		return nil, fmt.Errorf("creating fragmentation histogram: %w", err)
	}
	if e.debtHist, err = meter.Float64Histogram("flowstate_meeting_debt_hours",
		metric.WithDescription("Meeting debt of synced weeks"),
		metric.WithUnit("h")); err != nil {
		return nil, fmt.Errorf("creating debt histogram: %w", err)
	}
	if e.commitsTotal, err = meter.Int64Counter("flowstate_commits_total",
		metric.WithDescription("Commits read by syncs"),
		metric.WithUnit("{commit}")); err != nil {
		return nil, fmt.Errorf("creating commits counter: %w", err)
	}
	if e.eventsTotal, err = meter.Int64Counter("flowstate_events_total",
		metric.WithDescription("Calendar events read by syncs"),
		metric.WithUnit("{event}")); err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}
	return e, nil
}

// RecordSync records the outcome of one sync.
func (e *Exporter) RecordSync(ctx context.Context, o schema.SyncOutcome) {
	opt := metric.WithAttributes(
		attribute.String("scope", string(o.Scope)),
		attribute.String("status", string(o.Status)),
	)

	e.syncsTotal.Add(ctx, 1, opt)
	e.durationHist.Record(ctx, o.Duration.Seconds(), opt)
	e.eventsTotal.Add(ctx, int64(o.EventCount), opt)
	e.commitsTotal.Add(ctx, int64(o.CommitCount), opt)

	// scores only describe successful syncs that touched the calendar
	if o.Snapshot != nil && o.Snapshot.HasCalendar {
		e.fragmentation.Record(ctx, int64(o.Snapshot.FragmentationScore), opt)
		e.debtHist.Record(ctx, o.Snapshot.MeetingDebtHours, opt)
	}
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
