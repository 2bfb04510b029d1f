package telemetry

import (
	"context"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

var _ contract.MetricsExporter = &NoOpExporter{} // Compile-time check

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

// RecordSync discards the outcome.
func (e *NoOpExporter) RecordSync(context.Context, schema.SyncOutcome) {}

// Close does nothing.
func (e *NoOpExporter) Close(context.Context) error {
	return nil
}

// New returns an OTLP exporter when endpoint is set and a no-op exporter otherwise.
func New(ctx context.Context, endpoint string, insecure bool) (contract.MetricsExporter, error) {
	if endpoint == "" {
		return NewNoOpExporter(), nil
	}
	return NewExporter(ctx, endpoint, insecure)
}
