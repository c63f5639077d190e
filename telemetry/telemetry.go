// Package telemetry collects hierarchical stage timings for a pipeline run.
//
// Collectors travel through the context so stages can be timed without
// changing their signatures:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("generate")
//	transform := timer.Child("transform")
//	// ... work ...
//	transform.End()
//	timer.End()
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/finboard/output"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector records timings.
type Collector interface {
	// Start begins timing an operation. The timer must be ended with End.
	Start(name string) Timer

	// Report writes the collected timings to w. styles may be nil for plain
	// output.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation.
type Timer interface {
	End()

	// Child creates a timer nested under this one.
	Child(name string) Timer
}

// WithCollector adds a collector to a context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the collector stored in ctx, or a collector that
// discards everything.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
