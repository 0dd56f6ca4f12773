// Package tracing wires the kernel's replay harness into an OpenCensus
// trace pipeline exported to Jaeger, mirroring the span-per-operation
// style the teacher's state generator uses around its own hot-state
// operations.
package tracing

import (
	"context"

	"contrib.go.opencensus.io/exporter/jaeger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

var log = logrus.WithField("prefix", "tracing")

// Options configures the Jaeger exporter the replay harness registers for
// the lifetime of a run.
type Options struct {
	Enabled         bool
	ProcessName     string
	CollectorEndpoint string
	SampleFraction  float64
}

// Setup registers a Jaeger exporter against the collector endpoint and
// returns a flush function the caller must invoke before exiting. When
// Enabled is false, Setup is a no-op and the returned flush does nothing.
func Setup(opts Options) (func(), error) {
	if !opts.Enabled {
		return func() {}, nil
	}

	exporter, err := jaeger.NewExporter(jaeger.Options{
		CollectorEndpoint: opts.CollectorEndpoint,
		Process: jaeger.Process{
			ServiceName: opts.ProcessName,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "tracing: could not create jaeger exporter")
	}
	trace.RegisterExporter(exporter)
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.ProbabilitySampler(opts.SampleFraction)})
	log.WithField("endpoint", opts.CollectorEndpoint).Info("Jaeger exporter registered")

	return exporter.Flush, nil
}

// StartEpochSpan starts a "replay.applyEpoch" span for one epoch
// application, following the "<component>.<operation>" naming the
// teacher's stategen package uses for its own spans. Every epoch gets the
// same span name; epochNumber is not recorded on the span.
func StartEpochSpan(ctx context.Context, epochNumber uint64) (context.Context, *trace.Span) {
	return trace.StartSpan(ctx, "replay.applyEpoch")
}
