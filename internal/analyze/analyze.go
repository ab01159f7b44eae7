// Package analyze wires the full pipeline: event stream in, finished
// report out. One call is one run; nothing is cached between runs.
package analyze

import (
	"context"
	"io"
	"os"

	"github.com/moolen/sparkmap/internal/aggregate"
	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/detect"
	"github.com/moolen/sparkmap/internal/eventlog"
	"github.com/moolen/sparkmap/internal/logging"
	"github.com/moolen/sparkmap/internal/models"
)

// Options parameterizes a single analysis run.
type Options struct {
	// SourcePath is recorded in the report metadata; it does not open the
	// source (the caller owns the io.Reader).
	SourcePath string

	// Thresholds for the detector pipeline
	Thresholds config.Thresholds

	// ExtraDetectors are explicitly registered extensions run alongside
	// the built-in detectors
	ExtraDetectors []detect.Detector
}

// Run reads the event log from src, aggregates per-stage metrics, runs
// the detector pipeline and assembles the report. On cancellation or a
// fatal parse error no report is produced.
func Run(ctx context.Context, src io.Reader, opts Options) (*models.Report, error) {
	logger := logging.GetLogger("analyze")

	reader := eventlog.NewReader(src)
	agg := aggregate.New()

	for {
		ev, err := reader.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		agg.Consume(ev)
	}

	metrics := agg.Finalize(reader.Skipped(), reader.Ignored())

	pipeline := detect.NewPipeline(opts.Thresholds, opts.ExtraDetectors...)
	findings, failures := pipeline.Run(ctx, metrics)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := detect.NewCollector().Collect(metrics, findings, failures, opts.SourcePath)

	logger.InfoWithFields("analysis complete",
		logging.Field("stages", len(metrics.Stages)),
		logging.Field("findings", len(report.Findings)),
		logging.Field("overall_severity", string(report.Metadata.OverallSeverity)),
	)

	return report, nil
}

// CollectMetrics reads and aggregates the event log without running the
// detector pipeline. Used by metrics-only inspection.
func CollectMetrics(ctx context.Context, src io.Reader) (*models.SparkMetrics, error) {
	reader := eventlog.NewReader(src)
	agg := aggregate.New()

	for {
		ev, err := reader.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		agg.Consume(ev)
	}

	return agg.Finalize(reader.Skipped(), reader.Ignored()), nil
}

// RunFile opens path and analyzes it.
func RunFile(ctx context.Context, path string, opts Options) (*models.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if opts.SourcePath == "" {
		opts.SourcePath = path
	}
	return Run(ctx, f, opts)
}
