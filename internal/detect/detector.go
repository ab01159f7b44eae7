// Package detect evaluates a fixed set of independent bottleneck
// detectors against a finalized metrics snapshot.
//
// Detectors are pure: they read the snapshot, never mutate it, share no
// state, and their output never depends on another detector having run.
// Thresholds are injected at construction; nothing is hard-coded inside
// a detector. A detector that panics is isolated into an info-severity
// diagnostic finding and the pipeline continues.
package detect

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/logging"
	"github.com/moolen/sparkmap/internal/models"
)

// Detector is the capability contract for all bottleneck detectors.
// Third-party extensions register instances of this interface; there is
// no runtime type discovery.
type Detector interface {
	// Name returns the stable detector name used in findings
	Name() string

	// Detect analyzes the snapshot and returns zero or more findings
	Detect(m *models.SparkMetrics) []models.Finding
}

// Pipeline runs a registered list of detectors over a snapshot.
type Pipeline struct {
	detectors []Detector
	logger    *logging.Logger
}

// NewPipeline creates a pipeline with the six built-in detectors plus
// any explicitly registered extras.
func NewPipeline(thresholds config.Thresholds, extra ...Detector) *Pipeline {
	detectors := []Detector{
		NewSkewDetector(thresholds),
		NewShuffleDetector(thresholds),
		NewSpillDetector(thresholds),
		NewPartitionDetector(thresholds),
		NewIODetector(thresholds),
		NewDriverDetector(thresholds),
	}
	detectors = append(detectors, extra...)

	return &Pipeline{
		detectors: detectors,
		logger:    logging.GetLogger("detect.pipeline"),
	}
}

// Run evaluates all detectors against the snapshot and returns the raw
// findings plus the names of detectors that raised an internal error.
//
// Detectors execute concurrently; results are merged in registration
// order so execution order never leaks into the output. The collector
// re-imposes the canonical report order afterwards.
func (p *Pipeline) Run(ctx context.Context, m *models.SparkMetrics) ([]models.Finding, []string) {
	results := make([][]models.Finding, len(p.detectors))
	failed := make([]bool, len(p.detectors))

	g, ctx := errgroup.WithContext(ctx)
	for i, d := range p.detectors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			defer func() {
				if r := recover(); r != nil {
					failed[i] = true
					p.logger.Error("detector %s raised an internal error: %v", d.Name(), r)
				}
			}()
			results[i] = d.Detect(m)
			p.logger.Debug("detector %s produced %d findings", d.Name(), len(results[i]))
			return nil
		})
	}
	// The only error a task can return is ctx.Err(); panics are isolated above.
	_ = g.Wait()

	var findings []models.Finding
	var failures []string
	for i, d := range p.detectors {
		findings = append(findings, results[i]...)
		if failed[i] {
			failures = append(failures, d.Name())
			findings = append(findings, models.Finding{
				Detector:    d.Name(),
				Severity:    models.SeverityInfo,
				StageID:     models.StageIDNone,
				Title:       fmt.Sprintf("Detector %q failed", d.Name()),
				Description: fmt.Sprintf("The %s detector raised an internal error and produced no results for this run. All other detectors were unaffected.", d.Name()),
			})
		}
	}

	return findings, failures
}

// stageSuffix renders the stage name for finding text, e.g.
// " (join at etl.py:47)". Empty when the log carried no stage name.
func stageSuffix(stage *models.StageMetrics) string {
	if stage.StageName == "" {
		return ""
	}
	return " (" + stage.StageName + ")"
}
