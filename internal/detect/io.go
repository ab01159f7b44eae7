package detect

import (
	"fmt"

	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/models"
)

// IODetector flags stages whose wall-clock time is dominated by waiting
// on reads rather than compute.
type IODetector struct {
	thresholds config.Thresholds
}

// NewIODetector creates an I/O bottleneck detector.
func NewIODetector(thresholds config.Thresholds) *IODetector {
	return &IODetector{thresholds: thresholds}
}

// Name implements Detector.
func (d *IODetector) Name() string {
	return "io"
}

// Detect implements Detector. Stages without a measurable duration are
// skipped; the ratio is undefined there.
func (d *IODetector) Detect(m *models.SparkMetrics) []models.Finding {
	var findings []models.Finding

	for i := range m.Stages {
		stage := &m.Stages[i]
		if stage.TaskCount == 0 || stage.StageDurationMs <= 0 {
			continue
		}

		ratio := float64(stage.TotalReadTimeMs) / float64(stage.StageDurationMs)
		if ratio <= d.thresholds.IORatio {
			continue
		}

		findings = append(findings, models.Finding{
			Detector: d.Name(),
			Severity: models.SeverityWarning,
			StageID:  stage.StageID,
			Title:    fmt.Sprintf("I/O-bound stage %d", stage.StageID),
			Description: fmt.Sprintf(
				"Stage %d%s spent %dms of its %dms duration waiting on reads (%.0f%%). The stage is I/O-bound rather than compute-bound.",
				stage.StageID, stageSuffix(stage), stage.TotalReadTimeMs, stage.StageDurationMs, ratio*100),
			Metrics: map[string]interface{}{
				"read_time_ms":      stage.TotalReadTimeMs,
				"stage_duration_ms": stage.StageDurationMs,
				"read_ratio":        ratio,
			},
			MitigationTags: []models.MitigationTag{models.TagCache, models.TagFormatOptimization},
		})
	}

	return findings
}
