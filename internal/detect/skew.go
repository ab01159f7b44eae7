package detect

import (
	"fmt"

	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/models"
)

// SkewDetector flags stages where the slowest task dominates the median,
// the classic signature of unevenly distributed partition keys.
type SkewDetector struct {
	thresholds config.Thresholds
}

// NewSkewDetector creates a skew detector with the given thresholds.
func NewSkewDetector(thresholds config.Thresholds) *SkewDetector {
	return &SkewDetector{thresholds: thresholds}
}

// Name implements Detector.
func (d *SkewDetector) Name() string {
	return "skew"
}

// Detect implements Detector. Stages with fewer than two tasks or a zero
// median carry no skew signal and are skipped.
func (d *SkewDetector) Detect(m *models.SparkMetrics) []models.Finding {
	var findings []models.Finding

	for i := range m.Stages {
		stage := &m.Stages[i]
		if stage.TaskCount < 2 || stage.MedianTaskDurationMs <= 0 {
			continue
		}

		ratio := float64(stage.MaxTaskDurationMs) / stage.MedianTaskDurationMs
		if ratio <= d.thresholds.SkewRatio {
			continue
		}

		severity := models.SeverityWarning
		if ratio > 2*d.thresholds.SkewRatio {
			severity = models.SeverityCritical
		}

		findings = append(findings, models.Finding{
			Detector: d.Name(),
			Severity: severity,
			StageID:  stage.StageID,
			Title:    fmt.Sprintf("Data skew in stage %d", stage.StageID),
			Description: fmt.Sprintf(
				"The slowest task in stage %d%s took %dms, %.1fx the median task duration of %.0fms. A few oversized partitions are holding back the whole stage.",
				stage.StageID, stageSuffix(stage), stage.MaxTaskDurationMs, ratio, stage.MedianTaskDurationMs),
			Metrics: map[string]interface{}{
				"max_task_duration_ms":    stage.MaxTaskDurationMs,
				"median_task_duration_ms": stage.MedianTaskDurationMs,
				"skew_ratio":              ratio,
				"task_count":              stage.TaskCount,
			},
			MitigationTags: []models.MitigationTag{models.TagRepartition, models.TagSalting},
		})
	}

	return findings
}
