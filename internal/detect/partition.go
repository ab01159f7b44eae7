package detect

import (
	"fmt"

	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/models"
)

// PartitionDetector flags stages scheduling a very large number of very
// short tasks, where per-task overhead outweighs the useful work.
type PartitionDetector struct {
	thresholds config.Thresholds
}

// NewPartitionDetector creates a partition inefficiency detector.
func NewPartitionDetector(thresholds config.Thresholds) *PartitionDetector {
	return &PartitionDetector{thresholds: thresholds}
}

// Name implements Detector.
func (d *PartitionDetector) Name() string {
	return "partition"
}

// Detect implements Detector. Both conditions must hold: the stage has at
// least HighTaskCount tasks AND its average task duration falls below
// MinAvgTaskDurationMs. The finding is always a warning.
func (d *PartitionDetector) Detect(m *models.SparkMetrics) []models.Finding {
	var findings []models.Finding

	for i := range m.Stages {
		stage := &m.Stages[i]
		if stage.TaskCount < d.thresholds.HighTaskCount {
			continue
		}

		avg := float64(stage.TotalDurationMs) / float64(stage.TaskCount)
		if avg >= d.thresholds.MinAvgTaskDurationMs {
			continue
		}

		findings = append(findings, models.Finding{
			Detector: d.Name(),
			Severity: models.SeverityWarning,
			StageID:  stage.StageID,
			Title:    fmt.Sprintf("Partition inefficiency in stage %d", stage.StageID),
			Description: fmt.Sprintf(
				"Stage %d%s ran %d tasks averaging %.1fms each. Scheduling overhead dominates this stage; the data is split into far more partitions than it needs.",
				stage.StageID, stageSuffix(stage), stage.TaskCount, avg),
			Metrics: map[string]interface{}{
				"task_count":           stage.TaskCount,
				"avg_task_duration_ms": avg,
			},
			MitigationTags: []models.MitigationTag{models.TagCoalesce, models.TagRepartition},
		})
	}

	return findings
}
