package detect

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/models"
)

// SpillDetector flags stages that ran out of execution memory and spilled
// intermediate data to disk.
type SpillDetector struct {
	thresholds config.Thresholds
}

// NewSpillDetector creates a disk spill detector.
func NewSpillDetector(thresholds config.Thresholds) *SpillDetector {
	return &SpillDetector{thresholds: thresholds}
}

// Name implements Detector.
func (d *SpillDetector) Name() string {
	return "spill"
}

// Detect implements Detector. The spill threshold is inclusive: a stage
// spilling exactly MinSpillBytes is flagged. A run whose combined spill
// reaches five times the threshold additionally gets a run-level finding
// even when no single stage dominates.
func (d *SpillDetector) Detect(m *models.SparkMetrics) []models.Finding {
	var findings []models.Finding
	var totalSpill int64

	for i := range m.Stages {
		stage := &m.Stages[i]
		totalSpill += stage.TotalSpillBytes
		if stage.TaskCount == 0 || stage.TotalSpillBytes < d.thresholds.MinSpillBytes {
			continue
		}

		severity := models.SeverityWarning
		if stage.TotalSpillBytes > 4*d.thresholds.MinSpillBytes {
			severity = models.SeverityCritical
		}

		findings = append(findings, models.Finding{
			Detector: d.Name(),
			Severity: severity,
			StageID:  stage.StageID,
			Title:    fmt.Sprintf("Disk spill in stage %d", stage.StageID),
			Description: fmt.Sprintf(
				"Stage %d%s spilled %s to disk. Executors ran out of execution memory and fell back to disk-backed processing.",
				stage.StageID, stageSuffix(stage), humanize.IBytes(uint64(stage.TotalSpillBytes))),
			Metrics: map[string]interface{}{
				"spill_bytes": stage.TotalSpillBytes,
				"task_count":  stage.TaskCount,
			},
			MitigationTags: []models.MitigationTag{models.TagIncreaseMemory},
		})
	}

	if totalSpill >= 5*d.thresholds.MinSpillBytes {
		findings = append(findings, models.Finding{
			Detector: d.Name(),
			Severity: models.SeverityWarning,
			StageID:  models.StageIDNone,
			Title:    "High total disk spill across application",
			Description: fmt.Sprintf(
				"The application spilled %s to disk in total across all stages. Memory pressure is impacting the whole run, not just one stage.",
				humanize.IBytes(uint64(totalSpill))),
			Metrics: map[string]interface{}{
				"total_spill_bytes": totalSpill,
			},
			MitigationTags: []models.MitigationTag{models.TagIncreaseMemory},
		})
	}

	return findings
}
