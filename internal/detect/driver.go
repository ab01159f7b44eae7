package detect

import (
	"fmt"

	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/models"
)

// DriverDetector flags stages where result serialization or scheduler
// delay dominates, pointing at the driver rather than the executors.
type DriverDetector struct {
	thresholds config.Thresholds
}

// NewDriverDetector creates a driver bottleneck detector.
func NewDriverDetector(thresholds config.Thresholds) *DriverDetector {
	return &DriverDetector{thresholds: thresholds}
}

// Name implements Detector.
func (d *DriverDetector) Name() string {
	return "driver"
}

// Detect implements Detector. Either dominating ratio flags the stage as
// a warning; both together escalate to critical.
func (d *DriverDetector) Detect(m *models.SparkMetrics) []models.Finding {
	var findings []models.Finding

	for i := range m.Stages {
		stage := &m.Stages[i]
		if stage.TaskCount == 0 || stage.StageDurationMs <= 0 {
			continue
		}

		duration := float64(stage.StageDurationMs)
		serRatio := float64(stage.TotalResultSerializationMs) / duration
		delayRatio := float64(stage.TotalSchedulerDelayMs) / duration

		serHigh := serRatio > d.thresholds.DriverRatio
		delayHigh := delayRatio > d.thresholds.DriverRatio
		if !serHigh && !delayHigh {
			continue
		}

		severity := models.SeverityWarning
		if serHigh && delayHigh {
			severity = models.SeverityCritical
		}

		var cause string
		switch {
		case serHigh && delayHigh:
			cause = "result serialization and scheduler delay both dominate"
		case serHigh:
			cause = "result serialization dominates"
		default:
			cause = "scheduler delay dominates"
		}

		findings = append(findings, models.Finding{
			Detector: d.Name(),
			Severity: severity,
			StageID:  stage.StageID,
			Title:    fmt.Sprintf("Driver bottleneck in stage %d", stage.StageID),
			Description: fmt.Sprintf(
				"In stage %d%s, %s the stage duration (serialization %.0f%%, scheduler delay %.0f%%). The driver, not the executors, is the constraint.",
				stage.StageID, stageSuffix(stage), cause, serRatio*100, delayRatio*100),
			Metrics: map[string]interface{}{
				"result_serialization_ms": stage.TotalResultSerializationMs,
				"scheduler_delay_ms":      stage.TotalSchedulerDelayMs,
				"stage_duration_ms":       stage.StageDurationMs,
				"serialization_ratio":     serRatio,
				"scheduler_delay_ratio":   delayRatio,
			},
			MitigationTags: []models.MitigationTag{models.TagReduceResultSize, models.TagAvoidCollect},
		})
	}

	return findings
}
