package detect

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/models"
)

// ShuffleDetector flags stages that write far more shuffle data than they
// read as input, usually a wide join or aggregation exploding row counts.
type ShuffleDetector struct {
	thresholds config.Thresholds
}

// NewShuffleDetector creates a shuffle explosion detector.
func NewShuffleDetector(thresholds config.Thresholds) *ShuffleDetector {
	return &ShuffleDetector{thresholds: thresholds}
}

// Name implements Detector.
func (d *ShuffleDetector) Name() string {
	return "shuffle"
}

// Detect implements Detector. Stages with zero input bytes are skipped;
// the ratio is undefined there.
func (d *ShuffleDetector) Detect(m *models.SparkMetrics) []models.Finding {
	var findings []models.Finding

	for i := range m.Stages {
		stage := &m.Stages[i]
		if stage.TaskCount == 0 || stage.TotalInputBytes <= 0 {
			continue
		}

		ratio := float64(stage.TotalShuffleWriteBytes) / float64(stage.TotalInputBytes)
		if ratio <= d.thresholds.ShuffleRatio {
			continue
		}

		severity := models.SeverityWarning
		if ratio > 2*d.thresholds.ShuffleRatio {
			severity = models.SeverityCritical
		}

		findings = append(findings, models.Finding{
			Detector: d.Name(),
			Severity: severity,
			StageID:  stage.StageID,
			Title:    fmt.Sprintf("Shuffle explosion in stage %d", stage.StageID),
			Description: fmt.Sprintf(
				"Stage %d%s wrote %s of shuffle data from %s of input (%.1fx amplification). The stage is multiplying data volume before the shuffle.",
				stage.StageID, stageSuffix(stage),
				humanize.IBytes(uint64(stage.TotalShuffleWriteBytes)),
				humanize.IBytes(uint64(stage.TotalInputBytes)),
				ratio),
			Metrics: map[string]interface{}{
				"shuffle_write_bytes": stage.TotalShuffleWriteBytes,
				"input_bytes":         stage.TotalInputBytes,
				"shuffle_ratio":       ratio,
			},
			MitigationTags: []models.MitigationTag{models.TagBroadcastJoin, models.TagRepartition},
		})
	}

	return findings
}
