package detect

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/moolen/sparkmap/internal/models"
)

// Collector turns raw detector output into a finished report: duplicates
// collapsed, findings in canonical order, run-level metadata attached.
type Collector struct{}

// NewCollector creates a collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect assembles the report for one analysis run. Findings are
// deduplicated on (detector, stage, title) keeping the higher severity,
// then sorted into the canonical order: severity descending, stage id
// ascending, detector name ascending.
func (c *Collector) Collect(metrics *models.SparkMetrics, findings []models.Finding, failures []string, sourcePath string) *models.Report {
	deduped := dedupe(findings)
	sortFindings(deduped)

	overall := models.SeverityNone
	for i := range deduped {
		if deduped[i].Severity.Rank() > overall.Rank() {
			overall = deduped[i].Severity
		}
	}

	return &models.Report{
		Metrics:  metrics,
		Findings: deduped,
		Metadata: models.ReportMetadata{
			RunID:             uuid.NewString(),
			AnalysisTimestamp: time.Now().UTC().Format(time.RFC3339),
			SourcePath:        sourcePath,
			SkippedRecords:    metrics.SkippedRecords,
			IgnoredRecords:    metrics.IgnoredRecords,
			FailedTasks:       metrics.FailedTaskCount,
			IncompleteStages:  append([]int(nil), metrics.IncompleteStages...),
			DetectorFailures:  append([]string(nil), failures...),
			OverallSeverity:   overall,
		},
	}
}

// dedupe collapses findings with identical (detector, stage, title),
// keeping the one with the higher severity. First occurrence wins ties.
func dedupe(findings []models.Finding) []models.Finding {
	out := make([]models.Finding, 0, len(findings))
	index := make(map[string]int, len(findings))

	for i := range findings {
		f := findings[i]
		key := fmt.Sprintf("%s|%d|%s", f.Detector, f.StageID, f.Title)
		if at, ok := index[key]; ok {
			if f.Severity.Rank() > out[at].Severity.Rank() {
				out[at] = f
			}
			continue
		}
		index[key] = len(out)
		out = append(out, f)
	}

	return out
}

// sortFindings imposes the canonical report order. The order is total:
// no two retained findings share detector, stage and severity after
// deduplication, so equal inputs always serialize identically.
func sortFindings(findings []models.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := &findings[i], &findings[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.StageID != b.StageID {
			return a.StageID < b.StageID
		}
		return a.Detector < b.Detector
	})
}
