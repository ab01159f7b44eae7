package models

// ReportMetadata carries run-level annotations so renderers can disclose
// reduced confidence.
type ReportMetadata struct {
	// RunID identifies this analysis run. Excluded from the canonical
	// serialization so identical inputs produce identical reports.
	RunID string `json:"-"`

	// AnalysisTimestamp is when the analysis ran (RFC3339).
	// Excluded from the canonical serialization, like RunID.
	AnalysisTimestamp string `json:"-"`

	// SourcePath is the analyzed event log
	SourcePath string `json:"source_path,omitempty"`

	// SkippedRecords counts malformed records dropped by the reader
	SkippedRecords int `json:"skipped_records"`

	// IgnoredRecords counts recognized-but-uninterpreted records
	IgnoredRecords int `json:"ignored_records"`

	// FailedTasks counts tasks that ended unsuccessfully
	FailedTasks int `json:"failed_tasks,omitempty"`

	// IncompleteStages lists stages evaluated at reduced confidence
	IncompleteStages []int `json:"incomplete_stages,omitempty"`

	// DetectorFailures names detectors that raised an internal error
	DetectorFailures []string `json:"detector_failures,omitempty"`

	// OverallSeverity is the maximum severity across findings, or "none"
	OverallSeverity Severity `json:"overall_severity"`
}

// Report is the immutable result of one analysis run, owned by the caller.
type Report struct {
	Metrics  *SparkMetrics  `json:"metrics"`
	Findings []Finding      `json:"findings"`
	Metadata ReportMetadata `json:"metadata"`
}

// FindingSummaries returns the metrics-only summaries of all findings,
// in report order, for the explanation collaborator.
func (r *Report) FindingSummaries() []FindingSummary {
	summaries := make([]FindingSummary, len(r.Findings))
	for i := range r.Findings {
		summaries[i] = r.Findings[i].Summary()
	}
	return summaries
}

// CountBySeverity returns the number of findings at the given severity.
func (r *Report) CountBySeverity(s Severity) int {
	n := 0
	for i := range r.Findings {
		if r.Findings[i].Severity == s {
			n++
		}
	}
	return n
}
