package models

// Severity indicates the impact level of a finding
type Severity string

const (
	SeverityCritical Severity = "critical" // Dominating the run, fix first
	SeverityWarning  Severity = "warning"  // Measurable impact
	SeverityInfo     Severity = "info"     // Informational or diagnostic
	SeverityNone     Severity = "none"     // Report-level: no findings
)

// Rank returns the numeric ordering of a severity, higher is more severe.
// Unknown severities rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// MitigationTag is a short symbolic recommendation attached to a finding
type MitigationTag string

const (
	TagRepartition        MitigationTag = "repartition"
	TagCoalesce           MitigationTag = "coalesce"
	TagSalting            MitigationTag = "salting"
	TagBroadcastJoin      MitigationTag = "broadcast-join"
	TagIncreaseMemory     MitigationTag = "increase-memory"
	TagCache              MitigationTag = "cache"
	TagFormatOptimization MitigationTag = "format-optimization"
	TagReduceResultSize   MitigationTag = "reduce-result-size"
	TagAvoidCollect       MitigationTag = "avoid-collect"
)

// StageIDNone marks a finding that applies to the whole run rather than
// a single stage. Run-level findings sort before stage-level ones.
const StageIDNone = -1

// Finding represents one detected performance issue with its evidence.
// Findings are created once per analysis run and are read-only afterwards.
type Finding struct {
	// Detector is the name of the detector that produced this finding
	Detector string `json:"detector"`

	// Severity classifies the impact
	Severity Severity `json:"severity"`

	// StageID is the affected stage, or StageIDNone for run-level findings
	StageID int `json:"stage_id"`

	// Title is a short human-readable headline
	Title string `json:"title"`

	// Description explains the finding in terms of the measured values
	Description string `json:"description"`

	// Metrics snapshots the raw metric values that triggered the finding
	Metrics map[string]interface{} `json:"metrics,omitempty"`

	// MitigationTags suggests fixes from the known vocabulary
	MitigationTags []MitigationTag `json:"mitigation_tags,omitempty"`
}

// FindingSummary is the minimal read-only view handed to the explanation
// layer: verified metric values only, never raw event content.
type FindingSummary struct {
	Detector       string                 `json:"detector"`
	Severity       Severity               `json:"severity"`
	StageID        int                    `json:"stage_id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Metrics        map[string]interface{} `json:"metrics,omitempty"`
	MitigationTags []MitigationTag        `json:"mitigation_tags,omitempty"`
}

// Summary returns the metrics-only view of the finding for the
// explanation collaborator.
func (f *Finding) Summary() FindingSummary {
	metrics := make(map[string]interface{}, len(f.Metrics))
	for k, v := range f.Metrics {
		metrics[k] = v
	}
	return FindingSummary{
		Detector:       f.Detector,
		Severity:       f.Severity,
		StageID:        f.StageID,
		Title:          f.Title,
		Description:    f.Description,
		Metrics:        metrics,
		MitigationTags: append([]MitigationTag(nil), f.MitigationTags...),
	}
}
