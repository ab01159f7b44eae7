package explain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/moolen/sparkmap/internal/models"
)

const systemPrompt = `You are a Spark performance engineer reviewing findings from an automated bottleneck analysis.
For each finding you receive the detector name, severity, affected stage and the measured metric values.
Explain in two or three sentences what the numbers mean for this job and which of the suggested mitigations to try first.
Ground every statement in the provided metrics. Do not invent metrics that are not present.`

// buildPrompt renders one finding summary as the user prompt. Only the
// verified metric values are included, never raw event log content.
func buildPrompt(summary models.FindingSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Finding: %s\n", summary.Title)
	fmt.Fprintf(&b, "Detector: %s\n", summary.Detector)
	fmt.Fprintf(&b, "Severity: %s\n", summary.Severity)
	if summary.StageID != models.StageIDNone {
		fmt.Fprintf(&b, "Stage: %d\n", summary.StageID)
	}
	fmt.Fprintf(&b, "Description: %s\n", summary.Description)

	if len(summary.Metrics) > 0 {
		// Marshal sorts the keys, keeping prompts stable across runs
		metrics, err := json.Marshal(summary.Metrics)
		if err == nil {
			fmt.Fprintf(&b, "Metrics: %s\n", metrics)
		}
	}

	if len(summary.MitigationTags) > 0 {
		tags := make([]string, len(summary.MitigationTags))
		for i, tag := range summary.MitigationTags {
			tags[i] = string(tag)
		}
		fmt.Fprintf(&b, "Suggested mitigations: %s\n", strings.Join(tags, ", "))
	}

	return b.String()
}

// buildSummaryPrompt renders the whole run for the overall assessment.
func buildSummaryPrompt(overall models.Severity, findings []models.FindingSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Overall severity: %s\n", overall)
	fmt.Fprintf(&b, "Findings: %d\n\n", len(findings))
	for i, f := range findings {
		fmt.Fprintf(&b, "%d. [%s] %s (%s)\n", i+1, f.Severity, f.Title, f.Detector)
	}
	b.WriteString("\nSummarize the run in two or three sentences: the dominant bottleneck, its likely cause, and what to fix first.\n")

	return b.String()
}
