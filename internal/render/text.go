package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/moolen/sparkmap/internal/models"
)

// Text writes the styled terminal report.
func Text(w io.Writer, report *models.Report) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Spark Bottleneck Report"))
	b.WriteString("\n\n")

	m := report.Metrics
	name := m.AppName
	if name == "" {
		name = "(unknown application)"
	}
	b.WriteString(fmt.Sprintf("Application: %s", name))
	if m.AppID != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", m.AppID)))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Duration: %s   Stages: %d   Tasks: %d",
		formatDuration(m.TotalDurationMs), len(m.Stages), m.TaskCount()))
	if m.FailedTaskCount > 0 {
		b.WriteString(warningStyle.Render(fmt.Sprintf(" (%d failed)", m.FailedTaskCount)))
	}
	if m.ExecutorCount > 0 {
		b.WriteString(fmt.Sprintf("   Executors: %d", m.ExecutorCount))
	}
	b.WriteString("\n\n")

	if len(report.Findings) == 0 {
		b.WriteString(okStyle.Render("No bottlenecks detected."))
		b.WriteString("\n")
	} else {
		overall := report.Metadata.OverallSeverity
		b.WriteString(headerStyle.Render(fmt.Sprintf("Findings (%d)", len(report.Findings))))
		b.WriteString(dimStyle.Render(fmt.Sprintf("  overall: %s", strings.ToUpper(string(overall)))))
		b.WriteString("\n\n")

		for i := range report.Findings {
			f := &report.Findings[i]
			badge := severityStyle(f.Severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(f.Severity))))
			b.WriteString(fmt.Sprintf("%s %s %s\n", badge, f.Title, dimStyle.Render("("+f.Detector+")")))
			b.WriteString(fmt.Sprintf("  %s\n", f.Description))
			if len(f.MitigationTags) > 0 {
				tags := make([]string, len(f.MitigationTags))
				for j, tag := range f.MitigationTags {
					tags[j] = string(tag)
				}
				b.WriteString(dimStyle.Render(fmt.Sprintf("  try: %s", strings.Join(tags, ", "))))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	writeNotes(&b, report)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeNotes(b *strings.Builder, report *models.Report) {
	meta := &report.Metadata
	if meta.SkippedRecords == 0 && len(meta.IncompleteStages) == 0 && len(meta.DetectorFailures) == 0 {
		return
	}

	b.WriteString(headerStyle.Render("Notes"))
	b.WriteString("\n")
	if meta.SkippedRecords > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d malformed records skipped\n", meta.SkippedRecords)))
	}
	for _, id := range meta.IncompleteStages {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  stage %d has no completion event, evaluated at reduced confidence\n", id)))
	}
	for _, name := range meta.DetectorFailures {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  detector %s failed and produced no results\n", name)))
	}
}

func formatDuration(ms int64) string {
	if ms <= 0 {
		return "unknown"
	}
	return (time.Duration(ms) * time.Millisecond).Truncate(time.Millisecond).String()
}
