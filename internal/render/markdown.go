package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/moolen/sparkmap/internal/models"
)

// Markdown writes the report as a self-contained markdown document.
func Markdown(w io.Writer, report *models.Report) error {
	var b strings.Builder

	m := report.Metrics
	b.WriteString("# Spark Bottleneck Report\n\n")

	if m.AppName != "" || m.AppID != "" {
		b.WriteString(fmt.Sprintf("**Application:** %s", m.AppName))
		if m.AppID != "" {
			b.WriteString(fmt.Sprintf(" (`%s`)", m.AppID))
		}
		b.WriteString("  \n")
	}
	b.WriteString(fmt.Sprintf("**Duration:** %s  \n", formatDuration(m.TotalDurationMs)))
	b.WriteString(fmt.Sprintf("**Stages:** %d · **Tasks:** %d", len(m.Stages), m.TaskCount()))
	if m.FailedTaskCount > 0 {
		b.WriteString(fmt.Sprintf(" (%d failed)", m.FailedTaskCount))
	}
	if m.ExecutorCount > 0 {
		b.WriteString(fmt.Sprintf(" · **Executors:** %d", m.ExecutorCount))
	}
	b.WriteString("\n\n")

	if len(report.Findings) == 0 {
		b.WriteString("No bottlenecks detected.\n")
	} else {
		b.WriteString(fmt.Sprintf("## Findings (%d, overall %s)\n\n", len(report.Findings), report.Metadata.OverallSeverity))
		b.WriteString("| Severity | Stage | Detector | Finding |\n")
		b.WriteString("|---|---|---|---|\n")
		for i := range report.Findings {
			f := &report.Findings[i]
			stage := fmt.Sprintf("%d", f.StageID)
			if f.StageID == models.StageIDNone {
				stage = "—"
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", f.Severity, stage, f.Detector, f.Title))
		}
		b.WriteString("\n")

		for i := range report.Findings {
			f := &report.Findings[i]
			b.WriteString(fmt.Sprintf("### %s\n\n", f.Title))
			b.WriteString(f.Description)
			b.WriteString("\n")
			if len(f.MitigationTags) > 0 {
				tags := make([]string, len(f.MitigationTags))
				for j, tag := range f.MitigationTags {
					tags[j] = fmt.Sprintf("`%s`", tag)
				}
				b.WriteString(fmt.Sprintf("\nSuggested mitigations: %s\n", strings.Join(tags, ", ")))
			}
			b.WriteString("\n")
		}
	}

	writeStageTable(&b, m)
	writeMarkdownNotes(&b, report)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeStageTable(b *strings.Builder, m *models.SparkMetrics) {
	if len(m.Stages) == 0 {
		return
	}

	b.WriteString("## Stages\n\n")
	b.WriteString("| Stage | Tasks | Median | Max | Input | Shuffle W | Spill |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for i := range m.Stages {
		s := &m.Stages[i]
		label := fmt.Sprintf("%d", s.StageID)
		if s.StageName != "" {
			label = fmt.Sprintf("%d (%s)", s.StageID, s.StageName)
		}
		b.WriteString(fmt.Sprintf("| %s | %d | %.0fms | %dms | %s | %s | %s |\n",
			label, s.TaskCount, s.MedianTaskDurationMs, s.MaxTaskDurationMs,
			humanize.IBytes(uint64(s.TotalInputBytes)),
			humanize.IBytes(uint64(s.TotalShuffleWriteBytes)),
			humanize.IBytes(uint64(s.TotalSpillBytes))))
	}
	b.WriteString("\n")
}

func writeMarkdownNotes(b *strings.Builder, report *models.Report) {
	meta := &report.Metadata
	if meta.SkippedRecords == 0 && len(meta.IncompleteStages) == 0 && len(meta.DetectorFailures) == 0 {
		return
	}

	b.WriteString("## Notes\n\n")
	if meta.SkippedRecords > 0 {
		b.WriteString(fmt.Sprintf("- %d malformed records skipped\n", meta.SkippedRecords))
	}
	for _, id := range meta.IncompleteStages {
		b.WriteString(fmt.Sprintf("- stage %d has no completion event, evaluated at reduced confidence\n", id))
	}
	for _, name := range meta.DetectorFailures {
		b.WriteString(fmt.Sprintf("- detector %s failed and produced no results\n", name))
	}
}
