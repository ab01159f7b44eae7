package explain

import (
	"context"

	"github.com/moolen/sparkmap/internal/logging"
	"github.com/moolen/sparkmap/internal/models"
)

// Annotation pairs one finding with its generated explanation. Findings
// whose explanation failed carry an empty text and the error message.
type Annotation struct {
	Finding models.FindingSummary `json:"finding"`
	Text    string                `json:"text,omitempty"`
	Err     string                `json:"error,omitempty"`
}

// Annotations is the explanation output for one run. It lives beside the
// report; the report itself is never modified.
type Annotations struct {
	Provider string       `json:"provider"`
	Summary  string       `json:"summary,omitempty"`
	Items    []Annotation `json:"items"`
}

// Annotate generates explanations for every finding in report order.
// Best effort: a failing finding is recorded and the rest continue, so a
// flaky provider degrades to partial annotations instead of no report.
func Annotate(ctx context.Context, provider Provider, report *models.Report) *Annotations {
	logger := logging.GetLogger("explain")

	out := &Annotations{Provider: provider.Name()}
	for _, summary := range report.FindingSummaries() {
		if err := ctx.Err(); err != nil {
			logger.Warn("annotation cancelled after %d of %d findings", len(out.Items), len(report.Findings))
			return out
		}

		item := Annotation{Finding: summary}
		text, err := provider.ExplainFinding(ctx, summary)
		if err != nil {
			logger.ErrorWithErr("explanation failed for finding %q", err, summary.Title)
			item.Err = err.Error()
		} else {
			item.Text = text
		}
		out.Items = append(out.Items, item)
	}

	if len(report.Findings) > 1 {
		summary, err := provider.Summarize(ctx, report.Metadata.OverallSeverity, report.FindingSummaries())
		if err != nil {
			logger.ErrorWithErr("run summary failed", err)
		} else {
			out.Summary = summary
		}
	}

	return out
}
