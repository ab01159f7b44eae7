// Package render serializes a report for human or machine consumption.
// The JSON form is canonical: identical reports serialize to identical
// bytes, so diffs between runs are meaningful.
package render

import (
	"fmt"
	"io"

	"github.com/moolen/sparkmap/internal/models"
)

// Format selects a report output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name from config or CLI flags.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatMarkdown, FormatJSON:
		return Format(s), nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, markdown or json)", s)
	}
}

// Render writes the report to w in the requested format.
func Render(w io.Writer, format Format, report *models.Report) error {
	switch format {
	case FormatMarkdown:
		return Markdown(w, report)
	case FormatJSON:
		return JSON(w, report)
	default:
		return Text(w, report)
	}
}
