package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/sparkmap/internal/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		Metrics: &models.SparkMetrics{
			AppID:           "app-1",
			AppName:         "etl",
			TotalDurationMs: 60000,
			FailedTaskCount: 1,
			Stages: []models.StageMetrics{
				{StageID: 0, StageName: "join at etl.py:47", TaskCount: 5, FailedTaskCount: 1, MedianTaskDurationMs: 100, MaxTaskDurationMs: 5000},
			},
		},
		Findings: []models.Finding{
			{
				Detector:       "skew",
				Severity:       models.SeverityCritical,
				StageID:        0,
				Title:          "Data skew in stage 0",
				Description:    "The slowest task in stage 0 took 5000ms, 50.0x the median task duration of 100ms.",
				Metrics:        map[string]interface{}{"skew_ratio": 50.0},
				MitigationTags: []models.MitigationTag{models.TagRepartition, models.TagSalting},
			},
		},
		Metadata: models.ReportMetadata{
			RunID:            "run-1",
			SourcePath:       "app.log",
			SkippedRecords:   2,
			IncompleteStages: []int{3},
			OverallSeverity:  models.SeverityCritical,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"markdown", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestJSON_DeterministicAndExcludesRunID(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, JSON(&first, sampleReport()))
	require.NoError(t, JSON(&second, sampleReport()))

	assert.Equal(t, first.Bytes(), second.Bytes())
	assert.NotContains(t, first.String(), "run-1")
	assert.Contains(t, first.String(), `"overall_severity": "critical"`)
	assert.Contains(t, first.String(), `"skew_ratio": 50`)
	assert.True(t, strings.HasSuffix(first.String(), "\n"))
}

func TestText_ContainsFindingsAndNotes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Data skew in stage 0")
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "repartition, salting")
	assert.Contains(t, out, "(1 failed)")
	assert.Contains(t, out, "2 malformed records skipped")
	assert.Contains(t, out, "stage 3 has no completion event")
}

func TestText_EmptyReport(t *testing.T) {
	report := &models.Report{
		Metrics:  &models.SparkMetrics{},
		Metadata: models.ReportMetadata{OverallSeverity: models.SeverityNone},
	}

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, report))
	assert.Contains(t, buf.String(), "No bottlenecks detected")
}

func TestMarkdown_Structure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "# Spark Bottleneck Report")
	assert.Contains(t, out, "| critical | 0 | skew | Data skew in stage 0 |")
	assert.Contains(t, out, "### Data skew in stage 0")
	assert.Contains(t, out, "`repartition`")
	assert.Contains(t, out, "## Stages")
	assert.Contains(t, out, "| 0 (join at etl.py:47) | 5 |")
	assert.Contains(t, out, "## Notes")
}

func TestRender_DispatchesOnFormat(t *testing.T) {
	for _, format := range []Format{FormatText, FormatMarkdown, FormatJSON} {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, format, sampleReport()))
		assert.NotZero(t, buf.Len(), format)
	}
}
