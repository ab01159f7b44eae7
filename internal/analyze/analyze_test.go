package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/eventlog"
	"github.com/moolen/sparkmap/internal/models"
)

func taskEndLine(stageID int, taskID, launch, finish int64) string {
	return fmt.Sprintf(`{"Event":"SparkListenerTaskEnd","Stage ID":%d,"Task Info":{"Task ID":%d,"Executor ID":"1","Launch Time":%d,"Finish Time":%d},"Task Metrics":{"Executor Run Time":%d}}`,
		stageID, taskID, launch, finish, finish-launch)
}

func stageCompletedLine(stageID int, submission, completion int64) string {
	return fmt.Sprintf(`{"Event":"SparkListenerStageCompleted","Stage Info":{"Stage ID":%d,"Submission Time":%d,"Completion Time":%d}}`,
		stageID, submission, completion)
}

// skewedLog builds a log whose stage 0 has one task fifty times slower
// than the median.
func skewedLog() string {
	lines := []string{
		`{"Event":"SparkListenerApplicationStart","App ID":"app-1","App Name":"etl","Timestamp":0}`,
	}
	for i := int64(1); i <= 4; i++ {
		lines = append(lines, taskEndLine(0, i, 1000, 1100))
	}
	lines = append(lines,
		taskEndLine(0, 5, 1000, 6000),
		stageCompletedLine(0, 1000, 6100),
		`{"Event":"SparkListenerApplicationEnd","Timestamp":7000}`,
	)
	return strings.Join(lines, "\n")
}

func TestRun_EndToEnd(t *testing.T) {
	opts := Options{SourcePath: "app.log", Thresholds: config.DefaultThresholds()}

	report, err := Run(context.Background(), strings.NewReader(skewedLog()), opts)
	require.NoError(t, err)

	assert.Equal(t, "app-1", report.Metrics.AppID)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "skew", report.Findings[0].Detector)
	assert.Equal(t, models.SeverityCritical, report.Findings[0].Severity)
	assert.Equal(t, models.SeverityCritical, report.Metadata.OverallSeverity)
	assert.Equal(t, "app.log", report.Metadata.SourcePath)
	assert.NotEmpty(t, report.Metadata.RunID)
}

func TestRun_MalformedRecordsCounted(t *testing.T) {
	lines := []string{
		taskEndLine(0, 1, 0, 100),
		`{"broken`,
		taskEndLine(0, 2, 0, 200),
		`also broken`,
		taskEndLine(0, 3, 0, 300),
	}

	report, err := Run(context.Background(), strings.NewReader(strings.Join(lines, "\n")),
		Options{Thresholds: config.DefaultThresholds()})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Metadata.SkippedRecords)
	assert.Equal(t, 3, report.Metrics.TaskCount())
}

func TestRun_ZeroValidRecordsFailsWithoutReport(t *testing.T) {
	report, err := Run(context.Background(), strings.NewReader("garbage\nmore garbage"),
		Options{Thresholds: config.DefaultThresholds()})

	require.Error(t, err)
	assert.True(t, eventlog.IsParseError(err))
	assert.Nil(t, report)
}

func TestRun_CancellationProducesNoReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, strings.NewReader(skewedLog()),
		Options{Thresholds: config.DefaultThresholds()})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
}

func TestRun_Deterministic(t *testing.T) {
	opts := Options{SourcePath: "app.log", Thresholds: config.DefaultThresholds()}

	var serialized [][]byte
	for range 3 {
		report, err := Run(context.Background(), strings.NewReader(skewedLog()), opts)
		require.NoError(t, err)

		out, err := json.MarshalIndent(report, "", "  ")
		require.NoError(t, err)
		serialized = append(serialized, out)
	}

	// Byte-identical output across runs: run id and timestamp are not
	// part of the canonical serialization
	assert.Equal(t, serialized[0], serialized[1])
	assert.Equal(t, serialized[1], serialized[2])
}

func TestRun_IncompleteStageStillAnalyzed(t *testing.T) {
	lines := []string{
		taskEndLine(2, 1, 1000, 1100),
		taskEndLine(2, 2, 1000, 1100),
		taskEndLine(2, 3, 1000, 1100),
		taskEndLine(2, 4, 1000, 6000),
		// no StageCompleted for stage 2
	}

	report, err := Run(context.Background(), strings.NewReader(strings.Join(lines, "\n")),
		Options{Thresholds: config.DefaultThresholds()})
	require.NoError(t, err)

	assert.Equal(t, []int{2}, report.Metadata.IncompleteStages)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "skew", report.Findings[0].Detector)
}
