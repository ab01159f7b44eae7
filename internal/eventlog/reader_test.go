package eventlog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskEndLine(stageID int, taskID int64, launch, finish int64) string {
	return fmt.Sprintf(`{"Event":"SparkListenerTaskEnd","Stage ID":%d,"Task Info":{"Task ID":%d,"Executor ID":"1","Launch Time":%d,"Finish Time":%d},"Task Metrics":{"Executor Run Time":%d,"Input Metrics":{"Bytes Read":1024},"Shuffle Read Metrics":{"Remote Bytes Read":100,"Local Bytes Read":50,"Fetch Wait Time":5},"Shuffle Write Metrics":{"Shuffle Bytes Written":200},"Disk Bytes Spilled":10}}`,
		stageID, taskID, launch, finish, finish-launch)
}

func stageCompletedLine(stageID int, submission, completion int64) string {
	return fmt.Sprintf(`{"Event":"SparkListenerStageCompleted","Stage Info":{"Stage ID":%d,"Submission Time":%d,"Completion Time":%d}}`,
		stageID, submission, completion)
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var events []Event
	for {
		ev, err := r.Next(context.Background())
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestReader_TaskEnd(t *testing.T) {
	src := taskEndLine(2, 7, 1000, 1500)
	r := NewReader(strings.NewReader(src))

	ev, err := r.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KindTaskEnd, ev.Kind)
	assert.Equal(t, 2, ev.StageID)

	require.NotNil(t, ev.Task)
	assert.Equal(t, int64(7), ev.Task.TaskID)
	assert.Equal(t, int64(500), ev.Task.DurationMs)
	assert.Equal(t, int64(1500), ev.Task.EndTimeMs)
	assert.Equal(t, int64(1024), ev.Task.BytesRead)
	// Remote + local shuffle read
	assert.Equal(t, int64(150), ev.Task.ShuffleReadBytes)
	assert.Equal(t, int64(200), ev.Task.ShuffleWriteBytes)
	assert.Equal(t, int64(10), ev.Task.SpillBytes)
	assert.Equal(t, int64(5), ev.Task.ReadTimeMs)

	_, err = r.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestReader_NegativeDurationClamped(t *testing.T) {
	// Finish before launch: clock skew, duration clamps to zero
	src := `{"Event":"SparkListenerTaskEnd","Stage ID":0,"Task Info":{"Task ID":1,"Launch Time":2000,"Finish Time":1000}}`
	r := NewReader(strings.NewReader(src))

	ev, err := r.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), ev.Task.DurationMs)
	assert.GreaterOrEqual(t, ev.Task.SchedulerDelayMs, int64(0))
}

func TestReader_StageCompleted(t *testing.T) {
	r := NewReader(strings.NewReader(stageCompletedLine(4, 100, 900)))

	ev, err := r.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KindStageCompleted, ev.Kind)
	assert.Equal(t, 4, ev.StageID)
	require.NotNil(t, ev.Stage)
	assert.Equal(t, int64(100), ev.Stage.SubmissionTimeMs)
	assert.Equal(t, int64(900), ev.Stage.CompletionTimeMs)
}

func TestReader_StageNameAndFailedTask(t *testing.T) {
	lines := []string{
		`{"Event":"SparkListenerStageCompleted","Stage Info":{"Stage ID":3,"Stage Name":"join at etl.py:47","Submission Time":100,"Completion Time":900}}`,
		`{"Event":"SparkListenerTaskEnd","Stage ID":3,"Task Info":{"Task ID":9,"Launch Time":100,"Finish Time":200,"Failed":true}}`,
	}
	r := NewReader(strings.NewReader(strings.Join(lines, "\n")))

	events := readAll(t, r)
	require.Len(t, events, 2)

	require.NotNil(t, events[0].Stage)
	assert.Equal(t, "join at etl.py:47", events[0].Stage.StageName)

	require.NotNil(t, events[1].Task)
	assert.True(t, events[1].Task.Failed)
}

func TestReader_MalformedLinesSkipped(t *testing.T) {
	lines := []string{
		taskEndLine(0, 1, 0, 100),
		`{"broken json`,
		taskEndLine(0, 2, 0, 200),
		`not json at all`,
		taskEndLine(0, 3, 0, 300),
	}
	r := NewReader(strings.NewReader(strings.Join(lines, "\n")))

	events := readAll(t, r)
	assert.Len(t, events, 3)
	assert.Equal(t, 2, r.Skipped())
}

func TestReader_OversizedLineSkippedStreamContinues(t *testing.T) {
	// A line beyond the record bound is dropped like any malformed
	// record; records after it must still be read
	lines := []string{
		taskEndLine(0, 1, 0, 100),
		taskEndLine(0, 2, 0, 200),
		strings.Repeat("x", maxLineBytes+1),
		taskEndLine(0, 3, 0, 300),
	}
	r := NewReader(strings.NewReader(strings.Join(lines, "\n")))

	events := readAll(t, r)
	require.Len(t, events, 3)
	assert.Equal(t, int64(3), events[2].Task.TaskID)
	assert.Equal(t, 1, r.Skipped())
}

func TestReader_OnlyOversizedLineIsParseError(t *testing.T) {
	r := NewReader(strings.NewReader(strings.Repeat("x", maxLineBytes+1)))

	_, err := r.Next(context.Background())
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.Equal(t, 1, r.Skipped())
}

func TestReader_TruncatedLastRecordIsCleanEOF(t *testing.T) {
	src := taskEndLine(0, 1, 0, 100) + "\n" + `{"Event":"SparkListenerTaskEnd","Task Inf`
	r := NewReader(strings.NewReader(src))

	events := readAll(t, r)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, r.Skipped())
}

func TestReader_UnknownKindsIgnoredButCounted(t *testing.T) {
	lines := []string{
		`{"Event":"SparkListenerEnvironmentUpdate","JVM Information":{}}`,
		taskEndLine(0, 1, 0, 100),
		`{"Event":"SparkListenerBlockManagerAdded"}`,
	}
	r := NewReader(strings.NewReader(strings.Join(lines, "\n")))

	events := readAll(t, r)
	assert.Len(t, events, 1)
	assert.Equal(t, 2, r.Ignored())
	assert.Equal(t, 0, r.Skipped())
}

func TestReader_ZeroValidRecordsIsParseError(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty input", ""},
		{"only malformed lines", "garbage\nmore garbage\n{\"no\": \"event field\"}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.src))
			_, err := r.Next(context.Background())
			require.Error(t, err)
			assert.True(t, IsParseError(err), "expected ParseError, got %v", err)
		})
	}
}

func TestReader_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := taskEndLine(0, 1, 0, 100) + "\n" + taskEndLine(0, 2, 0, 200)
	r := NewReader(strings.NewReader(src))

	_, err := r.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReader_ApplicationLifecycle(t *testing.T) {
	lines := []string{
		`{"Event":"SparkListenerApplicationStart","App ID":"app-123","App Name":"etl","Timestamp":1000}`,
		`{"Event":"SparkListenerExecutorAdded","Executor ID":"exec-1","Timestamp":1100}`,
		taskEndLine(0, 1, 1100, 1200),
		`{"Event":"SparkListenerApplicationEnd","Timestamp":5000}`,
	}
	r := NewReader(strings.NewReader(strings.Join(lines, "\n")))

	events := readAll(t, r)
	require.Len(t, events, 4)

	assert.Equal(t, KindApplicationStart, events[0].Kind)
	assert.Equal(t, "app-123", events[0].App.AppID)
	assert.Equal(t, "etl", events[0].App.AppName)

	assert.Equal(t, KindExecutorAdded, events[1].Kind)
	assert.Equal(t, "exec-1", events[1].ExecutorID)

	assert.Equal(t, KindApplicationEnd, events[3].Kind)
	assert.Equal(t, int64(5000), events[3].TimestampMs)
}
