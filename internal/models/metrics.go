package models

// TaskMetrics holds the metrics extracted from a single accepted TaskEnd event.
// Exactly one TaskMetrics exists per task id; duplicate TaskEnd events are
// resolved by the aggregator (last writer wins).
type TaskMetrics struct {
	// TaskID is the unique task identifier within the run
	TaskID int64 `json:"task_id"`

	// StageID is the stage this task belongs to
	StageID int `json:"stage_id"`

	// EndTimeMs is the task finish timestamp (Unix milliseconds).
	// Used to resolve duplicate TaskEnd events for the same task id.
	EndTimeMs int64 `json:"end_time_ms"`

	// DurationMs is the wall-clock task duration, never negative
	DurationMs int64 `json:"duration_ms"`

	// I/O volumes
	BytesRead         int64 `json:"bytes_read"`
	BytesWritten      int64 `json:"bytes_written"`
	ShuffleReadBytes  int64 `json:"shuffle_read_bytes"`
	ShuffleWriteBytes int64 `json:"shuffle_write_bytes"`

	// SpillBytes is the volume spilled to disk under memory pressure
	SpillBytes int64 `json:"spill_bytes"`

	// Timing breakdown
	ReadTimeMs            int64 `json:"read_time_ms"`
	ResultSerializationMs int64 `json:"result_serialization_ms"`
	SchedulerDelayMs      int64 `json:"scheduler_delay_ms"`
	GCTimeMs              int64 `json:"gc_time_ms"`

	// Failed marks a task that ended unsuccessfully
	Failed bool `json:"failed,omitempty"`
}

// Validate checks that the task metrics are well-formed
func (t *TaskMetrics) Validate() error {
	if t.DurationMs < 0 {
		return NewValidationError("task %d: duration must be non-negative", t.TaskID)
	}
	if t.BytesRead < 0 || t.BytesWritten < 0 || t.ShuffleReadBytes < 0 ||
		t.ShuffleWriteBytes < 0 || t.SpillBytes < 0 {
		return NewValidationError("task %d: byte counts must be non-negative", t.TaskID)
	}
	return nil
}

// StageMetrics holds per-stage task metrics and the aggregates derived from
// them. Derived fields are computed once at snapshot finalization and are
// immutable afterwards; they are pure functions of Tasks.
type StageMetrics struct {
	// StageID is the unique stage identifier
	StageID int `json:"stage_id"`

	// StageName is the Spark stage description (e.g. "join at etl.py:47"),
	// empty when the log does not carry one
	StageName string `json:"stage_name,omitempty"`

	// SubmissionTimeMs and CompletionTimeMs are Unix milliseconds.
	// For incomplete stages CompletionTimeMs is the latest observed task end.
	SubmissionTimeMs int64 `json:"submission_time_ms"`
	CompletionTimeMs int64 `json:"completion_time_ms"`

	// Incomplete marks a stage that never received a completion event.
	// Such stages are still evaluated, at reduced confidence.
	Incomplete bool `json:"incomplete,omitempty"`

	// Tasks is ordered by task id
	Tasks []TaskMetrics `json:"tasks"`

	// Derived aggregates, frozen at finalization
	TaskCount                  int     `json:"task_count"`
	FailedTaskCount            int     `json:"failed_task_count,omitempty"`
	StageDurationMs            int64   `json:"stage_duration_ms"`
	TotalDurationMs            int64   `json:"total_duration_ms"`
	MedianTaskDurationMs       float64 `json:"median_task_duration_ms"`
	MaxTaskDurationMs          int64   `json:"max_task_duration_ms"`
	TotalInputBytes            int64   `json:"total_input_bytes"`
	TotalShuffleReadBytes      int64   `json:"total_shuffle_read_bytes"`
	TotalShuffleWriteBytes     int64   `json:"total_shuffle_write_bytes"`
	TotalSpillBytes            int64   `json:"total_spill_bytes"`
	TotalReadTimeMs            int64   `json:"total_read_time_ms"`
	TotalResultSerializationMs int64   `json:"total_result_serialization_ms"`
	TotalSchedulerDelayMs      int64   `json:"total_scheduler_delay_ms"`
	TotalGCTimeMs              int64   `json:"total_gc_time_ms"`
}

// SparkMetrics is the finalized, immutable snapshot of a run.
// It is the sole input to bottleneck detection.
type SparkMetrics struct {
	// Application identity, when present in the log
	AppID   string `json:"app_id,omitempty"`
	AppName string `json:"app_name,omitempty"`

	// Run timing (Unix milliseconds); zero when the log lacks the markers
	StartTimeMs     int64 `json:"start_time_ms,omitempty"`
	EndTimeMs       int64 `json:"end_time_ms,omitempty"`
	TotalDurationMs int64 `json:"total_duration_ms"`

	// ExecutorCount is the number of distinct executors observed
	ExecutorCount int `json:"executor_count"`

	// Stages is ordered by stage id
	Stages []StageMetrics `json:"stages"`

	// FailedTaskCount is the total number of failed tasks across all stages
	FailedTaskCount int `json:"failed_task_count,omitempty"`

	// SkippedRecords counts malformed records dropped by the reader.
	// IgnoredRecords counts recognized record kinds the engine does not interpret.
	SkippedRecords int `json:"skipped_records"`
	IgnoredRecords int `json:"ignored_records"`

	// IncompleteStages lists stage ids finalized without a completion event
	IncompleteStages []int `json:"incomplete_stages,omitempty"`
}

// StageByID returns the stage with the given id, or nil if absent.
func (m *SparkMetrics) StageByID(stageID int) *StageMetrics {
	for i := range m.Stages {
		if m.Stages[i].StageID == stageID {
			return &m.Stages[i]
		}
	}
	return nil
}

// TaskCount returns the total number of tasks across all stages.
func (m *SparkMetrics) TaskCount() int {
	total := 0
	for i := range m.Stages {
		total += m.Stages[i].TaskCount
	}
	return total
}
