// Package aggregate builds the immutable per-stage metrics snapshot from
// the event stream. Consumption is single-pass in arrival order; derived
// aggregates are pure functions of the accepted task metrics and are
// computed once at finalization.
package aggregate

import (
	"sort"

	"github.com/moolen/sparkmap/internal/eventlog"
	"github.com/moolen/sparkmap/internal/logging"
	"github.com/moolen/sparkmap/internal/models"
)

// Aggregator consumes lifecycle events and produces a finalized
// SparkMetrics snapshot. Not safe for concurrent use.
type Aggregator struct {
	logger *logging.Logger

	appID       string
	appName     string
	startTimeMs int64
	endTimeMs   int64

	stages    map[int]*stageAccumulator
	executors map[string]struct{}
}

// stageAccumulator is the in-progress state for one stage.
type stageAccumulator struct {
	stageID          int
	stageName        string
	submissionTimeMs int64
	completionTimeMs int64
	completed        bool

	// tasks maps task id to the currently winning TaskEnd for that id
	tasks map[int64]models.TaskMetrics
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{
		logger:    logging.GetLogger("aggregate"),
		stages:    make(map[int]*stageAccumulator),
		executors: make(map[string]struct{}),
	}
}

// Consume folds one event into the aggregation state. Events are never
// revisited; the caller feeds them in arrival order.
func (a *Aggregator) Consume(ev eventlog.Event) {
	switch ev.Kind {
	case eventlog.KindApplicationStart:
		a.appID = ev.App.AppID
		a.appName = ev.App.AppName
		a.startTimeMs = ev.TimestampMs

	case eventlog.KindApplicationEnd:
		a.endTimeMs = ev.TimestampMs

	case eventlog.KindStageSubmitted:
		acc := a.stage(ev.Stage.StageID)
		acc.submissionTimeMs = ev.Stage.SubmissionTimeMs
		if ev.Stage.StageName != "" {
			acc.stageName = ev.Stage.StageName
		}

	case eventlog.KindStageCompleted:
		acc := a.stage(ev.Stage.StageID)
		if ev.Stage.SubmissionTimeMs > 0 {
			acc.submissionTimeMs = ev.Stage.SubmissionTimeMs
		}
		if ev.Stage.StageName != "" {
			acc.stageName = ev.Stage.StageName
		}
		acc.completionTimeMs = ev.Stage.CompletionTimeMs
		acc.completed = true

	case eventlog.KindTaskEnd:
		if ev.ExecutorID != "" {
			a.executors[ev.ExecutorID] = struct{}{}
		}
		a.stage(ev.StageID).addTask(*ev.Task)

	case eventlog.KindExecutorAdded:
		if ev.ExecutorID != "" {
			a.executors[ev.ExecutorID] = struct{}{}
		}
	}
}

func (a *Aggregator) stage(stageID int) *stageAccumulator {
	acc, ok := a.stages[stageID]
	if !ok {
		acc = &stageAccumulator{
			stageID: stageID,
			tasks:   make(map[int64]models.TaskMetrics),
		}
		a.stages[stageID] = acc
	}
	return acc
}

// addTask applies the duplicate-TaskEnd tie-break: the event with the
// later timestamp wins, and on equal timestamps the later-arriving event
// wins (>= keeps the newest arrival).
func (acc *stageAccumulator) addTask(task models.TaskMetrics) {
	existing, ok := acc.tasks[task.TaskID]
	if !ok || task.EndTimeMs >= existing.EndTimeMs {
		acc.tasks[task.TaskID] = task
	}
}

// Finalize freezes the snapshot. skipped and ignored are the reader's
// record counters. The returned SparkMetrics is immutable; the aggregator
// must not be reused afterwards.
func (a *Aggregator) Finalize(skipped, ignored int) *models.SparkMetrics {
	stageIDs := make([]int, 0, len(a.stages))
	for id := range a.stages {
		stageIDs = append(stageIDs, id)
	}
	sort.Ints(stageIDs)

	m := &models.SparkMetrics{
		AppID:          a.appID,
		AppName:        a.appName,
		StartTimeMs:    a.startTimeMs,
		EndTimeMs:      a.endTimeMs,
		ExecutorCount:  len(a.executors),
		Stages:         make([]models.StageMetrics, 0, len(stageIDs)),
		SkippedRecords: skipped,
		IgnoredRecords: ignored,
	}

	for _, id := range stageIDs {
		stage := a.stages[id].finalize()
		if stage.Incomplete {
			m.IncompleteStages = append(m.IncompleteStages, stage.StageID)
			a.logger.Warn("stage %d has no completion event, evaluating at reduced confidence", stage.StageID)
		}
		m.FailedTaskCount += stage.FailedTaskCount
		m.Stages = append(m.Stages, stage)
	}

	if a.startTimeMs > 0 && a.endTimeMs > a.startTimeMs {
		m.TotalDurationMs = a.endTimeMs - a.startTimeMs
	} else {
		// No application markers in the log; fall back to stage time
		for i := range m.Stages {
			m.TotalDurationMs += m.Stages[i].StageDurationMs
		}
	}

	a.logger.InfoWithFields("snapshot finalized",
		logging.Field("stages", len(m.Stages)),
		logging.Field("tasks", m.TaskCount()),
		logging.Field("skipped_records", skipped),
		logging.Field("incomplete_stages", len(m.IncompleteStages)),
	)

	return m
}

// finalize computes the stage's derived aggregates from its task set.
func (acc *stageAccumulator) finalize() models.StageMetrics {
	tasks := make([]models.TaskMetrics, 0, len(acc.tasks))
	for _, t := range acc.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].TaskID < tasks[j].TaskID })

	stage := models.StageMetrics{
		StageID:          acc.stageID,
		StageName:        acc.stageName,
		SubmissionTimeMs: acc.submissionTimeMs,
		CompletionTimeMs: acc.completionTimeMs,
		Incomplete:       !acc.completed,
		Tasks:            tasks,
		TaskCount:        len(tasks),
	}

	durations := make([]int64, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		durations = append(durations, t.DurationMs)
		stage.TotalDurationMs += t.DurationMs
		stage.TotalInputBytes += t.BytesRead
		stage.TotalShuffleReadBytes += t.ShuffleReadBytes
		stage.TotalShuffleWriteBytes += t.ShuffleWriteBytes
		stage.TotalSpillBytes += t.SpillBytes
		stage.TotalReadTimeMs += t.ReadTimeMs
		stage.TotalResultSerializationMs += t.ResultSerializationMs
		stage.TotalSchedulerDelayMs += t.SchedulerDelayMs
		stage.TotalGCTimeMs += t.GCTimeMs

		if t.Failed {
			stage.FailedTaskCount++
		}
		if t.DurationMs > stage.MaxTaskDurationMs {
			stage.MaxTaskDurationMs = t.DurationMs
		}
		if t.EndTimeMs > stage.CompletionTimeMs && !acc.completed {
			// Incomplete stage: last observed task end stands in for completion
			stage.CompletionTimeMs = t.EndTimeMs
		}
	}

	stage.MedianTaskDurationMs = median(durations)

	if stage.CompletionTimeMs > stage.SubmissionTimeMs && stage.SubmissionTimeMs > 0 {
		stage.StageDurationMs = stage.CompletionTimeMs - stage.SubmissionTimeMs
	}

	return stage
}

// median returns the standard median of the values: the middle element
// for odd counts, the arithmetic mean of the two central elements for
// even counts. Zero for an empty slice.
func median(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2.0
}
