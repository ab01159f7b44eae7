// Package eventlog decodes Spark event logs into typed lifecycle events.
//
// The log is newline-delimited JSON, one listener record per line. Each
// record is decoded independently: a malformed line increments the skip
// counter and is dropped, never aborting the stream. Record kinds the
// engine does not interpret are counted and passed over, which keeps the
// reader forward-compatible with newer Spark versions. The stream ends
// cleanly at end-of-input even when the last record is truncated.
package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/moolen/sparkmap/internal/logging"
	"github.com/moolen/sparkmap/internal/models"
)

// maxLineBytes bounds a single record. Spark task records are a few KB;
// a line beyond this cannot be a listener record and is dropped like any
// other malformed record, without aborting the stream.
const maxLineBytes = 16 * 1024 * 1024

// Reader produces a lazy, finite, forward-only sequence of events from a
// byte source. Not safe for concurrent use.
type Reader struct {
	br       *bufio.Reader
	logger   *logging.Logger
	skipped  int
	ignored  int
	accepted int
	lineNo   int
	done     bool
}

// NewReader creates a reader over a line-delimited event log source.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		br:     bufio.NewReaderSize(r, 64*1024),
		logger: logging.GetLogger("eventlog"),
	}
}

// Next returns the next interpreted event. It returns io.EOF at clean
// end-of-input, ctx.Err() if the caller cancelled, and a *ParseError if
// the source yielded zero valid records.
func (r *Reader) Next(ctx context.Context) (Event, error) {
	if r.done {
		return Event{}, io.EOF
	}

	for {
		line, tooLong, err := r.readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.done = true
			return Event{}, fmt.Errorf("failed to read event log: %w", err)
		}
		if err := ctx.Err(); err != nil {
			r.done = true
			return Event{}, err
		}

		r.lineNo++
		if tooLong {
			r.skipped++
			r.logger.Debug("skipping oversized record at line %d", r.lineNo)
			continue
		}

		trimmed := strings.TrimSpace(string(line))
		if trimmed == "" {
			continue
		}

		var raw rawRecord
		if err := json.Unmarshal([]byte(trimmed), &raw); err != nil || raw.Event == "" {
			r.skipped++
			r.logger.Debug("skipping malformed record at line %d", r.lineNo)
			continue
		}
		r.accepted++

		ev, ok := mapRecord(&raw)
		if !ok {
			r.ignored++
			continue
		}
		return ev, nil
	}

	r.done = true

	if r.accepted == 0 {
		return Event{}, NewParseError("no valid event records found in source (%d lines skipped)", r.skipped)
	}
	return Event{}, io.EOF
}

// readLine returns the next line without its newline. A line exceeding
// maxLineBytes is consumed to its end and reported with tooLong=true so
// the caller can drop it and keep reading. io.EOF is only returned with
// no remaining data.
func (r *Reader) readLine() (line []byte, tooLong bool, err error) {
	for {
		chunk, err := r.br.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			if len(line) > maxLineBytes {
				tooLong = true
				line = nil
			}
		}

		switch err {
		case nil:
			return bytes.TrimSuffix(line, []byte("\n")), tooLong, nil
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if len(line) == 0 && !tooLong {
				return nil, false, io.EOF
			}
			return line, tooLong, nil
		default:
			return nil, false, err
		}
	}
}

// Skipped returns the number of malformed records dropped so far.
func (r *Reader) Skipped() int { return r.skipped }

// Ignored returns the number of recognized-but-uninterpreted records so far.
func (r *Reader) Ignored() int { return r.ignored }

// mapRecord converts a raw listener record into a typed event.
// Returns ok=false for record kinds the engine does not interpret.
func mapRecord(raw *rawRecord) (Event, bool) {
	switch raw.Event {
	case rawTaskEnd:
		return mapTaskEnd(raw), true

	case rawStageCompleted:
		stageID := raw.StageID
		payload := &StagePayload{StageID: stageID}
		if raw.StageInfo != nil {
			payload.StageID = raw.StageInfo.StageID
			payload.StageName = raw.StageInfo.StageName
			payload.SubmissionTimeMs = raw.StageInfo.SubmissionTime
			payload.CompletionTimeMs = raw.StageInfo.CompletionTime
		}
		return Event{
			Kind:        KindStageCompleted,
			TimestampMs: payload.CompletionTimeMs,
			StageID:     payload.StageID,
			Stage:       payload,
		}, true

	case rawStageSubmitted:
		payload := &StagePayload{}
		if raw.StageInfo != nil {
			payload.StageID = raw.StageInfo.StageID
			payload.StageName = raw.StageInfo.StageName
			payload.SubmissionTimeMs = raw.StageInfo.SubmissionTime
		}
		if payload.SubmissionTimeMs == 0 {
			payload.SubmissionTimeMs = raw.Timestamp
		}
		return Event{
			Kind:        KindStageSubmitted,
			TimestampMs: payload.SubmissionTimeMs,
			StageID:     payload.StageID,
			Stage:       payload,
		}, true

	case rawApplicationStart:
		return Event{
			Kind:        KindApplicationStart,
			TimestampMs: raw.Timestamp,
			App:         &AppPayload{AppID: raw.AppID, AppName: raw.AppName},
		}, true

	case rawApplicationEnd:
		return Event{
			Kind:        KindApplicationEnd,
			TimestampMs: raw.Timestamp,
			App:         &AppPayload{},
		}, true

	case rawExecutorAdded:
		return Event{
			Kind:        KindExecutorAdded,
			TimestampMs: raw.Timestamp,
			ExecutorID:  raw.ExecutorID,
		}, true
	}

	return Event{}, false
}

// mapTaskEnd builds TaskMetrics from a TaskEnd record. Missing metric
// groups decode to zeros, which is the correct neutral value.
func mapTaskEnd(raw *rawRecord) Event {
	task := &models.TaskMetrics{StageID: raw.StageID}
	executorID := ""

	var launch, finish int64
	if raw.TaskInfo != nil {
		task.TaskID = raw.TaskInfo.TaskID
		task.Failed = raw.TaskInfo.Failed
		executorID = raw.TaskInfo.ExecutorID
		launch = raw.TaskInfo.LaunchTime
		finish = raw.TaskInfo.FinishTime
	}
	task.EndTimeMs = finish
	if finish > launch {
		task.DurationMs = finish - launch
	}

	if m := raw.TaskMetrics; m != nil {
		task.BytesRead = m.InputMetrics.BytesRead
		task.BytesWritten = m.OutputMetrics.BytesWritten
		task.ShuffleReadBytes = m.ShuffleReadMetrics.RemoteBytesRead + m.ShuffleReadMetrics.LocalBytesRead
		task.ShuffleWriteBytes = m.ShuffleWriteMetrics.ShuffleBytesWritten
		task.SpillBytes = m.DiskBytesSpilled
		task.ReadTimeMs = m.ShuffleReadMetrics.FetchWaitTime
		task.ResultSerializationMs = m.ResultSerializationTime
		task.GCTimeMs = m.JVMGCTime

		// Scheduler delay is the wall-clock time not accounted for by
		// executor work, clamped at zero for clock-skewed records.
		delay := task.DurationMs - m.ExecutorRunTime - m.ResultSerializationTime - m.ExecutorDeserializeTime
		if delay > 0 {
			task.SchedulerDelayMs = delay
		}
	}

	return Event{
		Kind:        KindTaskEnd,
		TimestampMs: finish,
		StageID:     raw.StageID,
		Task:        task,
		ExecutorID:  executorID,
	}
}
