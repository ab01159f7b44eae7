package eventlog

import "github.com/moolen/sparkmap/internal/models"

// Kind identifies a recognized lifecycle record kind
type Kind string

const (
	// KindTaskEnd carries per-task metrics
	KindTaskEnd Kind = "TaskEnd"
	// KindStageCompleted marks stage finalization
	KindStageCompleted Kind = "StageCompleted"
	// KindStageSubmitted marks stage submission (feeds stage timing)
	KindStageSubmitted Kind = "StageSubmitted"
	// KindApplicationStart carries application identity and start time
	KindApplicationStart Kind = "ApplicationStart"
	// KindApplicationEnd carries the application end time
	KindApplicationEnd Kind = "ApplicationEnd"
	// KindExecutorAdded registers an executor id
	KindExecutorAdded Kind = "ExecutorAdded"
)

// Event is a tagged variant over recognized lifecycle record kinds.
// Exactly one payload pointer is set, matching Kind. Events are created
// by the reader, consumed immediately by the aggregator, and not retained.
type Event struct {
	Kind        Kind
	TimestampMs int64
	StageID     int

	// Task is set for KindTaskEnd
	Task *models.TaskMetrics

	// Stage is set for KindStageSubmitted and KindStageCompleted
	Stage *StagePayload

	// App is set for KindApplicationStart and KindApplicationEnd
	App *AppPayload

	// ExecutorID is set for KindExecutorAdded and KindTaskEnd
	ExecutorID string
}

// StagePayload carries stage identity and lifecycle timing
type StagePayload struct {
	StageID          int
	StageName        string
	SubmissionTimeMs int64
	CompletionTimeMs int64
}

// AppPayload carries application identity
type AppPayload struct {
	AppID   string
	AppName string
}

// Raw Spark listener event records, newline-delimited JSON.
// Field names follow the Spark event log schema verbatim.

const (
	rawTaskEnd          = "SparkListenerTaskEnd"
	rawStageCompleted   = "SparkListenerStageCompleted"
	rawStageSubmitted   = "SparkListenerStageSubmitted"
	rawApplicationStart = "SparkListenerApplicationStart"
	rawApplicationEnd   = "SparkListenerApplicationEnd"
	rawExecutorAdded    = "SparkListenerExecutorAdded"
)

type rawRecord struct {
	Event       string          `json:"Event"`
	Timestamp   int64           `json:"Timestamp"`
	AppID       string          `json:"App ID"`
	AppName     string          `json:"App Name"`
	StageID     int             `json:"Stage ID"`
	ExecutorID  string          `json:"Executor ID"`
	StageInfo   *rawStageInfo   `json:"Stage Info"`
	TaskInfo    *rawTaskInfo    `json:"Task Info"`
	TaskMetrics *rawTaskMetrics `json:"Task Metrics"`
}

type rawStageInfo struct {
	StageID        int    `json:"Stage ID"`
	StageName      string `json:"Stage Name"`
	SubmissionTime int64  `json:"Submission Time"`
	CompletionTime int64  `json:"Completion Time"`
	NumberOfTasks  int    `json:"Number of Tasks"`
}

type rawTaskInfo struct {
	TaskID     int64  `json:"Task ID"`
	ExecutorID string `json:"Executor ID"`
	LaunchTime int64  `json:"Launch Time"`
	FinishTime int64  `json:"Finish Time"`
	Failed     bool   `json:"Failed"`
}

type rawTaskMetrics struct {
	ExecutorDeserializeTime int64           `json:"Executor Deserialize Time"`
	ExecutorRunTime         int64           `json:"Executor Run Time"`
	ResultSerializationTime int64           `json:"Result Serialization Time"`
	JVMGCTime               int64           `json:"JVM GC Time"`
	MemoryBytesSpilled      int64           `json:"Memory Bytes Spilled"`
	DiskBytesSpilled        int64           `json:"Disk Bytes Spilled"`
	InputMetrics            rawInputMetrics `json:"Input Metrics"`
	OutputMetrics           rawOutputMetric `json:"Output Metrics"`
	ShuffleReadMetrics      rawShuffleRead  `json:"Shuffle Read Metrics"`
	ShuffleWriteMetrics     rawShuffleWrite `json:"Shuffle Write Metrics"`
}

type rawInputMetrics struct {
	BytesRead int64 `json:"Bytes Read"`
}

type rawOutputMetric struct {
	BytesWritten int64 `json:"Bytes Written"`
}

type rawShuffleRead struct {
	RemoteBytesRead int64 `json:"Remote Bytes Read"`
	LocalBytesRead  int64 `json:"Local Bytes Read"`
	FetchWaitTime   int64 `json:"Fetch Wait Time"`
}

type rawShuffleWrite struct {
	ShuffleBytesWritten int64 `json:"Shuffle Bytes Written"`
}
