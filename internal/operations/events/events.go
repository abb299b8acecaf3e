// Package events defines the lifecycle vocabulary for background operations:
// statuses, task verdicts, log-line categories, and the typed event payload
// published via the pubsub broker.
package events

// Status represents an operation's position in its lifecycle.
type Status int

const (
	// StatusInQueue means the operation is waiting for its turn to run.
	// This is the initial status of every run.
	StatusInQueue Status = iota
	// StatusRunning means the operation's task body is executing.
	StatusRunning
	// StatusSucceeded means the task body finished with a success verdict (terminal).
	StatusSucceeded
	// StatusFailed means the task body finished with a failure verdict or crashed (terminal).
	StatusFailed
	// StatusCanceled means the operation was canceled while queued or running (terminal).
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusInQueue:
		return "in_queue"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if no further transition can leave the status
// without an explicit retry.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCanceled
}

// Verdict is the outcome of one task-body invocation attempt.
type Verdict int

const (
	// VerdictSuccess means the task finished its work.
	VerdictSuccess Verdict = iota
	// VerdictFailure means the task ran and failed.
	VerdictFailure
	// VerdictCanceled means the task observed a cancel request and stopped.
	VerdictCanceled
	// VerdictAutoRetry asks for an immediate re-invocation of the task body.
	VerdictAutoRetry
)

func (v Verdict) String() string {
	switch v {
	case VerdictSuccess:
		return "success"
	case VerdictFailure:
		return "failure"
	case VerdictCanceled:
		return "canceled"
	case VerdictAutoRetry:
		return "auto_retry"
	default:
		return "unknown"
	}
}

// LogCategory classifies a log line emitted by an operation.
type LogCategory int

const (
	// CategoryOperationInfo lines describe what the operation is doing.
	CategoryOperationInfo LogCategory = iota
	// CategoryProgress lines are ephemeral status ticks (queue position,
	// percentages). They are broadcast but never retained in the log buffer.
	CategoryProgress
	// CategoryStandardOutput lines carry normal task output.
	CategoryStandardOutput
	// CategoryStandardError lines carry error output.
	CategoryStandardError
)

func (c LogCategory) String() string {
	switch c {
	case CategoryOperationInfo:
		return "operation_info"
	case CategoryProgress:
		return "progress"
	case CategoryStandardOutput:
		return "stdout"
	case CategoryStandardError:
		return "stderr"
	default:
		return "unknown"
	}
}

// EventType identifies the kind of lifecycle event.
type EventType string

const (
	// StatusChanged is emitted synchronously on every status transition.
	StatusChanged EventType = "status_changed"
	// Enqueued is emitted when the operation joins the scheduling queue.
	Enqueued EventType = "enqueued"
	// CancelRequested signals the task body to stop; cancellation is cooperative.
	CancelRequested EventType = "cancel_requested"
	// LogLine is emitted for every log line, including ephemeral progress lines.
	LogLine EventType = "log_line"
	// Starting is emitted just before the task body runs for the first time.
	Starting EventType = "starting"
	// Finished is emitted when the execution loop exits, whatever the verdict.
	Finished EventType = "finished"
	// Succeeded is emitted when the operation reaches StatusSucceeded.
	Succeeded EventType = "succeeded"
	// Failed is emitted when the operation reaches StatusFailed.
	Failed EventType = "failed"
)

// Event is the payload broadcast for every lifecycle occurrence.
// Only the fields relevant to the Type are populated.
type Event struct {
	// Type identifies the kind of event.
	Type EventType
	// OperationID identifies which operation emitted the event.
	OperationID string
	// Status carries the new status for status_changed events.
	Status Status
	// Line contains the text for log_line events.
	Line string
	// Category classifies the line for log_line events.
	Category LogCategory
	// Err carries the task error for failed events, when one was raised.
	Err error
}
