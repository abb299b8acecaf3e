// Package operation implements the lifecycle state machine for user-initiated
// background operations: validation, queueing, execution with auto-retry, and
// terminal-state reporting over a pubsub event stream.
//
// # Lifecycle
//
// Every run moves through the same edges:
//
//	InQueue -> Running -> Succeeded | Failed | Canceled
//
// InQueue can also end in Canceled (external cancel while waiting). A
// finished operation can be re-run via Retry, which restarts the entrypoint
// as a fresh logical run while preserving the same metadata and log buffer.
//
// # Observation
//
// There is no return value for outcomes. Everything a caller can know about
// an operation flows through its event broker and its log buffer.
package operation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/pkgops/pkgops/internal/log"
	"github.com/pkgops/pkgops/internal/operations/events"
	"github.com/pkgops/pkgops/internal/operations/metrics"
	"github.com/pkgops/pkgops/internal/operations/scheduler"
	"github.com/pkgops/pkgops/internal/operations/tracing"
	"github.com/pkgops/pkgops/internal/pubsub"
)

// errAutoRetry drives the retry loop; it never leaves executeLoop.
var errAutoRetry = errors.New("task body requested auto-retry")

// ErrNilBody is returned by New when no task body is supplied.
var ErrNilBody = errors.New("operation requires a task body")

// ErrNilScheduler is returned by New when queueing is enabled but no
// scheduler is supplied.
var ErrNilScheduler = errors.New("queued operation requires a scheduler")

// Config holds the collaborators and policies for creating an Operation.
type Config struct {
	// Metadata is the descriptive bundle; created empty if nil.
	Metadata *Metadata

	// Body is the externally supplied task implementation. Required.
	Body Body

	// Scheduler is the process-wide queue. Required unless QueueDisabled.
	Scheduler *scheduler.Scheduler

	// QueueDisabled skips queueing entirely; the operation proceeds
	// directly to execution.
	QueueDisabled bool

	// MaxAutoRetries caps task-body invocations per run when the body
	// keeps answering auto-retry. 0 preserves the unbounded behavior: a
	// body that always asks for auto-retry will loop forever.
	MaxAutoRetries uint

	// EventBuffer sizes each subscriber's event channel. 0 uses the
	// broker default.
	EventBuffer int

	// Sink receives unexpected task-body errors. Defaults to the
	// structured logger.
	Sink ErrorSink

	// Translate renders display strings. Defaults to fmt.Sprintf.
	Translate TranslateFunc

	// Tracer records spans for task-body attempts. Defaults to a no-op.
	Tracer trace.Tracer
}

// Operation is one user-initiated task tracked by the coordination core.
type Operation struct {
	meta  *Metadata
	body  Body
	sched *scheduler.Scheduler

	queueDisabled  bool
	maxAutoRetries uint

	sink      ErrorSink
	translate TranslateFunc
	tracer    trace.Tracer

	broker  *pubsub.Broker[events.Event]
	logbuf  *Buffer
	metrics *metrics.OperationMetrics

	mu        sync.Mutex
	status    events.Status
	started   bool
	skipQueue bool
	lastErr   error
}

// New creates an operation from the given configuration.
func New(cfg Config) (*Operation, error) {
	if cfg.Body == nil {
		return nil, ErrNilBody
	}
	if cfg.Scheduler == nil && !cfg.QueueDisabled {
		return nil, ErrNilScheduler
	}

	meta := cfg.Metadata
	if meta == nil {
		meta = NewMetadata()
	}

	translate := cfg.Translate
	if translate == nil {
		translate = defaultTranslate
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("operation")
	}

	op := &Operation{
		meta:           meta,
		body:           cfg.Body,
		sched:          cfg.Scheduler,
		queueDisabled:  cfg.QueueDisabled,
		maxAutoRetries: cfg.MaxAutoRetries,
		translate:      translate,
		tracer:         tracer,
		broker:         pubsub.NewBrokerWithBuffer[events.Event](cfg.EventBuffer),
		logbuf:         NewBuffer(),
		metrics:        metrics.New(),
		status:         events.StatusInQueue,
	}

	sink := cfg.Sink
	if sink == nil {
		sink = func(err error) {
			log.ErrorErr(log.CatOp, "unexpected task body error", err, "operation", meta.ID())
		}
	}
	op.sink = sink

	return op, nil
}

// Metadata returns the operation's descriptive bundle.
func (o *Operation) Metadata() *Metadata { return o.meta }

// Log returns the operation's log buffer.
func (o *Operation) Log() *Buffer { return o.logbuf }

// Metrics returns the operation's execution counters.
func (o *Operation) Metrics() *metrics.OperationMetrics { return o.metrics }

// Events returns the broker carrying the operation's lifecycle events.
func (o *Operation) Events() *pubsub.Broker[events.Event] { return o.broker }

// Icon returns the task body's display icon locator.
func (o *Operation) Icon() string { return o.body.Icon() }

// Status returns the operation's current lifecycle status.
func (o *Operation) Status() events.Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Started reports whether the run entrypoint has ever been invoked.
func (o *Operation) Started() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.started
}

// LastError returns the most recent task-body error, if any.
func (o *Operation) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Run is the single entrypoint driving a full lifecycle pass: metadata
// validation, optional queueing, execution with auto-retry, and terminal
// reporting.
//
// The returned error covers only pre-flight conditions: a ConfigError for
// unpopulated metadata, scheduler.ErrAlreadyQueued for a duplicate run, or
// the context error if ctx ends during the queue wait. Task outcomes never
// surface here; they are observable through Events and the log buffer.
func (o *Operation) Run(ctx context.Context) error {
	if err := o.meta.Validate(); err != nil {
		return err
	}

	id := o.meta.ID()
	if !o.queueDisabled {
		if _, member := o.sched.Position(id); member {
			return scheduler.ErrAlreadyQueued
		}
	}

	o.mu.Lock()
	o.started = true
	o.skipQueue = false
	o.lastErr = nil
	o.mu.Unlock()

	o.setStatus(events.StatusInQueue)

	if !o.queueDisabled {
		if err := o.sched.Enqueue(id); err != nil {
			return err
		}
		o.publish(events.Event{Type: events.Enqueued})
		log.Debug(log.CatQueue, "operation enqueued", "operation", id, "queue_len", o.sched.Len())

		waitStart := time.Now()
		proceed, err := o.waitForTurn(ctx)
		o.metrics.RecordQueueWait(time.Since(waitStart))
		if err != nil {
			o.sched.Remove(id)
			return err
		}
		if !proceed {
			// Removed from the queue externally: treated as cancellation,
			// the run ends silently.
			log.Debug(log.CatQueue, "operation removed while waiting", "operation", id)
			return nil
		}
	}

	o.publish(events.Event{Type: events.Starting})
	o.logLine(o.meta.OperationInformation, events.CategoryOperationInfo)
	o.setStatus(events.StatusRunning)
	log.Debug(log.CatOp, "operation running", "operation", id, "title", o.meta.Title)

	runStart := time.Now()
	verdict := o.executeLoop(ctx)

	if !o.queueDisabled {
		o.sched.Remove(id) // idempotent if already absent
	}
	o.publish(events.Event{Type: events.Finished})

	o.finish(verdict)
	o.metrics.RecordRun(time.Since(runStart), o.Status().String())
	return nil
}

// waitForTurn blocks until the operation reaches the head of the queue or
// skip-queue is requested. It returns proceed=false when the operation was
// removed from the queue externally, and an error only when ctx ends.
func (o *Operation) waitForTurn(ctx context.Context) (bool, error) {
	id := o.meta.ID()
	lastReported := -1

	for {
		if o.skipRequested() {
			return true, nil
		}

		// Grab the change channel before inspecting position so a mutation
		// in between still wakes the select below.
		changed := o.sched.Changed()

		pos, member := o.sched.Position(id)
		if !member {
			if o.skipRequested() {
				return true, nil
			}
			return false, nil
		}
		if pos == 0 {
			return true, nil
		}
		if pos != lastReported {
			o.logLine(o.translate("Waiting in line, position %d", pos), events.CategoryProgress)
			lastReported = pos
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-changed:
		}
	}
}

// executeLoop invokes the task body until it produces a non-auto-retry
// verdict. Auto-retry re-invokes immediately, with no backoff and, unless a
// cap is configured, no iteration limit.
func (o *Operation) executeLoop(ctx context.Context) events.Verdict {
	verdict := events.VerdictFailure
	attempt := 0

	err := retry.Do(
		func() error {
			attempt++
			v, err := o.invoke(ctx, attempt)
			if err != nil {
				o.recordBodyError(err)
				verdict = events.VerdictFailure
				return nil
			}
			if v == events.VerdictAutoRetry {
				return errAutoRetry
			}
			verdict = v
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(o.maxAutoRetries),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errAutoRetry) }),
		retry.LastErrorOnly(true),
	)

	if err != nil {
		if ctx.Err() != nil {
			return events.VerdictCanceled
		}
		// Auto-retry cap exhausted.
		o.logLine(o.translate("Giving up after %d attempts", attempt), events.CategoryStandardError)
		return events.VerdictFailure
	}
	return verdict
}

// invoke runs one task-body attempt under a tracing span, converting panics
// into errors so a crashing body can never take the coordinating process
// down with it.
func (o *Operation) invoke(ctx context.Context, attempt int) (verdict events.Verdict, err error) {
	o.metrics.RecordAttempt()

	ctx, span := tracing.StartAttempt(ctx, o.tracer, o.meta.ID(), o.meta.Title, attempt)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
			tracing.RecordError(span, err)
		}
	}()

	verdict, err = o.body.Execute(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		return verdict, err
	}
	tracing.RecordVerdict(span, verdict.String())
	return verdict, nil
}

// recordBodyError forwards a task error to the sink and appends its textual
// representation to the log buffer, line by line. The error stops here.
func (o *Operation) recordBodyError(err error) {
	o.mu.Lock()
	o.lastErr = err
	o.mu.Unlock()

	o.sink(err)
	for _, line := range strings.Split(err.Error(), "\n") {
		o.logLine(line, events.CategoryStandardError)
	}
}

// finish maps the final verdict to a terminal status and emits the matching
// log lines and events.
func (o *Operation) finish(verdict events.Verdict) {
	switch verdict {
	case events.VerdictSuccess:
		o.logLine(o.meta.SuccessMessage, events.CategoryStandardOutput)
		o.setStatus(events.StatusSucceeded)
		o.publish(events.Event{Type: events.Succeeded})
	case events.VerdictCanceled:
		o.logLine(o.translate("Operation canceled by user"), events.CategoryStandardError)
		o.setStatus(events.StatusCanceled)
	default:
		o.logLine(o.meta.FailureMessage, events.CategoryStandardError)
		o.logLine(o.translate("%s. Click the line for details", o.meta.FailureMessage), events.CategoryProgress)
		o.setStatus(events.StatusFailed)
		o.publish(events.Event{Type: events.Failed, Err: o.LastError()})
	}
	log.Debug(log.CatOp, "operation finished", "operation", o.meta.ID(), "verdict", verdict, "status", o.Status())
}

// Cancel requests cancellation. It is a no-op on terminal statuses.
//
// While running, cancellation is cooperative: the core sets its own status
// and broadcasts cancel_requested for the task body to observe; the body is
// never interrupted forcibly. While queued, the operation is also removed
// from the scheduling queue, which aborts its wait.
//
// The terminal status is asserted both before and after the signal so
// subscribers see it regardless of when they attach.
func (o *Operation) Cancel() {
	o.mu.Lock()
	st := o.status
	o.mu.Unlock()

	if st.IsTerminal() {
		return
	}

	switch st {
	case events.StatusRunning:
		o.setStatus(events.StatusCanceled)
		o.publish(events.Event{Type: events.CancelRequested})
		o.setStatus(events.StatusCanceled)
	case events.StatusInQueue:
		o.setStatus(events.StatusCanceled)
		if o.sched != nil {
			o.sched.Remove(o.meta.ID())
		}
		o.setStatus(events.StatusCanceled)
	}
	log.Debug(log.CatOp, "cancel requested", "operation", o.meta.ID(), "from_status", st)
}

// SkipQueue promotes the operation past the FIFO order. It is a no-op
// unless the operation is currently waiting in the queue.
//
// The skip flag is raised before the queue removal so the wait loop cannot
// mistake the removal for an external cancellation.
func (o *Operation) SkipQueue() {
	o.mu.Lock()
	if o.status != events.StatusInQueue {
		o.mu.Unlock()
		return
	}
	o.skipQueue = true
	o.mu.Unlock()

	if o.sched != nil {
		o.sched.Remove(o.meta.ID())
	}
	log.Debug(log.CatQueue, "skip queue requested", "operation", o.meta.ID())
}

// Retry re-runs a finished operation as an independent unit of work.
// It is a no-op while the operation is queued or running. The caller is not
// blocked; the new run is observed through the event broker, and the log
// buffer and metadata carry over.
func (o *Operation) Retry(ctx context.Context) {
	o.mu.Lock()
	st := o.status
	o.mu.Unlock()

	if st == events.StatusRunning || st == events.StatusInQueue {
		return
	}

	log.Debug(log.CatOp, "retrying operation", "operation", o.meta.ID(), "from_status", st)
	go func() {
		_ = o.Run(ctx)
	}()
}

// setStatus records the new status and broadcasts status_changed
// synchronously before returning. Re-asserting the same status publishes
// again on purpose.
func (o *Operation) setStatus(st events.Status) {
	o.mu.Lock()
	o.status = st
	o.mu.Unlock()

	o.publish(events.Event{Type: events.StatusChanged, Status: st})
}

// logLine broadcasts a log line and retains it in the buffer unless it is
// an ephemeral progress tick.
func (o *Operation) logLine(line string, category events.LogCategory) {
	o.logbuf.Append(line, category)
	o.publish(events.Event{
		Type:     events.LogLine,
		Line:     line,
		Category: category,
	})
}

func (o *Operation) publish(ev events.Event) {
	ev.OperationID = o.meta.ID()
	o.broker.Publish(ev)
}

func (o *Operation) skipRequested() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.skipQueue
}

// PanicError wraps a value recovered from a panicking task body.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return defaultTranslate("task body panicked: %v", e.Value)
}
