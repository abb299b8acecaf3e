package operation

import (
	"context"
	"fmt"

	"github.com/pkgops/pkgops/internal/operations/events"
)

// Body is the contract implemented by every concrete operation.
// The coordination core treats it as an opaque, side-effecting collaborator:
// Execute does the actual work (talking to a package manager backend, for
// example) and reports how the attempt went.
//
// Execute returning an error means the attempt crashed rather than ran and
// failed; the core collapses both into a failed outcome but keeps the
// distinction for diagnostics. Execute must tolerate being called again
// after returning VerdictAutoRetry.
//
// Cancellation is cooperative: the core never interrupts a running Execute.
// Implementations should watch ctx and the operation's cancel_requested
// event and stop themselves.
type Body interface {
	Execute(ctx context.Context) (events.Verdict, error)

	// Icon returns a resource locator for UI display.
	// It is a pure presentation concern, opaque to the core.
	Icon() string
}

// BodyFunc adapts a plain function to the Body interface with no icon.
type BodyFunc func(ctx context.Context) (events.Verdict, error)

func (f BodyFunc) Execute(ctx context.Context) (events.Verdict, error) { return f(ctx) }

func (BodyFunc) Icon() string { return "" }

// ErrorSink receives errors raised by task bodies for out-of-band
// diagnostic recording. The core forwards the error and moves on; the sink
// must not block.
type ErrorSink func(err error)

// TranslateFunc renders a display string from a template and positional
// arguments. The core treats its output as opaque; hosts plug in their
// localization layer here. The default is fmt.Sprintf.
type TranslateFunc func(format string, args ...any) string

func defaultTranslate(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
