package log

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_WritesFormattedEntry(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)
	SetMinLevel(LevelDebug)

	Info(CatQueue, "operation enqueued", "id", "op-1", "position", 2)

	line := buf.String()
	require.Contains(t, line, "[INFO]")
	require.Contains(t, line, "[queue]")
	require.Contains(t, line, "operation enqueued")
	require.Contains(t, line, "id=op-1")
	require.Contains(t, line, "position=2")
	require.True(t, strings.HasSuffix(line, "\n"))
}

func TestLog_MinLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)
	SetMinLevel(LevelWarn)

	Debug(CatOp, "should be dropped")
	Info(CatOp, "should be dropped too")
	Warn(CatOp, "kept")

	out := buf.String()
	require.NotContains(t, out, "should be dropped")
	require.Contains(t, out, "kept")
}

func TestLog_Disabled(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)
	SetEnabled(false)

	Error(CatOp, "ignored")
	require.Empty(t, buf.String())

	SetEnabled(true)
	Error(CatOp, "recorded")
	require.Contains(t, buf.String(), "recorded")
}

func TestLog_ErrorErr(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)
	SetMinLevel(LevelDebug)

	ErrorErr(CatOp, "task body crashed", assertError{})

	require.Contains(t, buf.String(), "error=boom")
}

func TestLog_OddFieldCount(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)
	SetMinLevel(LevelDebug)

	Info(CatConfig, "loaded", "orphan")

	require.Contains(t, buf.String(), "orphan=<missing>")
}

func TestLog_ListenerReceivesEntries(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)
	SetMinLevel(LevelDebug)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Info(CatEvents, "broadcast me")

	select {
	case event := <-listener.Chan():
		require.Contains(t, event.Payload, "broadcast me")
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "timeout waiting for log event")
	}
}

type assertError struct{}

func (assertError) Error() string { return "boom" }
