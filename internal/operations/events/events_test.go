package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusInQueue, "in_queue"},
		{StatusRunning, "running"},
		{StatusSucceeded, "succeeded"},
		{StatusFailed, "failed"},
		{StatusCanceled, "canceled"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	require.False(t, StatusInQueue.IsTerminal())
	require.False(t, StatusRunning.IsTerminal())
	require.True(t, StatusSucceeded.IsTerminal())
	require.True(t, StatusFailed.IsTerminal())
	require.True(t, StatusCanceled.IsTerminal())
}

func TestVerdict_String(t *testing.T) {
	tests := []struct {
		verdict  Verdict
		expected string
	}{
		{VerdictSuccess, "success"},
		{VerdictFailure, "failure"},
		{VerdictCanceled, "canceled"},
		{VerdictAutoRetry, "auto_retry"},
		{Verdict(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.verdict.String())
		})
	}
}

func TestLogCategory_String(t *testing.T) {
	tests := []struct {
		category LogCategory
		expected string
	}{
		{CategoryOperationInfo, "operation_info"},
		{CategoryProgress, "progress"},
		{CategoryStandardOutput, "stdout"},
		{CategoryStandardError, "stderr"},
		{LogCategory(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.category.String())
		})
	}
}
