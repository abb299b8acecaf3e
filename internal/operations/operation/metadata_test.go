package operation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fullMetadata() *Metadata {
	m := NewMetadata()
	m.Title = "Install vim"
	m.Status = "Installing vim..."
	m.SuccessTitle = "Installation succeeded"
	m.SuccessMessage = "vim was installed successfully"
	m.FailureTitle = "Installation failed"
	m.FailureMessage = "vim could not be installed"
	m.OperationInformation = "Starting package install: vim"
	return m
}

func TestMetadata_ValidateFull(t *testing.T) {
	require.NoError(t, fullMetadata().Validate())
}

func TestMetadata_ValidateEmptyFields(t *testing.T) {
	tests := []struct {
		field string
		clear func(*Metadata)
	}{
		{"Title", func(m *Metadata) { m.Title = "" }},
		{"Status", func(m *Metadata) { m.Status = "" }},
		{"SuccessTitle", func(m *Metadata) { m.SuccessTitle = "" }},
		{"SuccessMessage", func(m *Metadata) { m.SuccessMessage = "" }},
		{"FailureTitle", func(m *Metadata) { m.FailureTitle = "" }},
		{"FailureMessage", func(m *Metadata) { m.FailureMessage = "" }},
		{"OperationInformation", func(m *Metadata) { m.OperationInformation = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			m := fullMetadata()
			tt.clear(m)

			err := m.Validate()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			require.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestMetadata_IDGenerated(t *testing.T) {
	m1 := NewMetadata()
	m2 := NewMetadata()

	require.NotEmpty(t, m1.ID())
	require.NotEmpty(t, m2.ID())
	require.NotEqual(t, m1.ID(), m2.ID())
}
