package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			New(Config{Level: tc.level, Out: &bytes.Buffer{}})
			assert.Equal(t, tc.want, zerolog.GlobalLevel())
		})
	}
	New(Config{Level: "info", Out: &bytes.Buffer{}})
}

func TestNew_WritesToConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Out: &buf})
	l.Info().Str("ticker", "MSFT").Msg("fetched")
	assert.Contains(t, buf.String(), `"ticker":"MSFT"`)
	assert.Contains(t, buf.String(), "fetched")
}

func TestNew_PrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Pretty: true, Out: &buf})
	l.Info().Msg("pretty message")
	assert.Contains(t, buf.String(), "pretty message")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestNew_ErrorLevelFiltersLower(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "error", Out: &buf})
	l.Info().Msg("should not appear")
	assert.NotContains(t, buf.String(), "should not appear")
	l.Error().Msg("should appear")
	assert.Contains(t, buf.String(), "should appear")
	New(Config{Level: "info", Out: &buf})
}
