package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"DEBUG":    zerolog.DebugLevel,
		" warn ":   zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
		"info":     zerolog.InfoLevel,
		"":         zerolog.InfoLevel,
		"verbose":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Output: &buf})

	logger.Info().Msg("hidden")
	logger.Warn().Str("endpoint", "Spot Ping").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"endpoint":"Spot Ping"`)
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "info", Output: &buf, Console: true, NoColor: true})

	logger.Info().Int("status", 200).Msg("call finished")

	out := buf.String()
	assert.Contains(t, out, "call finished")
	assert.Contains(t, out, "status=200")
	assert.NotContains(t, out, "{")
}

func TestForTUI_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketcli.log")

	logger, closer, err := ForTUI(path, "debug")
	require.NoError(t, err)
	logger.Debug().Msg("first")
	require.NoError(t, closer.Close())

	logger, closer, err = ForTUI(path, "debug")
	require.NoError(t, err)
	logger.Debug().Msg("second")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestForTUI_BadPath(t *testing.T) {
	_, _, err := ForTUI(filepath.Join(t.TempDir(), "missing", "x.log"), "info")
	assert.Error(t, err)
}
