package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Stderr: &buf})
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("navigated", "passage", "Cellar")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=navigated")
	assert.Contains(t, out, "passage=Cellar")
}

func TestNew_FanoutToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "taleweave.log")

	logger, closeFn, err := New(Options{Level: slog.LevelDebug, Stderr: &buf, File: path})
	require.NoError(t, err)

	logger.Debug("rendered", "passage", "Hallway")
	require.NoError(t, closeFn())

	assert.Contains(t, buf.String(), "msg=rendered")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "rendered", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "Hallway", rec["passage"])
}

func TestNew_BadFile(t *testing.T) {
	_, _, err := New(Options{File: filepath.Join(t.TempDir(), "missing", "x.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open log file")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("dropped") })
}
