package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ i.Logger = &Logger{}

func TestNew(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		_, err := New("", "", &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("nil writer", func(t *testing.T) {
		_, err := New("APP", "", nil)
		assert.ErrorIs(t, err, ErrNilWriter)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := New("APP", "", &bytes.Buffer{}, Options{Level: "loud"})
		assert.ErrorIs(t, err, ErrInvalidLevel)
	})
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("MAZE", "\033[36m", &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("carved")
	logger.Warning("fallback")
	logger.Error("broken")

	out := buf.String()
	assert.NotContains(t, out, "hidden", "debug is below the default level")
	assert.Contains(t, out, "\033[36m[MAZE]\033[0m")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "carved")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "ERROR")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("MAZE", "", &buf, Options{Level: "DEBUG"})
	require.NoError(t, err)

	logger.Debug("repaired")
	assert.Contains(t, buf.String(), "repaired")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maze.log")
	logger, err := New("APP", "\033[32m", &bytes.Buffer{}, Options{File: path})
	require.NoError(t, err)

	logger.Info("server started")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &line))
	assert.Equal(t, "APP", line["logger"], "file lines carry no color codes")
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "server started", line["msg"])
}
