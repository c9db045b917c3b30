package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/boristopalov/batonpass/pkg/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "debug", Format: "json"}, "batonpass", zapcore.AddSync(&buf))

	log.Named("coordinator").Debug("episode ended", zap.Int("episode", 3))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "batonpass.coordinator", entry["logger"])
	assert.Equal(t, "episode ended", entry["msg"])
	assert.EqualValues(t, 3, entry["episode"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, "x", zapcore.AddSync(&buf))

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "loud", Format: "console"}, "x", zapcore.AddSync(&buf))

	log.Debug("dropped")
	log.Info("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batonpass.log")
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "info", Format: "console", File: path, MaxSizeMB: 1}, "x", zapcore.AddSync(&buf))

	log.Info("to both")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to both"`)
	assert.Contains(t, buf.String(), "to both")
}
