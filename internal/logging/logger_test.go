package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_WritesRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	log, err := NewLogger(dir, "job", false)
	require.NoError(t, err)

	log.Info("test_message_from_logging_test")
	require.NoError(t, log.Sync())

	b, err := os.ReadFile(filepath.Join(dir, "job.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"test_message_from_logging_test"`)
	assert.Contains(t, string(b), `"ts":`)
}

func TestNewLogger_DefaultNameAndConsole(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(dir, "", true)
	require.NoError(t, err)
	log.Warn("visible_on_stderr")
	_ = log.Sync()

	_, err = os.Stat(filepath.Join(dir, "cronbeat.log"))
	assert.NoError(t, err)
}

func TestNewConsole_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsole(zapcore.AddSync(&buf), zap.WarnLevel)

	log.Info("hidden")
	log.Warn("ping_failed", zap.String("monitor", "nightly"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "ping_failed")
	assert.Contains(t, out, "nightly")
}
