package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: LogLevelInfo, Format: "json", Output: &buf})

	logger.Info("run started", "personas", 3)

	out := buf.String()
	assert.Contains(t, out, `"msg":"run started"`)
	assert.Contains(t, out, `"personas":3`)
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: LogLevelWarn, Format: "text", Output: &buf})

	logger.Info("suppressed")
	logger.Warn("emitted")

	assert.NotContains(t, buf.String(), "suppressed")
	assert.Contains(t, buf.String(), "emitted")
}

func TestRunLogger_Context(t *testing.T) {
	var buf bytes.Buffer
	base := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))

	logger := NewRunLogger(base).WithPersona("p1").WithUseCase("uc9")
	logger.Info("embedding conversation", "index", 1)

	out := buf.String()
	assert.Contains(t, out, "persona_id=p1")
	assert.Contains(t, out, "use_case_id=uc9")
	assert.Contains(t, out, "index=1")
}

func TestRunLogger_NilInner(t *testing.T) {
	logger := NewRunLogger(nil)
	assert.NotPanics(t, func() { logger.Error("dropped") })
}
