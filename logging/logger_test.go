package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// TestAddWriter will test the Logger.AddWriter function to ensure that writers are registered once and receive
// log output.
func TestAddWriter(t *testing.T) {
	// Create a base logger with no writers
	logger := NewLogger(zerolog.InfoLevel)
	assert.Equal(t, 0, len(logger.writers))

	// Add a buffer as an unstructured writer
	var buf bytes.Buffer
	logger.AddWriter(&buf, STRUCTURED)
	assert.Equal(t, 1, len(logger.writers))

	// Adding the same writer again should be a no-op
	logger.AddWriter(&buf, STRUCTURED)
	assert.Equal(t, 1, len(logger.writers))

	// Log a message and ensure it reached the buffer
	logger.Info("updated greeting for case ", "fuzz_greeting")
	assert.True(t, strings.Contains(buf.String(), "updated greeting for case"))
}

// TestSubLoggerContext ensures that sub-loggers attach their key-value context to emitted logs.
func TestSubLoggerContext(t *testing.T) {
	// Create a base logger writing structured logs into a buffer
	var buf bytes.Buffer
	logger := NewLogger(zerolog.InfoLevel, &buf)

	// Create a sub-logger for a module and emit a log
	subLogger := logger.NewSubLogger("module", "runner")
	subLogger.Info("suite started")

	// The structured output should carry the module key
	assert.True(t, strings.Contains(buf.String(), "\"module\":\"runner\""))
	assert.True(t, strings.Contains(buf.String(), "suite started"))
}

// TestLogLevelFiltering ensures that logs below the configured level are discarded.
func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.WarnLevel, &buf)

	// Info is below warn, so nothing should be written
	logger.Info("should be filtered")
	assert.Equal(t, 0, buf.Len())

	// Warnings should pass through
	logger.Warn("shrink attempt budget exhausted")
	assert.True(t, strings.Contains(buf.String(), "shrink attempt budget exhausted"))
}
