// Package logging builds the structured logrus loggers shared by the HTTP
// server, the MCP server and the CLI.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wr-burden-mcp-server/internal/domain"
)

// Operation types
const (
	OperationToolCall   = "tool_call"
	OperationEvaluation = "evaluation"
	OperationPresetLoad = "preset_load"
)

// New creates a logger from the logging configuration. Unknown levels fall
// back to info; unknown outputs fall back to stdout.
func New(cfg domain.LoggingConfig) *logrus.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	return NewWithWriter(cfg.Level, cfg.Format, out)
}

// NewWithWriter creates a logger writing to out.
func NewWithWriter(level, format string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	return logger
}

// Discard returns a logger that drops everything. Used by tests and by the
// CLI when output must stay machine-readable.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// LogOperation records the outcome of one operation with its duration.
// Patient identifiers must not be passed in fields.
func LogOperation(logger logrus.FieldLogger, opType, name string, start time.Time, err error, fields logrus.Fields) {
	entry := logger.WithFields(logrus.Fields{
		"operation_type": opType,
		"operation":      name,
		"duration_ms":    time.Since(start).Milliseconds(),
		"success":        err == nil,
	})
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	if err != nil {
		entry.WithError(err).Warn("Operation failed")
		return
	}
	entry.Debug("Operation completed")
}
