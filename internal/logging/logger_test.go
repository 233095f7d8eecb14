package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wr-burden-mcp-server/internal/domain"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("debug", "json", &buf)

	logger.WithField("tool", "classify_burden").Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "classify_burden", entry["tool"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("info", "text", &buf)

	logger.Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestNewWithWriter_UnknownLevel(t *testing.T) {
	logger := NewWithWriter("loud", "json", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNew_FromConfig(t *testing.T) {
	logger := New(domain.LoggingConfig{Level: "warn", Format: "json", Output: "stderr"})
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
}

func TestLogOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("debug", "json", &buf)

	LogOperation(logger, OperationToolCall, "classify_burden", time.Now(), nil, logrus.Fields{"jobs": 2})
	LogOperation(logger, OperationToolCall, "generate_report", time.Now(), errors.New("boom"), nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var ok, failed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ok))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failed))

	assert.Equal(t, true, ok["success"])
	assert.Equal(t, float64(2), ok["jobs"])
	assert.Equal(t, "debug", ok["level"])
	assert.Equal(t, false, failed["success"])
	assert.Equal(t, "boom", failed["error"])
	assert.Equal(t, "warning", failed["level"])
}
