package pkg

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for input, expected := range cases {
		assert.Equal(t, expected, parseLevel(input), "уровень для %q", input)
	}
}

func TestNewLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(&buf, "info")
	logger.Debug("не должно попасть в вывод")
	logger.Info("Запуск сервиса", "port", 8000)

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Запуск сервиса", record["msg"])
	assert.InDelta(t, 8000, record["port"], 0)
}
