package petango

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log output is not JSON: %v: %s", err, buf.String())
	}
	buf.Reset()
	return line
}

func TestZerologLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, zerolog.DebugLevel)

	testCases := []struct {
		log   func(string, ...any)
		level string
	}{
		{logger.Debug, "debug"},
		{logger.Info, "info"},
		{logger.Warn, "warn"},
		{logger.Error, "error"},
	}

	for _, tc := range testCases {
		tc.log("Cache miss", "cacheKey", "pet_details_1")
		line := decodeLogLine(t, &buf)
		if line["level"] != tc.level {
			t.Errorf("level = %v, want %s", line["level"], tc.level)
		}
		if line["message"] != "Cache miss" || line["cacheKey"] != "pet_details_1" {
			t.Errorf("unexpected line %v", line)
		}
		if line["component"] != "petango" {
			t.Errorf("component = %v", line["component"])
		}
	}
}

func TestZerologLoggerNotice(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, zerolog.InfoLevel)

	logger.Notice("No results from AdoptableSearch", "species", "cat")
	line := decodeLogLine(t, &buf)

	if line["level"] != "info" || line["severity"] != "notice" {
		t.Errorf("notice rendered as %v", line)
	}
	if line["species"] != "cat" {
		t.Errorf("species field missing: %v", line)
	}
}

func TestZerologLoggerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, zerolog.WarnLevel)

	logger.Debug("dropped")
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %s", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	var logger Logger = NopLogger{}
	logger.Debug("x")
	logger.Info("x")
	logger.Notice("x")
	logger.Warn("x")
	logger.Error("x", "k", "v")
}
