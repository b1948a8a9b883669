package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func parseEntry(t *testing.T, line []byte) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v (line=%q)", err, line)
	}
	return entry
}

func TestNewWithWriterKeyRenames(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info("hello")

	entry := parseEntry(t, buf.Bytes())
	if _, ok := entry["timestamp"]; !ok {
		t.Error("entry missing timestamp key")
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["message"] != "hello" {
		t.Errorf("message = %v, want hello", entry["message"])
	}
	for _, legacy := range []string{"time", "msg"} {
		if _, ok := entry[legacy]; ok {
			t.Errorf("entry should not carry slog default key %q", legacy)
		}
	}
}

func TestWarnLevelSpelledWarning(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Warn("careful")

	entry := parseEntry(t, buf.Bytes())
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want warning", entry["level"])
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
	}{
		{name: "debug level emits debug", level: "debug", wantDebug: true},
		{name: "warn level drops debug", level: "warn", wantDebug: false},
		{name: "error level drops debug", level: "error", wantDebug: false},
		{name: "invalid level defaults to info", level: "invalid", wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(tt.level, &buf)

			log.Debug("debug line")

			got := buf.Len() > 0
			if got != tt.wantDebug {
				t.Errorf("debug emitted = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestLoggerWithModule(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithModule("vecindex").Info("built index")

	entry := parseEntry(t, buf.Bytes())
	if entry["module"] != "vecindex" {
		t.Errorf("module = %v, want vecindex", entry["module"])
	}
}

func TestLoggerWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithRequestID("req-42").Info("handled")

	entry := parseEntry(t, buf.Bytes())
	if entry["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", entry["request_id"])
	}
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithError(errors.New("boom")).Error("load failed")

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("entry should carry the error text, got %s", buf.String())
	}
}

func TestLoggerChainedFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithModule("rag").
		WithField("intent", "comparison").
		WithFields(map[string]any{"count": 3}).
		Info("answered")

	entry := parseEntry(t, buf.Bytes())
	if entry["module"] != "rag" {
		t.Errorf("module = %v, want rag", entry["module"])
	}
	if entry["intent"] != "comparison" {
		t.Errorf("intent = %v, want comparison", entry["intent"])
	}
	if entry["count"] != float64(3) {
		t.Errorf("count = %v, want 3", entry["count"])
	}
}
