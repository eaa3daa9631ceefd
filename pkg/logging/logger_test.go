package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(9), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{" Info ", InfoLevel},
		{"warn", WarnLevel},
		{"Warning", WarnLevel},
		{"ERROR", ErrorLevel},
		{"invalid", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFieldConstructors(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		key   string
		value any
	}{
		{"String", String("key", "value"), "key", "value"},
		{"Int", Int("count", 42), "count", 42},
		{"Float64", Float64("ratio", 0.5), "ratio", 0.5},
		{"Bool", Bool("enabled", true), "enabled", true},
		{"Duration", Duration("timeout", 5*time.Second), "timeout", "5s"},
		{"Error", Error(errors.New("boom")), "error", "boom"},
		{"Error_nil", Error(nil), "error", nil},
		{"Phase", Phase("scanning"), "phase", "scanning"},
		{"Node", Node(7), "node", 7},
		{"Seed", Seed(99), "seed", uint64(99)},
		{"Outcome", Outcome("cancelled"), "outcome", "cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.key || tt.field.Value != tt.value {
				t.Errorf("%s() = %+v, want {Key:%s Value:%v}", tt.name, tt.field, tt.key, tt.value)
			}
		})
	}
}

func decode(t *testing.T, line []byte) LogEntry {
	t.Helper()
	var entry LogEntry
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("Failed to unmarshal %q: %v", line, err)
	}
	return entry
}

func TestJSONLogger_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)
	logger.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	logger.Info("phase started", Phase("scanning"), Node(3))

	entry := decode(t, buf.Bytes())
	if entry.Level != "INFO" || entry.Message != "phase started" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Time != "2024-05-01T10:00:00Z" {
		t.Errorf("Time = %q", entry.Time)
	}
	if entry.Fields["phase"] != "scanning" {
		t.Errorf("Fields[phase] = %v", entry.Fields["phase"])
	}
	if entry.Fields["node"] != float64(3) { // JSON numbers decode as float64
		t.Errorf("Fields[node] = %v", entry.Fields["node"])
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(lines))
	}
	if decode(t, []byte(lines[0])).Level != "WARN" {
		t.Error("first entry should be WARN")
	}
	if decode(t, []byte(lines[1])).Level != "ERROR" {
		t.Error("second entry should be ERROR")
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("controller"), Session("abc"))
	child.Info("transition", Action("scan"))

	entry := decode(t, buf.Bytes())
	for key, want := range map[string]string{"component": "controller", "session": "abc", "action": "scan"} {
		if entry.Fields[key] != want {
			t.Errorf("Fields[%s] = %v, want %s", key, entry.Fields[key], want)
		}
	}

	buf.Reset()
	logger.Info("parent")
	if strings.Contains(buf.String(), "controller") {
		t.Error("child fields leaked into the parent logger")
	}
}

func TestJSONLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.SetLevel(ErrorLevel)
	if logger.GetLevel() != ErrorLevel {
		t.Errorf("After SetLevel, level = %v, want ErrorLevel", logger.GetLevel())
	}

	logger.Info("info")
	if buf.Len() != 0 {
		t.Error("Expected no output for Info at ErrorLevel")
	}
	logger.Error("error")
	if buf.Len() == 0 {
		t.Error("Expected output for Error at ErrorLevel")
	}
}

func TestJSONLogger_NoFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	NewJSONLogger(&buf, InfoLevel).Info("message without fields")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if _, exists := entry["fields"]; exists {
		t.Error("Expected fields key to be omitted when empty")
	}
}

func TestTimer(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	timer := StartTimer(logger, "phase finished", Phase("analyzing"))
	elapsed := timer.EndWithLevel(WarnLevel, Outcome("cancelled"))

	entry := decode(t, buf.Bytes())
	if entry.Level != "WARN" {
		t.Errorf("Level = %v, want WARN", entry.Level)
	}
	if entry.Fields["latency"] != elapsed.String() {
		t.Errorf("latency = %v, want %v", entry.Fields["latency"], elapsed)
	}
	if entry.Fields["phase"] != "analyzing" || entry.Fields["outcome"] != "cancelled" {
		t.Errorf("Fields = %v", entry.Fields)
	}
}

func TestOpen(t *testing.T) {
	t.Run("empty path discards", func(t *testing.T) {
		logger, closer, err := Open("", DebugLevel)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if _, ok := logger.(NopLogger); !ok {
			t.Errorf("Open(\"\") = %T, want NopLogger", logger)
		}
		if err := closer.Close(); err != nil {
			t.Errorf("Close() = %v", err)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mimic.log")
		logger, closer, err := Open(path, InfoLevel)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		logger.Info("hello")
		if err := closer.Close(); err != nil {
			t.Fatalf("Close() = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() = %v", err)
		}
		if decode(t, bytes.TrimSpace(data)).Message != "hello" {
			t.Errorf("file content = %q", data)
		}
	})

	t.Run("bad path", func(t *testing.T) {
		if _, _, err := Open(filepath.Join(t.TempDir(), "missing", "x.log"), InfoLevel); err == nil {
			t.Error("expected an error for a missing directory")
		}
	})
}

func BenchmarkJSONLogger_Info(b *testing.B) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message",
			Phase("infiltrating"),
			Node(i),
		)
	}
}
