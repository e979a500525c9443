package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
)

func TestLogger_WritesKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, LevelInfo).With("step", "rosters")

	logger.Debug("hidden")
	logger.Error("fetch failed", "records", 0, "error", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line above debug level, got=%d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := sonic.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "fetch failed" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["step"] != "rosters" {
		t.Fatalf("expected inherited step field, got=%v", entry["step"])
	}
	if entry["error"] != "boom" {
		t.Fatalf("expected error field, got=%v", entry["error"])
	}
	if entry["level"] != "ERROR" {
		t.Fatalf("unexpected level: %v", entry["level"])
	}
}

func TestZapFields_OddArgs(t *testing.T) {
	fields := zapFields([]any{"a", 1, 42})
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got=%d", len(fields))
	}
	if fields[1].Key != "arg" {
		t.Fatalf("expected fallback key for non-string key, got=%q", fields[1].Key)
	}
}

func TestNew_FormatFallback(t *testing.T) {
	if New("JSON", LevelInfo) == nil || New("unknown", LevelInfo) == nil {
		t.Fatalf("expected logger for every format")
	}
}
