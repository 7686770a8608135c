package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("hello", String("path", "/tmp/a.mkv"), Int("tracks", 3))

	out := buf.String()
	if !strings.Contains(out, "INFO") {
		t.Fatalf("expected level label in output, got %q", out)
	}
	if !strings.Contains(out, "path=/tmp/a.mkv") {
		t.Fatalf("expected path attribute in output, got %q", out)
	}
	if !strings.Contains(out, "tracks=3") {
		t.Fatalf("expected tracks attribute in output, got %q", out)
	}
}

func TestComponentAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	NewComponentLogger(logger, "remuxer").Info("done")

	if !strings.Contains(buf.String(), "[remuxer]") {
		t.Fatalf("expected component marker, got %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Fatalf("info record should be filtered, got %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn record should be emitted, got %q", out)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestQuotedValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("msg", String("name", "Director Commentary"))

	if !strings.Contains(buf.String(), `name="Director Commentary"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestNewToFileAppendsToLogFile(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()

	logger, closeLog, err := NewToFile(Options{Level: "info", Format: "console", Output: &buf}, dir, "test.log")
	if err != nil {
		t.Fatalf("NewToFile returned error: %v", err)
	}

	logger.Info("persisted", String("path", "/tmp/a.mkv"))
	if err := closeLog(); err != nil {
		t.Fatalf("close log file: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "persisted") {
		t.Fatalf("expected record in log file, got %q", data)
	}
	if !strings.Contains(buf.String(), "persisted") {
		t.Fatalf("expected record on primary output, got %q", buf.String())
	}
}

func TestNewToFileWithoutDirectory(t *testing.T) {
	var buf bytes.Buffer

	logger, closeLog, err := NewToFile(Options{Format: "console", Output: &buf}, "", "test.log")
	if err != nil {
		t.Fatalf("NewToFile returned error: %v", err)
	}

	logger.Info("primary only")
	if err := closeLog(); err != nil {
		t.Fatalf("close returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "primary only") {
		t.Fatalf("expected record on primary output, got %q", buf.String())
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(nil, slog.LevelError) {
		t.Fatal("noop logger should report disabled")
	}
}
