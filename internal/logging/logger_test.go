package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediatidy/internal/testsupport"
)

func TestConsoleHandlerRendersAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl)).With("stage", "collect")

	logger.Info("resolved date", "path", "a b.jpg", "classification", "BOTH")

	line := buf.String()
	for _, want := range []string{"INFO", "resolved date", "stage=collect", `path="a b.jpg"`, "classification=BOTH"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("info line should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Fatal("warn line missing")
	}
}

func TestNewFromConfigTeesToLogFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	logger, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	logger.Info("tee check")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "mediatidy.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "tee check") {
		t.Fatalf("log file missing record:\n%s", data)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestFormatValueQuotesErrors(t *testing.T) {
	v := slog.AnyValue(errors.New("open file: permission denied"))
	if got := formatValue(v); got != `"open file: permission denied"` {
		t.Fatalf("formatValue = %s", got)
	}
}
