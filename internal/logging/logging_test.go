package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "warning", want: slog.LevelWarn},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "  ERROR ", want: slog.LevelError},
		{input: "critical", want: slog.LevelInfo, wantErr: true},
		{input: "", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrBadLevel) {
					t.Errorf("expected ErrBadLevel, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected level %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warning", Format: FormatJSON, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown", "guild_id", "100")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if record["msg"] != "shown" {
		t.Errorf("expected msg %q, got %v", "shown", record["msg"])
	}
	if record["guild_id"] != "100" {
		t.Errorf("expected guild_id attribute, got %v", record["guild_id"])
	}
}

func TestNew_BadLevelIsReportedNotFatal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "critical", Format: FormatJSON, Output: &buf})

	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
	if !strings.Contains(buf.String(), "bad log level") {
		t.Errorf("expected bad log level diagnostic, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "critical") {
		t.Errorf("expected diagnostic to name the level, got %q", buf.String())
	}

	// Falls back to info
	buf.Reset()
	logger.Debug("hidden")
	logger.Info("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("expected debug to be filtered at fallback info level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected info to be logged at fallback info level")
	}
}

func TestNew_ConsoleWithoutTerminalHasNoColour(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "debug", Format: FormatConsole, Output: &buf})

	logger.Debug("message from user", "content", "!roll 6")

	out := buf.String()
	if !strings.Contains(out, "message from user") {
		t.Errorf("expected message in output, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no ANSI escapes for non-terminal output, got %q", out)
	}
	if !strings.Contains(out, "logging_test.go") {
		t.Errorf("expected call site in console output, got %q", out)
	}
}

func TestNew_BadFormatFallsBackToConsole(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Level: "info", Format: "xml", Output: &buf})

	out := buf.String()
	if !strings.Contains(out, "bad log format") {
		t.Errorf("expected bad log format diagnostic, got %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("expected console output, got %q", out)
	}
}
