package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	err := Init(Config{
		Debug:     false,
		ConfigDir: configDir,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Dir(LogPath(configDir))
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if filepath.Base(LogPath(configDir)) != "roadplan.log" {
		t.Errorf("unexpected log file name %s", LogPath(configDir))
	}

	if Logger == nil {
		t.Error("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestInitDebugMode(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	err := Init(Config{
		Debug:     true,
		ConfigDir: configDir,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}

	if Logger == nil {
		t.Error("Logger is nil after initialization")
	}

	Debug("Test debug message in debug mode")
	Info("Test info message in debug mode")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Output: &buf}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Info("plan approved", "plan", "p1")
	Warn("notifier unavailable", "err", "timeout")

	out := buf.String()
	if strings.Contains(out, "plan approved") {
		t.Error("info message written at default warn level")
	}
	if !strings.Contains(out, "notifier unavailable") {
		t.Errorf("warn message missing from output: %q", out)
	}
}

func TestInitWithLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Output: &buf, Level: "info"}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Info("plan approved", "plan", "p1")
	if !strings.Contains(buf.String(), "plan=p1") {
		t.Errorf("expected keyvals in output, got %q", buf.String())
	}

	if err := Init(Config{Output: &buf, Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}
