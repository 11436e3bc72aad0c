package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nzbforge/internal/config"
	"nzbforge/internal/logging"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "xml"})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestJSONFormatEmitsLowercaseLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Warn("segment lookup failed", slog.String("table", "DavSegments"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if record["level"] != "warn" {
		t.Errorf("level = %v, want warn", record["level"])
	}
	if record["msg"] != "segment lookup failed" {
		t.Errorf("msg = %v", record["msg"])
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Level:       "warn",
		Format:      "console",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("quiet")
	logger.Error("loud")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "quiet") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "loud") {
		t.Error("error line should pass at warn level")
	}
}

func TestNewFromConfigCreatesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("hello")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "nzbforge.log"))
	if err != nil {
		t.Fatalf("log file should exist: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Error("log file should contain the emitted line")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("nothing to see")
	component := logging.WithComponent(nil, "export")
	component.Info("also nothing")
}
