package common

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/driftchat/backend/internal/common/logger"
)

func TestLogger_ReportsCallSite(t *testing.T) {
	dir := t.TempDir()

	log, err := logger.New(dir, "test", "DEBUG")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}

	log.Info("direct message")
	log.Infof("formatted %s", "message")
	log.WithFields(context.Background(), logger.Fields{"action": "test_action"}).Info("entry message")
	log.WithFields(context.Background(), logger.Fields{"action": "test_action"}).Warnf("entry %s", "formatted")

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d: %q", len(lines), lines)
	}

	for i, line := range lines {
		if !strings.Contains(line, "logger_test.go:") {
			t.Errorf("line %d: expected call site logger_test.go, got %q", i, line)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	dir := t.TempDir()

	log, err := logger.New(dir, "test", "ERROR")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}

	log.Debug("suppressed")
	log.Info("suppressed")
	log.WithFields(context.Background(), logger.Fields{"action": "test_action"}).Warn("suppressed")
	log.Error("kept")

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "kept") {
		t.Errorf("expected the error line to survive filtering, got %q", lines[0])
	}
}
