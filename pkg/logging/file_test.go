package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newTestLogger(t *testing.T, format Format) (*FileLogger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	logger, err := NewFileLogger(FileLoggerConfig{Path: path, Format: format, Level: DebugLevel})
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	return logger, path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open log file: %v", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

// TestFileLoggerWithFields tests field merging on derived loggers
func TestFileLoggerWithFields(t *testing.T) {
	logger, path := newTestLogger(t, FormatJSON)
	defer logger.Close()

	derived := logger.WithFields(Fields{"session": "abc"})
	derived.Info(context.Background(), "scan starting", Fields{"folders": 3})

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("log lines = %d, want 1", len(lines))
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	if entry["session"] != "abc" {
		t.Errorf("derived field missing: %v", entry)
	}
	if entry["folders"] != float64(3) {
		t.Errorf("call-site field missing: %v", entry)
	}
	if entry["message"] != "scan starting" {
		t.Errorf("message = %v", entry["message"])
	}
}

// TestFileLoggerConcurrentDerived tests that a derived logger writes
// through the same serialization as its parent
func TestFileLoggerConcurrentDerived(t *testing.T) {
	logger, path := newTestLogger(t, FormatJSON)
	defer logger.Close()

	derived := logger.WithFields(Fields{"worker": "w1"})

	const writes = 50
	var wg sync.WaitGroup
	for i := 0; i < writes; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			logger.Info(context.Background(), "parent write", nil)
		}()
		go func() {
			defer wg.Done()
			derived.Info(context.Background(), "derived write", nil)
		}()
	}
	wg.Wait()

	lines := readLines(t, path)
	if len(lines) != 2*writes {
		t.Fatalf("log lines = %d, want %d", len(lines), 2*writes)
	}
	for i, line := range lines {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("line %d is not valid JSON (interleaved write?): %v", i, err)
		}
	}
}

// TestFileLoggerLevelFiltering tests that low levels stay out
func TestFileLoggerLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	logger, err := NewFileLogger(FileLoggerConfig{Path: path, Format: FormatText, Level: WarnLevel})
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	logger.Debug(context.Background(), "too low", nil)
	logger.Info(context.Background(), "also too low", nil)
	logger.Warn(context.Background(), "kept", nil)

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Errorf("log lines = %d, want 1 (warn only)", len(lines))
	}
}
