package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDailyRotatingWriterRotatesOnDateChange(t *testing.T) {
	dir := t.TempDir()

	day := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	w := &DailyRotatingWriter{
		logDir:         dir,
		filenameFormat: FilenameFormat,
		now:            func() time.Time { return day },
	}
	defer w.Close()

	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	day = day.Add(2 * time.Minute)
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	first, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf(FilenameFormat, "2026-03-01")))
	if err != nil {
		t.Fatalf("read first day: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf(FilenameFormat, "2026-03-02")))
	if err != nil {
		t.Fatalf("read second day: %v", err)
	}

	if strings.TrimSpace(string(first)) != "first" {
		t.Errorf("first day = %q", first)
	}
	if strings.TrimSpace(string(second)) != "second" {
		t.Errorf("second day = %q", second)
	}
	if w.CurrentDate != "2026-03-02" {
		t.Errorf("CurrentDate = %q", w.CurrentDate)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := ParseLevel("nonsense"); got.String() != "info" {
		t.Errorf("ParseLevel(nonsense) = %s, want info", got)
	}
	if got := ParseLevel("debug"); got.String() != "debug" {
		t.Errorf("ParseLevel(debug) = %s, want debug", got)
	}
}

func TestSetupLoggingQuietWritesFileOnly(t *testing.T) {
	dir := t.TempDir()
	logging, err := SetupLogging(dir, "debug", true)
	if err != nil {
		t.Fatalf("SetupLogging: %v", err)
	}
	logging.Logger.Info().Str("camera", "video0").Msg("scanning started")
	if err := logging.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	name := fmt.Sprintf(FilenameFormat, time.Now().Format("2006-01-02"))
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "scanning started") {
		t.Errorf("log file missing entry: %s", data)
	}
}
