package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestFormatterLayout(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "analysis request failed",
		Data:    logrus.Fields{"symbol": "AAPL", "status": 404},
	}

	out, err := (&Formatter{}).Format(entry)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := "[2024-01-02 03:04:05] [WARN] [] analysis request failed status=404 symbol=AAPL\n"
	if string(out) != want {
		t.Fatalf("unexpected line:\n got %q\nwant %q", out, want)
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "stocklens.log")
	log, err := New("debug", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}
	log.Debug("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "[DEBU]") || !strings.Contains(string(data), "hello") {
		t.Fatalf("unexpected log content: %q", data)
	}
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := New("verbose", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info, got %s", log.GetLevel())
	}
}
