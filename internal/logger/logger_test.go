package logger

import (
	"os"
	"path/filepath"
	"testing"

	logrus "github.com/sirupsen/logrus"
)

func TestSetupLevel(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)
	defer logrus.SetOutput(os.Stderr)

	Setup("debug", filepath.Join(t.TempDir(), "app.log"))
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", logrus.GetLevel())
	}

	Setup("nonsense", filepath.Join(t.TempDir(), "app.log"))
	if logrus.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected fallback to info, got %v", logrus.GetLevel())
	}
}

func TestAccessWriterWrites(t *testing.T) {
	w := AccessWriter(filepath.Join(t.TempDir(), "access.log"))
	if _, err := w.Write([]byte("GET /up 200\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
}
