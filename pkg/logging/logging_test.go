package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zap.AtomicLevel
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"warn", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"bogus", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := New(Config{Level: tt.level, Format: "console"})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := logger.Core().Enabled(tt.want.Level()); !got {
				t.Errorf("level %s not enabled", tt.want.Level())
			}
			if tt.want.Level() > zap.DebugLevel && logger.Core().Enabled(tt.want.Level()-1) {
				t.Errorf("level below %s enabled", tt.want.Level())
			}
		})
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	logger, err := New(Config{Level: "info", Format: "json", OutputPath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("converted", zap.String("name", "cube"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"name":"cube"`) {
		t.Errorf("log output missing field: %s", data)
	}
}

func TestNewBadOutputPath(t *testing.T) {
	_, err := New(Config{OutputPath: filepath.Join(t.TempDir(), "missing", "dir", "log")})
	if err == nil {
		t.Error("expected error for unwritable output path")
	}
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(Config{Level: "warn", Format: "json"}, &buf)
	logger.Info("dropped")
	logger.Warn("kept", zap.Int("faces", 6))

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info entry written at warn level: %s", out)
	}
	if !strings.Contains(out, `"faces":6`) {
		t.Errorf("warn entry missing: %s", out)
	}
}
