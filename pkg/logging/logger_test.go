package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "souls.log")

	logger, err := NewLogger("warn", path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	logger.ComponentInfo(ComponentMarket, "filtered out")
	logger.ComponentWarn(ComponentWallet, "no authorized account", zap.String("wallet", "keystore"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)

	if strings.Contains(out, "filtered out") {
		t.Errorf("info line written below warn level: %q", out)
	}
	if !strings.Contains(out, "[WALLET] no authorized account") {
		t.Errorf("missing tagged warn line: %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("file output should not contain color codes: %q", out)
	}
}
