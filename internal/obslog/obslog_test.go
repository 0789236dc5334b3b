package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitTruncatesLogFileByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bot.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("stale line\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := Init(Settings{Level: "info", Format: "json", ToFile: true, FilePath: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	L().Info("fresh_line")
	Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(raw), "stale line") {
		t.Fatalf("expected truncated log, got %q", raw)
	}
	if !strings.Contains(string(raw), "fresh_line") {
		t.Fatalf("expected new entry, got %q", raw)
	}
}

func TestInitAppendMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	if err := os.WriteFile(path, []byte("kept line\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := Init(Settings{Level: "info", Format: "console", ToFile: true, FilePath: path, FileMode: "append"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	L().Info("appended_line")
	Close()

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "kept line") || !strings.Contains(string(raw), "appended_line") {
		t.Fatalf("expected both lines, got %q", raw)
	}
}
