package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func resetLogger() {
	SetLevel("INFO")
	SetOutput(os.Stdout)
}

func TestLevelFiltering(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("WARN")

	Debug("debug line")
	Info("info line")
	Warn("warn line")
	Error("error line")

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Fatalf("lines below WARN leaked through:\n%s", out)
	}
	if !strings.Contains(out, "warn line") || !strings.Contains(out, "error line") {
		t.Fatalf("expected WARN and ERROR lines, got:\n%s", out)
	}
}

func TestLevelStrings(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestMirrorEchoes(t *testing.T) {
	defer resetLogger()

	var logBuf, mirrorBuf bytes.Buffer
	SetOutput(&logBuf)
	SetLevel("INFO")

	m := &Mirror{W: &mirrorBuf}
	m.Warn("mirrored %d", 7)

	if !strings.Contains(logBuf.String(), "mirrored 7") {
		t.Fatal("line missing from the process log")
	}
	if !strings.Contains(mirrorBuf.String(), "[WARN] mirrored 7") {
		t.Fatalf("line missing from the mirror stream: %q", mirrorBuf.String())
	}
}

func TestNilMirror(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)

	var m *Mirror
	m.Info("still logged")
	(&Mirror{}).Info("also logged")

	out := buf.String()
	if !strings.Contains(out, "still logged") || !strings.Contains(out, "also logged") {
		t.Fatalf("nil mirrors should still log:\n%s", out)
	}
}
