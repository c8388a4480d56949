package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", Debug, false},
		{"INFO", Info, false},
		{" notice ", Notice, false},
		{"warn", Warning, false},
		{"warning", Warning, false},
		{"error", Error, false},
		{"loud", Notice, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q): expected error=%v, got %v", tt.in, tt.wantErr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)
	SetLevel(Warning)
	defer SetLevel(Notice)

	logger := New("logtest")
	logger.Info("hidden message")
	logger.Warningf("visible %s", "message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("expected info message to be filtered at warning level, got %q", out)
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "[logtest]") {
		t.Errorf("expected warning message with module name, got %q", out)
	}
}

func TestModuleLevelOverride(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)
	SetLevel(Warning)
	defer SetLevel(Notice)
	SetModuleLevel("chatty", Debug)

	New("chatty").Debug("chatty detail")
	New("quiet").Info("quiet detail")

	out := buf.String()
	if !strings.Contains(out, "chatty detail") {
		t.Errorf("expected debug output from the overridden module, got %q", out)
	}
	if strings.Contains(out, "quiet detail") {
		t.Errorf("expected other modules to keep the global level, got %q", out)
	}
}
