package shared

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := GenerateState()

	if a == b {
		t.Error("expected distinct state values")
	}
	if _, err := hex.DecodeString(a); err != nil || len(a) != 32 {
		t.Errorf("expected 32 hex characters, got %q", a)
	}
}

func TestGenerateID(t *testing.T) {
	if id := GenerateID(); len(id) != 36 {
		t.Errorf("expected uuid string, got %q", id)
	}
}

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{in: "", want: log.InfoLevel},
		{in: "debug", want: log.DebugLevel},
		{in: "warn", want: log.WarnLevel},
		{in: "loud", want: log.InfoLevel, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]int{"a": 1}

	compact, err := MarshalJSON(v, false)
	if err != nil || string(compact) != `{"a":1}` {
		t.Errorf("expected compact JSON, got %s (%v)", compact, err)
	}

	pretty, _ := MarshalJSON(v, true)
	if !strings.Contains(string(pretty), "\n  \"a\": 1") {
		t.Errorf("expected indented JSON, got %s", pretty)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandHome("~/.cinehint/token.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(home, ".cinehint/token.json"); got != want {
		t.Errorf("ExpandHome() = %q, want %q", got, want)
	}

	if got, _ := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("expected absolute path unchanged, got %q", got)
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")

	logger, closer, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("hello", "key", "value")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") || !strings.Contains(string(data), "key=value") {
		t.Errorf("expected log entry in file, got %q", data)
	}
}
