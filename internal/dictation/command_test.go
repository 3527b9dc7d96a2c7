package dictation

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line     string
		expected Event
		ok       bool
	}{
		{"partial: tell me", Event{Text: "tell me"}, true},
		{"final: tell me about it", Event{Text: "tell me about it", Final: true}, true},
		{"FINAL:done", Event{Text: "done", Final: true}, true},
		{"error: no-speech", Event{ErrorCode: "no-speech"}, true},
		{"plain words", Event{Text: "plain words", Final: true}, true},
		{"note: ratio 3:1", Event{Text: "note: ratio 3:1", Final: true}, true},
		{"   ", Event{}, false},
	}
	for _, tt := range tests {
		got, ok := parseLine(tt.line)
		if ok != tt.ok || got != tt.expected {
			t.Errorf("parseLine(%q): expected %+v %v, got %+v %v", tt.line, tt.expected, tt.ok, got, ok)
		}
	}
}

func TestCommandAvailable(t *testing.T) {
	if CommandAvailable("")() {
		t.Errorf("expected empty command to be unavailable")
	}
	if CommandAvailable("definitely-not-a-real-recognizer-binary")() {
		t.Errorf("expected missing binary to be unavailable")
	}
}

func TestCommandRecognizer(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	script := filepath.Join(t.TempDir(), "recognize.sh")
	body := "printf 'partial: hel\\nfinal: hello %s\\nerror: no-speech\\n' \"$DICTATION_LANG\"\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("writing script: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec := NewCommandRecognizer("sh "+script, nil)
	stream, err := rec.Start(ctx, "fr-FR")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var got []Event
	for ev := range stream.Events() {
		got = append(got, ev)
	}

	expected := []Event{
		{Text: "hel"},
		{Text: "hello fr-FR", Final: true},
		{ErrorCode: "no-speech"},
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %d events, got %+v", len(expected), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("event %d: expected %+v, got %+v", i, expected[i], got[i])
		}
	}
}

func TestCommandRecognizer_EmptyCommand(t *testing.T) {
	if _, err := NewCommandRecognizer("  ", nil).Start(context.Background(), DefaultLang); err == nil {
		t.Errorf("expected error for empty command")
	}
}
