package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	jsonOutput, noSpellcheck, profilesPath, serverURL = false, false, "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return out.String()
}

func TestClassifyArgs(t *testing.T) {
	out := execute(t, "", "classify", "--no-spellcheck", "what", "a", "horrible", "day")
	if !strings.HasPrefix(out, "Fear ") || !strings.Contains(out, "Fear=1") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestClassifyStdinJSON(t *testing.T) {
	out := execute(t, "so happy\n\nhappy but sad\n", "classify", "--json", "--no-spellcheck")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines=%d, want 2: %q", len(lines), out)
	}
	want := []string{"Happy", "Mixed"}
	for i, line := range lines {
		var got struct {
			Text    string `json:"text"`
			Emotion string `json:"emotion"`
		}
		if err := json.Unmarshal([]byte(line), &got); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		if got.Emotion != want[i] {
			t.Fatalf("line %d emotion=%s, want %s", i, got.Emotion, want[i])
		}
	}
}

func TestProfilesCommand(t *testing.T) {
	out := execute(t, "", "profiles")
	if got := strings.Count(out, "\n"); got != 6 {
		t.Fatalf("profiles lines=%d, want 6", got)
	}
	if !strings.Contains(out, "Disgust") {
		t.Fatalf("missing Disgust profile: %q", out)
	}
}
