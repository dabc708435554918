package emotion

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScoreTokensResolution(t *testing.T) {
	tests := []struct {
		name    string
		tokens  []string
		emotion string
		label   string
		color   string
	}{
		{name: "no tokens", tokens: nil, emotion: Neutral, label: "Neutral 😐", color: NeutralColor},
		{name: "no match", tokens: []string{"the", "cat", "sat"}, emotion: Neutral, label: "Neutral 😐", color: NeutralColor},
		{name: "single happy", tokens: []string{"this", "is", "awesome"}, emotion: "Happy", label: "Happy 😊", color: "#28a745"},
		{name: "single disgust", tokens: []string{"yuck"}, emotion: "Disgust", label: "Disgust 🤢", color: "#795548"},
		{name: "first two tie", tokens: []string{"happy", "sad"}, emotion: Mixed, label: "Mixed / Ambiguous 🤔", color: NeutralColor},
		{name: "later tie", tokens: []string{"sad", "fear"}, emotion: Mixed, label: "Mixed / Ambiguous 🤔", color: NeutralColor},
		{name: "three way tie", tokens: []string{"happy", "sad", "yuck"}, emotion: Mixed, label: "Mixed / Ambiguous 🤔", color: NeutralColor},
		{name: "clear winner", tokens: []string{"happy", "happy", "sad"}, emotion: "Happy", label: "Happy 😊", color: "#28a745"},
		{name: "later higher beats earlier", tokens: []string{"sad", "angry", "mad"}, emotion: "Angry", label: "Angry 😠", color: "#ffc107"},
		{name: "mixed overridden by higher", tokens: []string{"happy", "sad", "panic", "afraid"}, emotion: "Fear", label: "Fear 😨", color: "#6f42c1"},
		{name: "lower after winner ignored", tokens: []string{"wow", "wow", "yuck"}, emotion: "Surprise", label: "Surprise 😲", color: "#17a2b8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreTokens(tt.tokens, DefaultTable())
			if got.Emotion != tt.emotion {
				t.Fatalf("emotion=%s, want %s", got.Emotion, tt.emotion)
			}
			if got.Label != tt.label {
				t.Fatalf("label=%q, want %q", got.Label, tt.label)
			}
			if got.Color != tt.color {
				t.Fatalf("color=%s, want %s", got.Color, tt.color)
			}
		})
	}
}

func TestScoreVectorCoversEveryProfileInOrder(t *testing.T) {
	got := ScoreTokens([]string{"happy", "sad", "sad", "furious"}, DefaultTable())
	want := ScoreVector{
		{Emotion: "Happy", Count: 1},
		{Emotion: "Sad", Count: 2},
		{Emotion: "Angry", Count: 1},
		{Emotion: "Surprise", Count: 0},
		{Emotion: "Fear", Count: 0},
		{Emotion: "Disgust", Count: 0},
	}
	if diff := cmp.Diff(want, got.Scores); diff != "" {
		t.Fatalf("scores mismatch (-want +got):\n%s", diff)
	}
	if got.Emotion != "Sad" {
		t.Fatalf("emotion=%s, want Sad", got.Emotion)
	}
	if got.Scores.Total() != 4 {
		t.Fatalf("total=%d, want 4", got.Scores.Total())
	}
}

func TestScoreTokensRepeatedKeywordCountsEachTime(t *testing.T) {
	got := ScoreTokens([]string{"love", "love", "love"}, DefaultTable())
	if got.Scores.Get("Happy") != 3 {
		t.Fatalf("happy=%d, want 3", got.Scores.Get("Happy"))
	}
}

func TestMultiWordKeywordNeverMatchesToken(t *testing.T) {
	got := ScoreTokens([]string{"oh", "my", "god"}, DefaultTable())
	if got.Emotion != Neutral || got.Scores.Total() != 0 {
		t.Fatalf("got %s total=%d, want Neutral with zero scores", got.Emotion, got.Scores.Total())
	}
}

func TestChartFollowsDeclarationOrder(t *testing.T) {
	r := ScoreTokens([]string{"scary"}, DefaultTable())
	got := Chart(r, DefaultTable())
	want := ChartData{
		Labels: []string{"Happy", "Sad", "Angry", "Surprise", "Fear", "Disgust"},
		Data:   []int{0, 0, 0, 0, 1, 0},
		Colors: []string{"#28a745", "#dc3545", "#ffc107", "#17a2b8", "#6f42c1", "#795548"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("chart mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreVectorCloneIsIndependent(t *testing.T) {
	r := ScoreTokens([]string{"wow"}, DefaultTable())
	c := r.Scores.Clone()
	c[3].Count = 99
	if r.Scores.Get("Surprise") != 1 {
		t.Fatalf("surprise=%d after clone mutation, want 1", r.Scores.Get("Surprise"))
	}
}
