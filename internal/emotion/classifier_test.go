package emotion

import (
	"testing"
)

func TestClassifyExamples(t *testing.T) {
	c := NewClassifier(DefaultTable(), NewNormalizer(nil))

	tests := []struct {
		text    string
		emotion string
		label   string
	}{
		{text: "", emotion: Neutral, label: "Neutral 😐"},
		{text: "!!! ... ???", emotion: Neutral, label: "Neutral 😐"},
		{text: "this is awesome", emotion: "Happy", label: "Happy 😊"},
		{text: "I am HAPPY but also sad.", emotion: Mixed, label: "Mixed / Ambiguous 🤔"},
		{text: "Wow, so unexpected! Suddenly everything changed", emotion: "Surprise", label: "Surprise 😲"},
		{text: "The movie was gross, nasty and a bit scary", emotion: "Disgust", label: "Disgust 🤢"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Classify(tt.text)
			if got.Emotion != tt.emotion {
				t.Fatalf("Classify(%q) emotion=%s, want %s", tt.text, got.Emotion, tt.emotion)
			}
			if got.Label != tt.label {
				t.Fatalf("Classify(%q) label=%q, want %q", tt.text, got.Label, tt.label)
			}
			if len(got.Scores) != 6 {
				t.Fatalf("scores len=%d, want 6", len(got.Scores))
			}
			for _, s := range got.Scores {
				if s.Count < 0 {
					t.Fatalf("negative score %v", s)
				}
			}
		})
	}
}

func TestClassifySingleCategoryUsesProfileColor(t *testing.T) {
	c := NewClassifier(nil, nil)
	got := c.Classify("this is awesome")
	if got.Color != "#28a745" {
		t.Fatalf("color=%s, want #28a745", got.Color)
	}
	if got.Scores.Get("Happy") != 1 || got.Scores.Total() != 1 {
		t.Fatalf("scores=%v, want Happy=1 only", got.Scores)
	}
}

func TestClassifyWithSpellerCorrectsTypos(t *testing.T) {
	table := DefaultTable()
	c := NewClassifier(table, NewNormalizer(NewSpellerWithWords([]string{"today", "feel"}, table.Keywords()...)))
	got := c.Classify("Feel AWSOME")
	if got.Emotion != "Happy" {
		t.Fatalf("emotion=%s, want Happy", got.Emotion)
	}
}

func TestClassifyResultsAreIndependent(t *testing.T) {
	c := NewClassifier(nil, nil)
	first := c.Classify("happy")
	_ = c.Classify("sad sad sad")
	if first.Scores.Get("Happy") != 1 || first.Scores.Get("Sad") != 0 {
		t.Fatalf("first result changed by later call: %v", first.Scores)
	}
}

func TestClassifyDefaultSpellerLeavesPlainTextNeutral(t *testing.T) {
	c := NewClassifier(DefaultTable(), NewNormalizer(NewSpeller(DefaultTable())))
	for _, text := range []string{"My hat is blue", "what a mood", "the rat", "python code"} {
		got := c.Classify(text)
		if got.Emotion != Neutral || got.Scores.Total() != 0 {
			t.Fatalf("Classify(%q)=%s scores=%v, want Neutral", text, got.Emotion, got.Scores)
		}
	}
}
