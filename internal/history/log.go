package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/nikitakharat907-ai/emotiondetector/internal/emotion"
)

const DefaultLimit = 50

// Entry is one classified text as shown in the history panel.
type Entry struct {
	ID        string              `json:"id"`
	Text      string              `json:"text"`
	Emotion   string              `json:"emotion"`
	Label     string              `json:"result"`
	Scores    emotion.ScoreVector `json:"score"`
	Color     string              `json:"color"`
	CreatedAt time.Time           `json:"created_at"`
}

func NewEntry(text string, r emotion.Result, at time.Time) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Text:      text,
		Emotion:   r.Emotion,
		Label:     r.Label,
		Scores:    r.Scores.Clone(),
		Color:     r.Color,
		CreatedAt: at.UTC(),
	}
}

// Log is an ordered, bounded list of entries. Once full, the oldest entry is
// evicted on every append. A Log is not safe for concurrent use.
type Log struct {
	entries []Entry
	limit   int
}

func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

func (l *Log) Append(e Entry) {
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append([]Entry(nil), l.entries[over:]...)
	}
}

func (l *Log) Clear() {
	l.entries = nil
}

func (l *Log) Len() int {
	return len(l.entries)
}

func (l *Log) Limit() int {
	return l.limit
}

// Entries returns a copy in insertion order.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Recent returns a copy with the newest entry first.
func (l *Log) Recent() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}
