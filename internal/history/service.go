package history

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nikitakharat907-ai/emotiondetector/internal/emotion"
)

// Event is emitted for every recorded classification.
type Event struct {
	SessionID string `json:"session_id"`
	Entry     Entry  `json:"entry"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Service struct {
	store      Store
	publishers []Publisher
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(store Store, logger *slog.Logger, publishers ...Publisher) (*Service, error) {
	if store == nil {
		return nil, errors.New("history store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	out := &Service{store: store, logger: logger, now: time.Now}
	for _, p := range publishers {
		if p != nil {
			out.publishers = append(out.publishers, p)
		}
	}
	return out, nil
}

// Record appends the result to the session log and notifies publishers.
func (s *Service) Record(ctx context.Context, sessionID, text string, r emotion.Result) (Entry, error) {
	entry := NewEntry(text, r, s.now())
	if err := s.store.Append(ctx, sessionID, entry); err != nil {
		return Entry{}, err
	}

	ev := Event{SessionID: sessionID, Entry: entry}
	for _, p := range s.publishers {
		if err := p.Publish(ctx, ev); err != nil {
			s.logger.Warn("publish history event failed", "session_id", sessionID, "error", err)
		}
	}
	return entry, nil
}

// Recent returns the session's entries, newest first.
func (s *Service) Recent(ctx context.Context, sessionID string) ([]Entry, error) {
	log, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return log.Recent(), nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}
