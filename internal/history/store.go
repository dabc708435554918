package history

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Store keeps one Log per session.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Log, error)
	Append(ctx context.Context, sessionID string, e Entry) error
	Clear(ctx context.Context, sessionID string) error
}

// Sweeper drops sessions that have been idle for too long.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type sessionState struct {
	log         *Log
	lastUpdated time.Time
}

// MemoryStore is a process-local Store with idle expiry.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]sessionState
	ttl   time.Duration
	limit int
	now   func() time.Time
}

func NewMemoryStore(limit int, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &MemoryStore{
		data:  make(map[string]sessionState),
		ttl:   ttl,
		limit: limit,
		now:   time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := NewLog(s.limit)
	state, ok := s.data[sessionID]
	if !ok || s.isExpired(state, s.now()) {
		return out, nil
	}
	for _, e := range state.log.Entries() {
		out.Append(e)
	}
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	state, ok := s.data[sessionID]
	if !ok || s.isExpired(state, now) {
		state = sessionState{log: NewLog(s.limit)}
	}
	state.log.Append(e)
	state.lastUpdated = now
	s.data[sessionID] = state
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, state := range s.data {
		if s.isExpired(state, now) {
			delete(s.data, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) isExpired(state sessionState, now time.Time) bool {
	return now.Sub(state.lastUpdated) > s.ttl
}

// RunSweeper calls Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, sw Sweeper, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := sw.Sweep(ctx, now)
			if err != nil {
				logger.Warn("history sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired idle sessions", "count", n)
			}
		}
	}
}
