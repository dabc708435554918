package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikitakharat907-ai/emotiondetector/internal/emotion"
	"github.com/nikitakharat907-ai/emotiondetector/internal/history"
)

var (
	_ history.Store   = (*Store)(nil)
	_ history.Sweeper = (*Store)(nil)
)

// Store persists session histories in Postgres.
type Store struct {
	pool  *pgxpool.Pool
	limit int
	ttl   time.Duration
}

func New(ctx context.Context, dsn string, limit int, ttl time.Duration) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if limit <= 0 {
		limit = history.DefaultLimit
	}
	return &Store{pool: pool, limit: limit, ttl: ttl}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_active_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS history_entries (
			id BIGSERIAL PRIMARY KEY,
			entry_id TEXT NOT NULL UNIQUE,
			session_id TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			emotion TEXT NOT NULL,
			label TEXT NOT NULL,
			color TEXT NOT NULL,
			scores JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_entries_session_id ON history_entries(session_id, id);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_last_active ON sessions(last_active_at);`,
	}

	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Load(ctx context.Context, sessionID string) (*history.Log, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT entry_id, text, emotion, label, color, scores, created_at
		FROM (
			SELECT id, entry_id, text, emotion, label, color, scores, created_at
			FROM history_entries
			WHERE session_id=$1
			ORDER BY id DESC
			LIMIT $2
		) t
		ORDER BY id ASC
	`, sessionID, s.limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := history.NewLog(s.limit)
	for rows.Next() {
		var e history.Entry
		var scoresRaw []byte
		if err := rows.Scan(&e.ID, &e.Text, &e.Emotion, &e.Label, &e.Color, &scoresRaw, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(scoresRaw, &e.Scores); err != nil {
			return nil, fmt.Errorf("decode scores of %s: %w", e.ID, err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		out.Append(e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Append(ctx context.Context, sessionID string, e history.Entry) error {
	scores := e.Scores
	if scores == nil {
		scores = emotion.ScoreVector{}
	}
	raw, err := json.Marshal(scores)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO sessions(session_id)
			VALUES ($1)
			ON CONFLICT (session_id)
			DO UPDATE SET last_active_at = NOW();
		`, sessionID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO history_entries(entry_id, session_id, text, emotion, label, color, scores, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
		`, e.ID, sessionID, e.Text, e.Emotion, e.Label, e.Color, string(raw), e.CreatedAt)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			DELETE FROM history_entries
			WHERE session_id=$1
			  AND id NOT IN (
				SELECT id FROM history_entries
				WHERE session_id=$1
				ORDER BY id DESC
				LIMIT $2
			  )
		`, sessionID, s.limit)
		return err
	})
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM history_entries
		WHERE session_id=$1
	`, sessionID)
	return err
}

// Sweep deletes sessions idle for longer than the configured TTL.
func (s *Store) Sweep(ctx context.Context, now time.Time) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM sessions
		WHERE last_active_at < $1
	`, now.Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
