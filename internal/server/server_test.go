package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/nikitakharat907-ai/emotiondetector/internal/domain"
	"github.com/nikitakharat907-ai/emotiondetector/internal/emotion"
	"github.com/nikitakharat907-ai/emotiondetector/internal/history"
	"github.com/nikitakharat907-ai/emotiondetector/internal/metrics"
)

func newTestServer(t *testing.T) (http.Handler, *history.MemoryStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := history.NewMemoryStore(3, time.Hour)
	svc, err := history.NewService(store, logger)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	collector := metrics.NewCollector()
	classifier := collector.Instrument(emotion.NewClassifier(nil, nil))
	srv, err := New(Config{ReadBodyMaxByte: 1024}, classifier, svc, Deps{Metrics: collector}, logger)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv.Routes(), store
}

func sessionFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatalf("no session cookie issued")
	return nil
}

func TestClassifyJSON(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		name    string
		body    string
		status  int
		emotion string
	}{
		{name: "happy", body: `{"text":"I am so happy and excited"}`, status: http.StatusOK, emotion: "Happy"},
		{name: "empty text is neutral", body: `{"text":""}`, status: http.StatusOK, emotion: emotion.Neutral},
		{name: "tie is mixed", body: `{"text":"happy but sad"}`, status: http.StatusOK, emotion: emotion.Mixed},
		{name: "unknown field", body: `{"text":"hi","mood":"x"}`, status: http.StatusBadRequest},
		{name: "two values", body: `{"text":"a"}{"text":"b"}`, status: http.StatusBadRequest},
		{name: "too large", body: `{"text":"` + strings.Repeat("a", 2048) + `"}`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/emotion/classify", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status=%d, want %d body=%s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var out domain.ClassifyResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out.Emotion != tt.emotion {
				t.Fatalf("emotion=%s, want %s", out.Emotion, tt.emotion)
			}
			if len(out.Scores) != 6 || len(out.Chart.Labels) != 6 {
				t.Fatalf("expected six scores and chart bars, got %+v", out)
			}
			if out.RequestID == "" {
				t.Fatalf("request id should default to the middleware id")
			}
		})
	}
}

func TestProfiles(t *testing.T) {
	h, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/emotion/profiles", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var out domain.ProfilesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Schema != emotion.Schema || len(out.Profiles) != 6 || out.Profiles[0].Name != "Happy" {
		t.Fatalf("unexpected profiles: %+v", out)
	}
}

func TestPredictRecordsHistoryPerSession(t *testing.T) {
	h, store := newTestServer(t)

	home := httptest.NewRecorder()
	h.ServeHTTP(home, httptest.NewRequest(http.MethodGet, "/", nil))
	if home.Code != http.StatusOK || !strings.Contains(home.Body.String(), "No history yet.") {
		t.Fatalf("unexpected home page: %d", home.Code)
	}
	cookie := sessionFrom(t, home)

	predict := func(text string) *httptest.ResponseRecorder {
		form := url.Values{"text_input": {text}}
		req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("predict status=%d", rec.Code)
		}
		return rec
	}

	rec := predict("I feel so scared and afraid")
	if !strings.Contains(rec.Body.String(), "Fear") {
		t.Fatalf("prediction missing from page")
	}
	for _, text := range []string{"happy", "sad", "angry"} {
		predict(text)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out struct {
		SessionID string          `json:"session_id"`
		History   []history.Entry `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.SessionID != cookie.Value {
		t.Fatalf("session=%s, want %s", out.SessionID, cookie.Value)
	}
	if len(out.History) != 3 || out.History[0].Text != "angry" || out.History[2].Text != "happy" {
		t.Fatalf("history should hold the newest three entries, newest first: %+v", out.History)
	}

	other := httptest.NewRecorder()
	h.ServeHTTP(other, httptest.NewRequest(http.MethodGet, "/v1/history", nil))
	if strings.Contains(other.Body.String(), "angry") {
		t.Fatalf("history leaked across sessions")
	}

	req = httptest.NewRequest(http.MethodGet, "/clear_history", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("clear status=%d location=%s", rec.Code, rec.Header().Get("Location"))
	}
	log, err := store.Load(req.Context(), cookie.Value)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if log.Len() != 0 {
		t.Fatalf("history not cleared, len=%d", log.Len())
	}
}

func TestMalformedSessionCookieIsReplaced(t *testing.T) {
	h, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodDelete, "/v1/history", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "not-a-uuid"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if c := sessionFrom(t, rec); c.Value == "not-a-uuid" || !c.HttpOnly {
		t.Fatalf("unexpected cookie %+v", c)
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	h, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), emotion.Engine) {
		t.Fatalf("healthz status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "emotion_http_requests_total") {
		t.Fatalf("metrics missing request counter")
	}
}

type recordingFeed struct {
	sessions []string
}

func (f *recordingFeed) Serve(w http.ResponseWriter, _ *http.Request, sessionID string) {
	f.sessions = append(f.sessions, sessionID)
	w.WriteHeader(http.StatusNoContent)
}

func TestLiveFeedIsScopedToSessionCookie(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := history.NewService(history.NewMemoryStore(3, time.Hour), logger)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	feed := &recordingFeed{}
	srv, err := New(Config{}, emotion.NewClassifier(nil, nil), svc, Deps{Live: feed}, logger)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	h := srv.Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusUnauthorized || len(feed.sessions) != 0 {
		t.Fatalf("status=%d sessions=%v, want 401 and no subscription", rec.Code, feed.sessions)
	}

	id := "4f1c2a9e-8d4b-4c53-9a53-0f3b1d2e7c61"
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: id})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || len(feed.sessions) != 1 || feed.sessions[0] != id {
		t.Fatalf("status=%d sessions=%v, want subscription for %s", rec.Code, feed.sessions, id)
	}
}
