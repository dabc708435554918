package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/nikitakharat907-ai/emotiondetector/internal/domain"
	"github.com/nikitakharat907-ai/emotiondetector/internal/emotion"
	"github.com/nikitakharat907-ai/emotiondetector/internal/history"
)

const sessionCookie = "emotion_session"

//go:embed templates/index.html
var templateFS embed.FS

type Classifier interface {
	Classify(text string) emotion.Result
	Chart(r emotion.Result) emotion.ChartData
	Table() *emotion.Table
}

type Config struct {
	ReadBodyMaxByte int64
	CORSOrigins     []string
	CookieSecure    bool
	SessionTTL      time.Duration
}

// LiveFeed streams recorded classifications of one session.
type LiveFeed interface {
	Serve(w http.ResponseWriter, r *http.Request, sessionID string)
}

// Deps are optional collaborators; nil ones are skipped.
type Deps struct {
	Metrics interface {
		Middleware(next http.Handler) http.Handler
		Handler() http.Handler
	}
	Live LiveFeed
}

type Server struct {
	cfg        Config
	classifier Classifier
	history    *history.Service
	deps       Deps
	logger     *slog.Logger
	page       *template.Template
}

type pageData struct {
	Text       string
	Prediction string
	Color      string
	Chart      emotion.ChartData
	History    []history.Entry
}

func New(cfg Config, classifier Classifier, historySvc *history.Service, deps Deps, logger *slog.Logger) (*Server, error) {
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if historySvc == nil {
		return nil, errors.New("history service is required")
	}
	if cfg.ReadBodyMaxByte <= 0 {
		cfg.ReadBodyMaxByte = 65536
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &Server{
		cfg:        cfg,
		classifier: classifier,
		history:    historySvc,
		deps:       deps,
		logger:     logger,
		page:       page,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":     true,
			"schema": emotion.Schema,
			"engine": emotion.Engine,
			"labels": s.classifier.Table().Names(),
		})
	})

	r.Get("/", s.handleHome)
	r.Post("/predict", s.handlePredict)
	r.Get("/clear_history", s.handleClearHistory)
	if s.deps.Live != nil {
		r.Get("/ws", s.handleLive)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		r.Post("/emotion/classify", s.handleClassify)
		r.Get("/emotion/profiles", s.handleProfiles)
		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleHistoryClear)
	})
	return r
}

func (s *Server) handleHome(w http.ResponseWriter, req *http.Request) {
	sessionID := s.session(w, req)
	entries, err := s.history.Recent(req.Context(), sessionID)
	if err != nil {
		s.logger.Error("load history failed", "session_id", sessionID, "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	s.render(w, pageData{Chart: emotion.EmptyChart(), History: entries})
}

func (s *Server) handlePredict(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, s.cfg.ReadBodyMaxByte)
	if err := req.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	text := req.PostForm.Get("text_input")
	sessionID := s.session(w, req)

	res := s.classifier.Classify(text)
	if _, err := s.history.Record(req.Context(), sessionID, text, res); err != nil {
		s.logger.Error("record history failed", "session_id", sessionID, "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	entries, err := s.history.Recent(req.Context(), sessionID)
	if err != nil {
		s.logger.Error("load history failed", "session_id", sessionID, "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	s.logger.Info("classified text", "session_id", sessionID, "emotion", res.Emotion, "matches", res.Scores.Total())
	s.render(w, pageData{
		Text:       text,
		Prediction: res.Label,
		Color:      res.Color,
		Chart:      s.classifier.Chart(res),
		History:    entries,
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, req *http.Request) {
	sessionID := s.session(w, req)
	if err := s.history.Clear(req.Context(), sessionID); err != nil {
		s.logger.Error("clear history failed", "session_id", sessionID, "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, req, "/", http.StatusSeeOther)
}

// handleLive subscribes callers that already hold a session cookie.
func (s *Server) handleLive(w http.ResponseWriter, req *http.Request) {
	sessionID, ok := sessionFromRequest(req)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, domain.ErrorResponse{Error: "session cookie required"})
		return
	}
	s.deps.Live.Serve(w, req, sessionID)
}

func (s *Server) handleClassify(w http.ResponseWriter, req *http.Request) {
	var in domain.ClassifyRequest
	if err := decodeJSONBody(req, s.cfg.ReadBodyMaxByte, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: err.Error()})
		return
	}
	if in.RequestID == "" {
		in.RequestID = middleware.GetReqID(req.Context())
	}

	start := time.Now()
	res := s.classifier.Classify(in.Text)
	cost := time.Since(start)
	writeJSON(w, http.StatusOK, domain.NewClassifyResponse(in.RequestID, res, s.classifier.Chart(res), domain.LatencyMillis(cost)))
}

func (s *Server) handleProfiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.ProfilesResponse{
		Schema:   emotion.Schema,
		Engine:   emotion.Engine,
		Profiles: s.classifier.Table().Profiles(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, req *http.Request) {
	sessionID := s.session(w, req)
	entries, err := s.history.Recent(req.Context(), sessionID)
	if err != nil {
		s.logger.Error("load history failed", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, domain.ErrorResponse{Error: "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"history":    entries,
	})
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, req *http.Request) {
	sessionID := s.session(w, req)
	if err := s.history.Clear(req.Context(), sessionID); err != nil {
		s.logger.Error("clear history failed", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, domain.ErrorResponse{Error: "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// session returns the caller's session ID, issuing a new cookie when the
// request carries none or a malformed one.
func (s *Server) session(w http.ResponseWriter, req *http.Request) string {
	if id, ok := sessionFromRequest(req); ok {
		return id
	}
	id := uuid.NewString()
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.cfg.SessionTTL > 0 {
		cookie.MaxAge = int(s.cfg.SessionTTL.Seconds())
	}
	http.SetCookie(w, cookie)
	// later reads in the same request must see the new session
	req.AddCookie(cookie)
	return id
}

func sessionFromRequest(req *http.Request) (string, bool) {
	c, err := req.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (s *Server) render(w http.ResponseWriter, data pageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.logger.Error("render page failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func decodeJSONBody(req *http.Request, maxBytes int64, out any) error {
	defer req.Body.Close()
	data, err := io.ReadAll(io.LimitReader(req.Body, maxBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return fmt.Errorf("request body too large")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			return fmt.Errorf("invalid json: multiple JSON values")
		}
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
