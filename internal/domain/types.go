package domain

import (
	"math"
	"time"

	"github.com/nikitakharat907-ai/emotiondetector/internal/emotion"
)

type ClassifyRequest struct {
	RequestID string `json:"request_id,omitempty"`
	Text      string `json:"text"`
}

type ClassifyResponse struct {
	RequestID string              `json:"request_id,omitempty"`
	Emotion   string              `json:"emotion"`
	Label     string              `json:"label"`
	Color     string              `json:"color"`
	Scores    emotion.ScoreVector `json:"scores"`
	Chart     emotion.ChartData   `json:"chart"`
	LatencyMS float64             `json:"latency_ms"`
}

type ProfilesResponse struct {
	Schema   string            `json:"schema"`
	Engine   string            `json:"engine"`
	Profiles []emotion.Profile `json:"profiles"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewClassifyResponse(requestID string, r emotion.Result, chart emotion.ChartData, latencyMS float64) ClassifyResponse {
	return ClassifyResponse{
		RequestID: requestID,
		Emotion:   r.Emotion,
		Label:     r.Label,
		Color:     r.Color,
		Scores:    r.Scores,
		Chart:     chart,
		LatencyMS: latencyMS,
	}
}

// LatencyMillis converts d to milliseconds rounded to microsecond precision.
func LatencyMillis(d time.Duration) float64 {
	ms := float64(d.Microseconds()) / 1000.0
	return math.Round(ms*1000) / 1000
}
