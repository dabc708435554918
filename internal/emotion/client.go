package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a running emotion server.
type Client struct {
	baseURL string
	http    *http.Client
}

// RemoteResult is the classify response of the emotion server.
type RemoteResult struct {
	Result
	Chart     ChartData `json:"chart"`
	LatencyMS float64   `json:"latency_ms"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

func (c *Client) Classify(ctx context.Context, text string) (RemoteResult, error) {
	if !c.Enabled() {
		return RemoteResult{}, fmt.Errorf("emotion service is not configured")
	}
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return RemoteResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/emotion/classify", bytes.NewReader(body))
	if err != nil {
		return RemoteResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return RemoteResult{}, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return RemoteResult{}, fmt.Errorf("emotion service status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out RemoteResult
	if err := json.Unmarshal(respBody, &out); err != nil {
		return RemoteResult{}, fmt.Errorf("decode emotion response: %w", err)
	}
	return out, nil
}
