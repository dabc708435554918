package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nikitakharat907-ai/emotiondetector/internal/domain"
)

// expected: {prefix}/classify/{requestId}
func ParseClassifyTopic(topic, prefix string) (string, error) {
	parts := strings.Split(topic, "/")
	prefixParts := strings.Split(prefix, "/")
	if len(parts) != len(prefixParts)+2 {
		return "", fmt.Errorf("invalid topic: %s", topic)
	}
	for i, p := range prefixParts {
		if parts[i] != p {
			return "", fmt.Errorf("topic prefix mismatch: %s", topic)
		}
	}
	if parts[len(prefixParts)] != "classify" {
		return "", fmt.Errorf("invalid topic pattern: %s", topic)
	}
	requestID := parts[len(prefixParts)+1]
	if requestID == "" {
		return "", fmt.Errorf("missing request id: %s", topic)
	}
	return requestID, nil
}

// DecodeClassifyPayload accepts either {"text": "..."} or the raw text.
func DecodeClassifyPayload(payload []byte, requestID string) domain.ClassifyRequest {
	var req domain.ClassifyRequest
	trimmed := strings.TrimSpace(string(payload))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(payload, &req); err == nil {
			if req.RequestID == "" {
				req.RequestID = requestID
			}
			return req
		}
	}
	return domain.ClassifyRequest{RequestID: requestID, Text: string(payload)}
}
