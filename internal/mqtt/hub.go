package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/nikitakharat907-ai/emotiondetector/internal/domain"
	"github.com/nikitakharat907-ai/emotiondetector/internal/emotion"
	"github.com/nikitakharat907-ai/emotiondetector/internal/history"
)

var ErrNotConnected = errors.New("mqtt hub is not connected")

type HubConfig struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

type Classifier interface {
	Classify(text string) emotion.Result
	Chart(r emotion.Result) emotion.ChartData
}

// Hub answers classify requests arriving over MQTT and publishes history
// events recorded by the HTTP side.
type Hub struct {
	cfg        HubConfig
	client     paho.Client
	classifier Classifier
	logger     *slog.Logger
}

func NewHub(cfg HubConfig, classifier Classifier, logger *slog.Logger) *Hub {
	return &Hub{
		cfg:        cfg,
		classifier: classifier,
		logger:     logger,
	}
}

func (h *Hub) Start(ctx context.Context) error {
	opts := paho.NewClientOptions().
		AddBroker(h.cfg.BrokerURL).
		SetClientID(h.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if h.cfg.Username != "" {
		opts.SetUsername(h.cfg.Username)
		opts.SetPassword(h.cfg.Password)
	}

	onlineTopic := TopicOnline(h.cfg.TopicPrefix, h.cfg.ClientID)
	opts.SetWill(onlineTopic, "offline", 1, true)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		h.logger.Error("mqtt connection lost", "error", err)
	})
	opts.SetOnConnectHandler(func(c paho.Client) {
		// subscriptions do not survive a reconnect without a persistent session
		if err := h.subscribe(c); err != nil {
			h.logger.Error("mqtt subscribe failed", "error", err)
		}
	})

	h.client = paho.NewClient(opts)
	if token := h.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	if token := h.client.Publish(onlineTopic, 1, true, "online"); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	go func() {
		<-ctx.Done()
		h.client.Disconnect(100)
	}()

	h.logger.Info("mqtt hub connected", "broker", h.cfg.BrokerURL, "prefix", h.cfg.TopicPrefix)
	return nil
}

func (h *Hub) subscribe(c paho.Client) error {
	if token := c.Subscribe(TopicClassifyRequests(h.cfg.TopicPrefix), 1, h.handleClassify); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (h *Hub) handleClassify(c paho.Client, msg paho.Message) {
	requestID, err := ParseClassifyTopic(msg.Topic(), h.cfg.TopicPrefix)
	if err != nil {
		h.logger.Warn("skip invalid classify topic", "topic", msg.Topic(), "error", err)
		return
	}

	body, err := h.answer(requestID, msg.Payload())
	if err != nil {
		h.logger.Warn("encode classify result failed", "request_id", requestID, "error", err)
		return
	}

	topic := TopicResult(h.cfg.TopicPrefix, requestID)
	if token := c.Publish(topic, 1, false, body); token.Wait() && token.Error() != nil {
		h.logger.Warn("publish classify result failed", "request_id", requestID, "error", token.Error())
	}
}

func (h *Hub) answer(requestID string, payload []byte) ([]byte, error) {
	req := DecodeClassifyPayload(payload, requestID)
	start := time.Now()
	res := h.classifier.Classify(req.Text)
	cost := time.Since(start)

	h.logger.Debug("mqtt classify", "request_id", req.RequestID, "emotion", res.Emotion)
	return json.Marshal(domain.NewClassifyResponse(req.RequestID, res, h.classifier.Chart(res), domain.LatencyMillis(cost)))
}

// Publish sends a history event to {prefix}/events.
func (h *Hub) Publish(ctx context.Context, ev history.Event) error {
	if h.client == nil || !h.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	token := h.client.Publish(TopicEvents(h.cfg.TopicPrefix), 0, false, body)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
