package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type EmotionServerConfig struct {
	HTTPAddr        string
	ReadBodyMaxByte int64
	ProfilesPath    string
	SpellCheck      bool
	HistoryLimit    int
	SessionTTL      time.Duration
	SweepInterval   time.Duration
	CookieSecure    bool
	CORSOrigins     []string
	DBDSN           string
	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string
}

func LoadEmotionServerConfig() (EmotionServerConfig, error) {
	cfg := EmotionServerConfig{
		HTTPAddr:        getenvDefault("EMOTION_HTTP_ADDR", ":9012"),
		ReadBodyMaxByte: int64(getenvIntDefault("EMOTION_MAX_BODY_BYTES", 65536)),
		ProfilesPath:    os.Getenv("EMOTION_PROFILES_PATH"),
		SpellCheck:      getenvBoolDefault("EMOTION_SPELLCHECK", true),
		HistoryLimit:    getenvIntDefault("EMOTION_HISTORY_LIMIT", 50),
		SessionTTL:      time.Duration(getenvIntDefault("EMOTION_SESSION_TTL_SECONDS", 86400)) * time.Second,
		SweepInterval:   time.Duration(getenvIntDefault("EMOTION_SWEEP_INTERVAL_SECONDS", 300)) * time.Second,
		CookieSecure:    getenvBoolDefault("EMOTION_COOKIE_SECURE", false),
		CORSOrigins:     getenvListDefault("EMOTION_CORS_ORIGINS", []string{"*"}),
		DBDSN:           os.Getenv("DB_DSN"),
		MQTTBrokerURL:   os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:    getenvDefault("EMOTION_MQTT_CLIENT_ID", "emotion-server"),
		MQTTUsername:    os.Getenv("MQTT_USERNAME"),
		MQTTPassword:    os.Getenv("MQTT_PASSWORD"),
		MQTTTopicPrefix: strings.Trim(getenvDefault("MQTT_TOPIC_PREFIX", "emotion"), "/"),
	}

	if cfg.ReadBodyMaxByte <= 0 {
		return EmotionServerConfig{}, fmt.Errorf("EMOTION_MAX_BODY_BYTES must be positive")
	}
	if cfg.HistoryLimit <= 0 {
		return EmotionServerConfig{}, fmt.Errorf("EMOTION_HISTORY_LIMIT must be positive")
	}
	if cfg.SessionTTL <= 0 {
		return EmotionServerConfig{}, fmt.Errorf("EMOTION_SESSION_TTL_SECONDS must be positive")
	}
	if cfg.MQTTBrokerURL != "" && cfg.MQTTTopicPrefix == "" {
		return EmotionServerConfig{}, fmt.Errorf("MQTT_TOPIC_PREFIX is required when MQTT_BROKER_URL is set")
	}

	return cfg, nil
}

func (c EmotionServerConfig) MQTTEnabled() bool {
	return c.MQTTBrokerURL != ""
}

func getenvDefault(key, val string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return val
}

func getenvIntDefault(key string, val int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return val
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return val
	}
	return n
}

func getenvBoolDefault(key string, val bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return val
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return val
	}
	return b
}

func getenvListDefault(key string, val []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return val
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return val
	}
	return out
}
