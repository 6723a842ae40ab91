package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	ReplicateAPIToken string
	ReplicateBaseURL  string

	TextModel  string
	ImageModel string
	VideoModel string
	TTSModel   string
	STTModel   string

	PollInterval time.Duration
	RunTimeout   time.Duration
	VideoTimeout time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ReplicateAPIToken: os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateBaseURL:  getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),
		TextModel:         getEnv("REPLICATE_TEXT_MODEL", "openai/gpt-4o-mini"),
		ImageModel:        getEnv("REPLICATE_IMAGE_MODEL", "black-forest-labs/flux-schnell"),
		VideoModel:        getEnv("REPLICATE_VIDEO_MODEL", "bytedance/seedance-1-lite"),
		TTSModel:          getEnv("REPLICATE_TTS_MODEL", "minimax/speech-02-turbo"),
		STTModel:          getEnv("REPLICATE_STT_MODEL", "openai/whisper"),
		PollInterval:      time.Millisecond * time.Duration(getEnvInt("REPLICATE_POLL_INTERVAL_MS", 1500)),
		RunTimeout:        time.Second * time.Duration(getEnvInt("REPLICATE_TIMEOUT_SECONDS", 120)),
		VideoTimeout:      time.Second * time.Duration(getEnvInt("REPLICATE_VIDEO_TIMEOUT_SECONDS", 300)),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 330)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:    splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if cfg.ReplicateAPIToken == "" {
		return nil, fmt.Errorf("REPLICATE_API_TOKEN is required")
	}

	// The write timeout must outlive the longest generation budget or the
	// server cuts the connection before the envelope is written.
	if cfg.HTTPWriteTimeout <= cfg.VideoTimeout {
		cfg.HTTPWriteTimeout = cfg.VideoTimeout + 30*time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
