package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend identifiers accepted by VIDEO_BACKEND.
const (
	BackendSoraV2 = "sorav2"
	BackendOpenAI = "openai"
)

// Config represents application configuration loaded from environment
// variables once at startup. It is read-only afterwards; no call site looks
// at the environment directly.
type Config struct {
	AppEnv string
	Port   string

	// VideoBackend selects which upstream adapter serves generation calls.
	VideoBackend string

	Sora2APIKey   string
	Sora2Endpoint string

	OpenAIAPIKey  string
	OpenAIBaseURL string

	AllowedOrigins []string

	PollInterval time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig builds the configuration from environment variables, applying
// defaults where needed. A missing upstream API key is not an error here:
// the service starts with a warning and each call that needs the credential
// fails individually, so health checks and the rest of the surface stay up.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		VideoBackend:     getEnv("VIDEO_BACKEND", BackendSoraV2),
		Sora2APIKey:      os.Getenv("SORA2_API_KEY"),
		Sora2Endpoint:    getEnv("SORA2_API_ENDPOINT", "https://api.sorav2.example.com/v2"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		PollInterval:     time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 1)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	return cfg, nil
}

// UpstreamAPIKey returns the credential for the selected backend.
func (c *Config) UpstreamAPIKey() string {
	if c.VideoBackend == BackendOpenAI {
		return c.OpenAIAPIKey
	}
	return c.Sora2APIKey
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

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
