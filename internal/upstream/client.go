// Package upstream talks to the third-party video-generation services. Two
// interchangeable backends are supported: the SoraV2 gateway and the OpenAI
// videos API. Both translate their own wire vocabulary into the internal
// lifecycle via the status package.
package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fozagtx/adMat/internal/domain"
	"github.com/fozagtx/adMat/internal/infra"
)

// Client is the capability the handlers and the poller consume. The upstream
// service is the source of truth for every record; no method caches.
type Client interface {
	Submit(ctx context.Context, req domain.VideoGenerationRequest) (*domain.VideoRecord, error)
	FetchStatus(ctx context.Context, id string) (*domain.VideoRecord, error)
	FetchProgress(ctx context.Context, id string) (*domain.GenerationProgress, error)
	ResolveDownloadURL(ctx context.Context, id string) (string, error)
	List(ctx context.Context) ([]domain.VideoRecord, error)
}

// Options configures an upstream client.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	// HTTPClient carries the per-call timeout policy. When nil the default
	// client is used, which has no timeout beyond transport defaults; inject
	// a client with a Timeout to bound individual calls.
	HTTPClient *http.Client
	Logger     *infra.Logger
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return http.DefaultClient
}

func (o Options) logger() *infra.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	discard := zerolog.New(io.Discard)
	l := infra.Logger(discard)
	return &l
}

// NewClient constructs the adapter selected by the configuration.
func NewClient(cfg *infra.Config, logger *infra.Logger) Client {
	switch cfg.VideoBackend {
	case infra.BackendOpenAI:
		return NewOpenAIClient(Options{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Logger:  logger,
		})
	default:
		return NewSoraV2Client(Options{
			APIKey:  cfg.Sora2APIKey,
			BaseURL: cfg.Sora2Endpoint,
			Logger:  logger,
		})
	}
}

// errorMessage extracts a human-readable message from an upstream error
// body. Both backends nest it differently, so probe error.message first,
// then a top-level message, then fall back to the raw body or status text.
func errorMessage(statusCode int, body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		return trimmed
	}
	return http.StatusText(statusCode)
}

// upstreamFailure converts a non-success response into the error taxonomy.
// A 404 passes through as ErrNotFound so handlers can surface it as-is.
func upstreamFailure(resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return &domain.UpstreamError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.StatusCode, body),
	}
}

func unixTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
