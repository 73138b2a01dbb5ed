package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fozagtx/adMat/internal/domain"
	"github.com/fozagtx/adMat/internal/infra"
	"github.com/fozagtx/adMat/internal/status"
)

const soraV2DefaultModel = "sora-v2"

// SoraV2Client performs HTTP calls against the SoraV2 generation gateway.
// The gateway exposes no percentage for running jobs, so progress is derived
// from the status token alone.
type SoraV2Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewSoraV2Client constructs a client with sane defaults.
func NewSoraV2Client(opts Options) *SoraV2Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = soraV2DefaultModel
	}
	return &SoraV2Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		model:      model,
		httpClient: opts.httpClient(),
		logger:     opts.logger(),
	}
}

type soraV2GenerationRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Seconds int    `json:"seconds"`
	Style   string `json:"style,omitempty"`
}

// soraV2Job is the gateway's job shape. URL fields vary between gateway
// versions, so all three spellings are declared and probed in order.
type soraV2Job struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Prompt       string `json:"prompt"`
	URL          string `json:"url"`
	VideoURL     string `json:"video_url"`
	DownloadURL  string `json:"download_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Seconds      int    `json:"seconds"`
	CurrentStep  string `json:"current_step"`
	ETASeconds   int    `json:"eta_seconds"`
	Error        string `json:"error"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

// soraV2Response covers both response shapes the gateway has been observed
// to return: a data collection whose first element is the job, or the job as
// the top-level object.
type soraV2Response struct {
	Data []soraV2Job `json:"data"`
	soraV2Job
}

func (r soraV2Response) job() soraV2Job {
	if len(r.Data) > 0 {
		return r.Data[0]
	}
	return r.soraV2Job
}

func (j soraV2Job) assetURL() string {
	for _, candidate := range []string{j.URL, j.VideoURL, j.DownloadURL} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

func (c *SoraV2Client) toRecord(j soraV2Job) *domain.VideoRecord {
	st := status.FromUpstream(j.Status)
	rec := &domain.VideoRecord{
		ID:              j.ID,
		Status:          st,
		Prompt:          j.Prompt,
		DurationSeconds: j.Seconds,
		CreatedAt:       unixTime(j.CreatedAt),
		UpdatedAt:       unixTime(j.UpdatedAt),
	}
	if st == status.StatusCompleted {
		rec.VideoURL = j.assetURL()
		rec.ThumbnailURL = j.ThumbnailURL
	}
	if st == status.StatusFailed {
		rec.Error = j.Error
	}
	return rec
}

// Submit creates a generation job from the request. The response is parsed
// from the first element of the result collection or the top-level object,
// whichever the gateway returns.
func (c *SoraV2Client) Submit(ctx context.Context, req domain.VideoGenerationRequest) (*domain.VideoRecord, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	payload := soraV2GenerationRequest{
		Model:   c.model,
		Prompt:  req.Prompt,
		Size:    videoSize(req.AspectRatio, req.Resolution),
		Seconds: req.DurationSeconds,
		Style:   req.Style,
	}
	requestID := uuid.NewString()
	job, err := c.do(ctx, http.MethodPost, "/videos/generations", payload, requestID)
	if err != nil {
		return nil, err
	}
	rec := c.toRecord(job)
	rec.Prompt = req.Prompt
	rec.DurationSeconds = req.DurationSeconds
	rec.Resolution = req.Resolution
	rec.Style = req.Style
	rec.AspectRatio = req.AspectRatio
	c.logger.Debug().
		Str("request_id", requestID).
		Str("video_id", rec.ID).
		Str("size", payload.Size).
		Msg("sorav2: submitted generation job")
	return rec, nil
}

// FetchStatus retrieves the current record for a job id.
func (c *SoraV2Client) FetchStatus(ctx context.Context, id string) (*domain.VideoRecord, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	job, err := c.do(ctx, http.MethodGet, "/videos/generations/"+id, nil, "")
	if err != nil {
		return nil, err
	}
	return c.toRecord(job), nil
}

// FetchProgress derives a progress snapshot for a job id. The gateway
// reports no percentage, so the status-token heuristic stands in.
func (c *SoraV2Client) FetchProgress(ctx context.Context, id string) (*domain.GenerationProgress, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	job, err := c.do(ctx, http.MethodGet, "/videos/generations/"+id, nil, "")
	if err != nil {
		return nil, err
	}
	st := status.FromUpstream(job.Status)
	step := job.CurrentStep
	if step == "" {
		step = status.StepLabel(st)
	}
	return &domain.GenerationProgress{
		ID:                        job.ID,
		Progress:                  status.ProgressFor(job.Status),
		Status:                    st,
		CurrentStep:               step,
		EstimatedSecondsRemaining: job.ETASeconds,
	}, nil
}

// ResolveDownloadURL returns the asset URL for a completed job.
func (c *SoraV2Client) ResolveDownloadURL(ctx context.Context, id string) (string, error) {
	rec, err := c.FetchStatus(ctx, id)
	if err != nil {
		return "", err
	}
	if rec.Status != status.StatusCompleted {
		return "", &domain.NotReadyError{Status: rec.Status}
	}
	if rec.VideoURL == "" {
		return "", domain.ErrAssetMissing
	}
	return rec.VideoURL, nil
}

// List is unsupported by the gateway; callers degrade to an empty result.
func (c *SoraV2Client) List(ctx context.Context) ([]domain.VideoRecord, error) {
	return nil, domain.ErrListUnsupported
}

func (c *SoraV2Client) do(ctx context.Context, method, path string, payload any, requestID string) (soraV2Job, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return soraV2Job{}, fmt.Errorf("sorav2: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return soraV2Job{}, fmt.Errorf("sorav2: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return soraV2Job{}, fmt.Errorf("sorav2: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return soraV2Job{}, fmt.Errorf("sorav2: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return soraV2Job{}, upstreamFailure(resp, raw)
	}

	var decoded soraV2Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return soraV2Job{}, fmt.Errorf("sorav2: decode response: %w", err)
	}
	return decoded.job(), nil
}

var _ Client = (*SoraV2Client)(nil)
