package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fozagtx/adMat/internal/domain"
	"github.com/fozagtx/adMat/internal/infra"
	"github.com/fozagtx/adMat/internal/status"
)

const openAIDefaultModel = "sora-2"

// OpenAIClient targets the OpenAI /videos job API. Unlike the SoraV2
// gateway it reports a real progress number and supports listing, and the
// finished asset is served from a fixed content path rather than a URL field
// in the job body.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewOpenAIClient constructs a client with sane defaults.
func NewOpenAIClient(opts Options) *OpenAIClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = openAIDefaultModel
	}
	return &OpenAIClient{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: opts.httpClient(),
		logger:     opts.logger(),
	}
}

type openAIVideoRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Seconds string `json:"seconds"`
	Size    string `json:"size"`
}

type openAIVideoJob struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	Progress    float64 `json:"progress"`
	Size        string  `json:"size"`
	Seconds     string  `json:"seconds"`
	CreatedAt   int64   `json:"created_at"`
	CompletedAt int64   `json:"completed_at"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type openAIVideoList struct {
	Data []openAIVideoJob `json:"data"`
}

func (c *OpenAIClient) contentURL(id string) string {
	return c.baseURL + "/videos/" + id + "/content"
}

func (c *OpenAIClient) toRecord(j openAIVideoJob) *domain.VideoRecord {
	st := status.FromUpstream(j.Status)
	seconds, _ := strconv.Atoi(j.Seconds)
	rec := &domain.VideoRecord{
		ID:              j.ID,
		Status:          st,
		DurationSeconds: seconds,
		CreatedAt:       unixTime(j.CreatedAt),
		UpdatedAt:       unixTime(j.CreatedAt),
	}
	if j.CompletedAt != 0 {
		rec.UpdatedAt = unixTime(j.CompletedAt)
	}
	if st == status.StatusCompleted {
		rec.VideoURL = c.contentURL(j.ID)
	}
	if st == status.StatusFailed && j.Error != nil {
		rec.Error = j.Error.Message
	}
	return rec
}

// normalizeProgress brings the API's progress onto a 0-100 integer scale.
// Older responses report a 0-1 fraction, newer ones a percentage.
func normalizeProgress(progress float64) int {
	if progress > 0 && progress <= 1 {
		progress *= 100
	}
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return int(progress)
}

// Submit creates a video job from the request.
func (c *OpenAIClient) Submit(ctx context.Context, req domain.VideoGenerationRequest) (*domain.VideoRecord, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	payload := openAIVideoRequest{
		Model:   c.model,
		Prompt:  req.Prompt,
		Seconds: strconv.Itoa(req.DurationSeconds),
		Size:    videoSize(req.AspectRatio, req.Resolution),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}
	raw, err := c.do(ctx, http.MethodPost, "/videos", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var job openAIVideoJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	rec := c.toRecord(job)
	rec.Prompt = req.Prompt
	rec.DurationSeconds = req.DurationSeconds
	rec.Resolution = req.Resolution
	rec.Style = req.Style
	rec.AspectRatio = req.AspectRatio
	c.logger.Debug().
		Str("video_id", rec.ID).
		Str("model", c.model).
		Str("size", payload.Size).
		Msg("openai: submitted video job")
	return rec, nil
}

// FetchStatus retrieves the current record for a job id.
func (c *OpenAIClient) FetchStatus(ctx context.Context, id string) (*domain.VideoRecord, error) {
	job, err := c.fetchJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.toRecord(*job), nil
}

// FetchProgress builds a progress snapshot from the job's own progress
// number, falling back to the status heuristic when the field is absent.
func (c *OpenAIClient) FetchProgress(ctx context.Context, id string) (*domain.GenerationProgress, error) {
	job, err := c.fetchJob(ctx, id)
	if err != nil {
		return nil, err
	}
	st := status.FromUpstream(job.Status)
	progress := normalizeProgress(job.Progress)
	if job.Progress == 0 {
		progress = status.ProgressFor(job.Status)
	}
	return &domain.GenerationProgress{
		ID:          job.ID,
		Progress:    progress,
		Status:      st,
		CurrentStep: status.StepLabel(st),
	}, nil
}

// ResolveDownloadURL returns the content URL for a completed job.
func (c *OpenAIClient) ResolveDownloadURL(ctx context.Context, id string) (string, error) {
	job, err := c.fetchJob(ctx, id)
	if err != nil {
		return "", err
	}
	st := status.FromUpstream(job.Status)
	if st != status.StatusCompleted {
		return "", &domain.NotReadyError{Status: st}
	}
	return c.contentURL(job.ID), nil
}

// List returns the caller's video jobs.
func (c *OpenAIClient) List(ctx context.Context) ([]domain.VideoRecord, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	raw, err := c.do(ctx, http.MethodGet, "/videos", nil)
	if err != nil {
		return nil, err
	}
	var list openAIVideoList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	records := make([]domain.VideoRecord, 0, len(list.Data))
	for _, job := range list.Data {
		records = append(records, *c.toRecord(job))
	}
	return records, nil
}

func (c *OpenAIClient) fetchJob(ctx context.Context, id string) (*openAIVideoJob, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	raw, err := c.do(ctx, http.MethodGet, "/videos/"+id, nil)
	if err != nil {
		return nil, err
	}
	var job openAIVideoJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	return &job, nil
}

func (c *OpenAIClient) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, upstreamFailure(resp, raw)
	}
	return raw, nil
}

var _ Client = (*OpenAIClient)(nil)
