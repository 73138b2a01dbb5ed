package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fozagtx/adMat/internal/domain"
	"github.com/fozagtx/adMat/internal/status"
)

// fakeUpstream satisfies upstream.Client with canned behavior per method.
type fakeUpstream struct {
	submit      func(context.Context, domain.VideoGenerationRequest) (*domain.VideoRecord, error)
	fetchStatus func(context.Context, string) (*domain.VideoRecord, error)
	progress    func(context.Context, string) (*domain.GenerationProgress, error)
	resolve     func(context.Context, string) (string, error)
	list        func(context.Context) ([]domain.VideoRecord, error)
	submitCalls int
}

func (f *fakeUpstream) Submit(ctx context.Context, req domain.VideoGenerationRequest) (*domain.VideoRecord, error) {
	f.submitCalls++
	return f.submit(ctx, req)
}

func (f *fakeUpstream) FetchStatus(ctx context.Context, id string) (*domain.VideoRecord, error) {
	return f.fetchStatus(ctx, id)
}

func (f *fakeUpstream) FetchProgress(ctx context.Context, id string) (*domain.GenerationProgress, error) {
	return f.progress(ctx, id)
}

func (f *fakeUpstream) ResolveDownloadURL(ctx context.Context, id string) (string, error) {
	return f.resolve(ctx, id)
}

func (f *fakeUpstream) List(ctx context.Context) ([]domain.VideoRecord, error) {
	return f.list(ctx)
}

func newTestApp(client *fakeUpstream) *App {
	return NewApp(client, zerolog.New(io.Discard))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return body
}

func TestGenerateSuccess(t *testing.T) {
	client := &fakeUpstream{
		submit: func(_ context.Context, req domain.VideoGenerationRequest) (*domain.VideoRecord, error) {
			return &domain.VideoRecord{ID: "v1", Status: status.StatusPending, Prompt: req.Prompt}, nil
		},
	}
	app := newTestApp(client)

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":"a red panda drumming"}`))
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	data := body["data"].(map[string]any)
	if data["id"] != "v1" || data["status"] != "pending" {
		t.Errorf("data = %v", data)
	}
}

func TestGenerateBlankPromptSkipsUpstream(t *testing.T) {
	client := &fakeUpstream{
		submit: func(context.Context, domain.VideoGenerationRequest) (*domain.VideoRecord, error) {
			t.Fatalf("upstream must not be called for a blank prompt")
			return nil, nil
		},
	}
	app := newTestApp(client)

	for _, payload := range []string{`{"prompt":""}`, `{"prompt":"   "}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		app.Generate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %s: status = %d, want 400", payload, rec.Code)
		}
		body := decodeEnvelope(t, rec)
		if body["success"] == true {
			t.Errorf("payload %s: success must be false", payload)
		}
		if body["error"] == "" {
			t.Errorf("payload %s: error message missing", payload)
		}
	}
	if client.submitCalls != 0 {
		t.Fatalf("submit called %d times", client.submitCalls)
	}
}

func TestGenerateInvalidJSON(t *testing.T) {
	app := newTestApp(&fakeUpstream{})

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":`))
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateMissingCredential(t *testing.T) {
	client := &fakeUpstream{
		submit: func(context.Context, domain.VideoGenerationRequest) (*domain.VideoRecord, error) {
			return nil, domain.ErrMissingAPIKey
		},
	}
	app := newTestApp(client)

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":"anything"}`))
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	client := &fakeUpstream{
		submit: func(context.Context, domain.VideoGenerationRequest) (*domain.VideoRecord, error) {
			return nil, &domain.UpstreamError{StatusCode: http.StatusBadGateway, Message: "render farm unavailable"}
		},
	}
	app := newTestApp(client)

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":"anything"}`))
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if msg, _ := body["error"].(string); !strings.Contains(msg, "render farm unavailable") {
		t.Errorf("error = %v", body["error"])
	}
}

func TestQueryByID(t *testing.T) {
	client := &fakeUpstream{
		fetchStatus: func(_ context.Context, id string) (*domain.VideoRecord, error) {
			return &domain.VideoRecord{ID: id, Status: status.StatusProcessing}, nil
		},
	}
	app := newTestApp(client)

	req := httptest.NewRequest(http.MethodGet, "/generate?id=v1", nil)
	rec := httptest.NewRecorder()
	app.Query(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["id"] != "v1" {
		t.Errorf("data = %v", data)
	}
}

func TestQueryUnknownIDIs404(t *testing.T) {
	client := &fakeUpstream{
		fetchStatus: func(context.Context, string) (*domain.VideoRecord, error) {
			return nil, domain.ErrNotFound
		},
	}
	app := newTestApp(client)

	req := httptest.NewRequest(http.MethodGet, "/generate?id=missing", nil)
	rec := httptest.NewRecorder()
	app.Query(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestQueryWithoutIDDegradesWhenListingUnsupported(t *testing.T) {
	client := &fakeUpstream{
		list: func(context.Context) ([]domain.VideoRecord, error) {
			return nil, domain.ErrListUnsupported
		},
	}
	app := newTestApp(client)

	req := httptest.NewRequest(http.MethodGet, "/generate", nil)
	rec := httptest.NewRecorder()
	app.Query(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	data, ok := body["data"].([]any)
	if !ok || len(data) != 0 {
		t.Errorf("data = %v, want empty list", body["data"])
	}
	if msg, _ := body["message"].(string); msg == "" {
		t.Errorf("message must be non-empty")
	}
}

func TestQueryWithoutIDReturnsListing(t *testing.T) {
	client := &fakeUpstream{
		list: func(context.Context) ([]domain.VideoRecord, error) {
			return []domain.VideoRecord{
				{ID: "v1", Status: status.StatusCompleted},
				{ID: "v2", Status: status.StatusPending},
			}, nil
		},
	}
	app := newTestApp(client)

	req := httptest.NewRequest(http.MethodGet, "/generate", nil)
	rec := httptest.NewRecorder()
	app.Query(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].([]any)
	if len(data) != 2 {
		t.Errorf("len(data) = %d, want 2", len(data))
	}
}

func TestProgressRequiresID(t *testing.T) {
	app := newTestApp(&fakeUpstream{})

	req := httptest.NewRequest(http.MethodGet, "/progress", nil)
	rec := httptest.NewRecorder()
	app.Progress(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProgressReturnsSnapshot(t *testing.T) {
	client := &fakeUpstream{
		progress: func(_ context.Context, id string) (*domain.GenerationProgress, error) {
			return &domain.GenerationProgress{ID: id, Progress: 50, Status: status.StatusProcessing, CurrentStep: "Generating video"}, nil
		},
	}
	app := newTestApp(client)

	req := httptest.NewRequest(http.MethodGet, "/progress?id=v1", nil)
	rec := httptest.NewRecorder()
	app.Progress(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["progress"] != float64(50) || data["status"] != "processing" {
		t.Errorf("data = %v", data)
	}
}

func TestProgressUnknownIDIs404(t *testing.T) {
	client := &fakeUpstream{
		progress: func(context.Context, string) (*domain.GenerationProgress, error) {
			return nil, domain.ErrNotFound
		},
	}
	app := newTestApp(client)

	req := httptest.NewRequest(http.MethodGet, "/progress?id=ghost", nil)
	rec := httptest.NewRecorder()
	app.Progress(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDownloadRedirects(t *testing.T) {
	client := &fakeUpstream{
		resolve: func(context.Context, string) (string, error) {
			return "https://cdn.example.com/v1.mp4", nil
		},
	}
	app := newTestApp(client)

	req := httptest.NewRequest(http.MethodGet, "/download?id=v1", nil)
	rec := httptest.NewRecorder()
	app.Download(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "https://cdn.example.com/v1.mp4" {
		t.Errorf("Location = %q", got)
	}
}

func TestDownloadRequiresID(t *testing.T) {
	app := newTestApp(&fakeUpstream{})

	req := httptest.NewRequest(http.MethodGet, "/download", nil)
	rec := httptest.NewRecorder()
	app.Download(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDownloadNotReady(t *testing.T) {
	client := &fakeUpstream{
		resolve: func(context.Context, string) (string, error) {
			return "", &domain.NotReadyError{Status: status.StatusProcessing}
		},
	}
	app := newTestApp(client)

	req := httptest.NewRequest(http.MethodGet, "/download?id=v1", nil)
	rec := httptest.NewRecorder()
	app.Download(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if msg, _ := body["error"].(string); !strings.Contains(msg, "not ready") {
		t.Errorf("error = %v", body["error"])
	}
}
