package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fozagtx/adMat/internal/domain"
)

// Generate accepts a generation request, submits it upstream, and returns
// the resulting record. Validation failures never reach the upstream.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.VideoGenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		a.fail(w, r, err)
		return
	}

	rec, err := a.Upstream.Submit(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("video_id", rec.ID).Msg("video generation submitted")
	a.ok(w, rec)
}

// Query returns a single record by id, or the full listing when id is
// omitted. A backend that cannot list degrades to an empty collection with
// an explanatory message instead of failing.
func (a *App) Query(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id != "" {
		rec, err := a.Upstream.FetchStatus(r.Context(), id)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		a.ok(w, rec)
		return
	}

	records, err := a.Upstream.List(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrListUnsupported) {
			a.json(w, http.StatusOK, envelope{
				Success: true,
				Data:    []domain.VideoRecord{},
				Message: "the upstream service does not support listing videos; query by id instead",
			})
			return
		}
		a.fail(w, r, err)
		return
	}
	if records == nil {
		records = []domain.VideoRecord{}
	}
	a.ok(w, records)
}

// Progress returns the current progress snapshot for a job.
func (a *App) Progress(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "id is required")
		return
	}
	progress, err := a.Upstream.FetchProgress(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, progress)
}

// Download redirects to the upstream-hosted asset. The binary is never
// proxied through this service.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "id is required")
		return
	}
	url, err := a.Upstream.ResolveDownloadURL(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
