package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fozagtx/adMat/internal/domain"
	"github.com/fozagtx/adMat/internal/infra"
	"github.com/fozagtx/adMat/internal/upstream"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Upstream upstream.Client
	Logger   infra.Logger
}

func NewApp(client upstream.Client, logger infra.Logger) *App {
	return &App{Upstream: client, Logger: logger}
}

// envelope is the uniform response wrapper every endpoint returns.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) ok(w http.ResponseWriter, data any) {
	a.json(w, http.StatusOK, envelope{Success: true, Data: data})
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, envelope{Error: message})
}

// fail converts an error from the upstream client into the envelope with the
// matching status code. Nothing is allowed to escape to the transport layer.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidPrompt):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	}
	if code == http.StatusInternalServerError {
		a.Logger.Warn().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	a.error(w, code, err.Error())
}
