package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fozagtx/adMat/internal/http/handlers"
	"github.com/fozagtx/adMat/internal/middleware"
)

// NewRouter wires the HTTP surface consumed by the presentation layer.
func NewRouter(app *handlers.App, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.CORS(allowedOrigins),
		middleware.Logger(app.Logger),
	)

	r.Get("/healthz", app.Health)

	r.Post("/generate", app.Generate)
	r.Get("/generate", app.Query)
	r.Get("/progress", app.Progress)
	r.Get("/download", app.Download)

	return r
}
