package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/srsforge/internal/api/middleware"
	"github.com/phrazzld/srsforge/internal/service/auth"
)

// RouterDeps holds what NewRouter needs to build the HTTP surface.
type RouterDeps struct {
	Auth          *AuthHandler
	Runs          *RunHandler
	Manifests     *ManifestHandler
	JWTService    auth.JWTService
	DB            Pinger
	Logger        *slog.Logger
	DisableReqLog bool
}

// NewRouter builds the chi router with the standard middleware stack.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if !deps.DisableReqLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(deps.JWTService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token", deps.Auth.Token)
		r.Post("/manifests/validate", deps.Manifests.Validate)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/runs", deps.Runs.CreateRun)
			r.Get("/runs", deps.Runs.ListRuns)
			r.Get("/runs/{id}", deps.Runs.GetRun)
			r.Get("/runs/{id}/artifacts", deps.Runs.ListArtifacts)
		})
	})

	r.Get("/health", Health(deps.DB))
	return r
}
