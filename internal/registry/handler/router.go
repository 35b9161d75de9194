package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"botregistry/internal/auth"
	"botregistry/pkg/platform/middleware/apikey"
	"botregistry/pkg/platform/middleware/requesttime"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Handler  *Handler
	Provider auth.ClaimsProvider
	Logger   *slog.Logger
	Failures apikey.FailureCounter
	Auth     apikey.Config
}

// NewRouter assembles the full route tree.
//
//	/healthz                     liveness, unauthenticated
//	/admin/...                   admin key required
//	/public/institutions/...     unauthenticated reads
//	/public/participants/...     participant key required
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authenticate := apikey.Authenticate(deps.Auth, deps.Provider, deps.Logger, deps.Failures)

	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(apikey.RequireAdmin(deps.Logger))
		deps.Handler.RegisterAdmin(r)
	})

	r.Route("/public", func(r chi.Router) {
		r.Route("/institutions", deps.Handler.RegisterPublicInstitutions)
		r.Route("/participants", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(apikey.RequireParticipant(deps.Logger))
			deps.Handler.RegisterPublicParticipants(r)
		})
	})

	return r
}
