package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/edi-app/edi-intake/internal/applicant"
	"github.com/edi-app/edi-intake/internal/auth"
	"github.com/edi-app/edi-intake/internal/identity"
	"github.com/edi-app/edi-intake/internal/transport/middleware"
	"github.com/edi-app/edi-intake/internal/transport/swagger"
	"github.com/go-chi/chi"
)

// RegisterAllRoutes wires every HTTP route onto the router. Health and the
// OpenAPI artifacts stay public; everything that touches stored records sits
// behind token authentication. Per-record access decisions happen further
// down in the services, not here.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, verifier *auth.Verifier, identityHandler *identity.Handler, applicantHandler *applicant.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Authenticated routes
		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Authenticate(verifier, logger))

			if applicantHandler != nil {
				pr.Route("/applicants", func(ar chi.Router) {
					ar.Post("/", applicantHandler.CreateApplicant)      // POST /applicants
					ar.Get("/", applicantHandler.ListApplicants)        // GET /applicants
					ar.Get("/{id}", applicantHandler.GetApplicant)      // GET /applicants/:id
					ar.Patch("/{id}", applicantHandler.UpdateApplicant) // PATCH /applicants/:id
					ar.Delete("/{id}", applicantHandler.DeleteApplicant)
				})
			}

			if identityHandler != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Post("/", identityHandler.CreateUser) // handler enforces the elevated capability
					ur.Get("/{email}", identityHandler.GetUserByEmail)
				})
			}
		})
	})
}
