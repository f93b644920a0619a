/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/days/{date}/*    Daily view, duplicates, lock, submit, resolve, approve
  /api/reports/*        Individual reports and their absences
  /api/absences/*       Absence cancellation
  /api/officers/*       Officer directory
  /api/employees/*      Employee roster
  /api/audit            Audit trail
  /api/seed             Demo data loader
  /api/reset            Database reset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Day routes
		r.Route("/days/{date}", func(r chi.Router) {
			r.Get("/", h.GetDailyView)
			r.Get("/duplicates", h.GetDuplicates)
			r.Get("/lock", h.GetLockState)
			r.Post("/reports", h.SubmitReport)
			r.Post("/resolve", h.ResolveDuplicate)
			r.Post("/approve", h.ApproveDay)
			r.Post("/unapprove", h.UnapproveDay)
		})

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/{id}", h.GetReport)
			r.Post("/{id}/absences", h.AddAbsence)
		})

		// Absence routes
		r.Route("/absences", func(r chi.Router) {
			r.Delete("/{id}", h.CancelAbsence)
		})

		// Directory routes
		r.Route("/officers", func(r chi.Router) {
			r.Get("/", h.ListOfficers)
			r.Post("/", h.CreateOfficer)
		})
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
		})

		// Admin routes
		r.Get("/audit", h.ListAuditEvents)
		r.Post("/seed", h.LoadSeed)
		r.Post("/reset", h.ResetDatabase)
	})

	// Health check for load balancers and container probes
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
