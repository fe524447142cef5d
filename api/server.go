/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the registry frontend

ROUTE GROUPS:
  /api/employees/*      Employee registry, audit on write
  /api/flagged          Flagged employees by severity
  /api/audit            Stateless audit
  /api/simulate         Progression simulator
  /api/cadres/*         Cadre configuration
  /api/scenarios/*      Demo scenarios
  /api/admin/*          Admin operations
  /healthz              Liveness

SECURITY NOTE:
  No authentication middleware. The registry is expected to sit behind the
  ministry's gateway.

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

// NewRouter creates a new router with all routes configured. With no
// origins the local development origins are allowed.
func NewRouter(h *Handler, allowedOrigins ...string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Post("/{id}/confirm", h.ConfirmEmployee)
			r.Post("/{id}/career-actions", h.AddCareerAction)
			r.Post("/{id}/audit", h.ReauditEmployee)
			r.Get("/{id}/audits", h.ListEmployeeAudits)
			r.Get("/{id}/salary", h.GetSalary)
		})

		// Audit routes
		r.Get("/flagged", h.ListFlagged)
		r.Post("/audit", h.AuditSnapshot)
		r.Post("/simulate", h.Simulate)

		// Cadre routes
		r.Route("/cadres", func(r chi.Router) {
			r.Get("/", h.ListCadres)
			r.Post("/", h.CreateCadre)
			r.Get("/{id}", h.GetCadre)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/reaudit", h.TriggerReaudit)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
