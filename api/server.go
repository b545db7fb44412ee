/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a browser frontend

ROUTE GROUPS:
  /api/entries/*    Check-in/out, special days, breaks, edits, clears
  /api/timesheet/*  Rows, CSV export/import
  /api/dashboard    Overtime money and balances
  /api/periods/*    Pay period management
  /api/settings     Profile values
  /api/rules        Active rule set
  /api/scenarios/*  Demo scenarios

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
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

	r.Route("/api", func(r chi.Router) {
		// Entry routes
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Put("/", h.EditEntry)
			r.Delete("/", h.ClearAll)
			r.Get("/status", h.GetStatus)
			r.Post("/check-in", h.CheckIn)
			r.Post("/check-out", h.CheckOut)
			r.Post("/manual", h.ManualTime)
			r.Post("/special", h.AddSpecialDay)
			r.Post("/breaks", h.AddBreak)
			r.Delete("/month/{month}", h.ClearMonth)
			r.Delete("/{date}", h.DeleteEntries)
		})

		// Timesheet routes
		r.Route("/timesheet", func(r chi.Router) {
			r.Get("/", h.GetTimesheet)
			r.Get("/export.csv", h.ExportCSV)
			r.Post("/import", h.ImportCSV)
		})

		r.Get("/dashboard", h.GetDashboard)
		r.Get("/balances", h.GetBalances)
		r.Get("/balances/{type}", h.GetLeaveDays)

		// Pay period routes
		r.Route("/periods", func(r chi.Router) {
			r.Get("/", h.ListPeriods)
			r.Post("/", h.CreatePeriod)
			r.Get("/current", h.GetCurrentPeriod)
			r.Get("/coverage", h.GetCoverage)
			r.Put("/{id}", h.UpdatePeriod)
			r.Delete("/{id}", h.DeletePeriod)
			r.Post("/{id}/select", h.SelectPeriod)
		})

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)
		r.Get("/rules", h.GetRules)

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
