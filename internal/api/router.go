package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health and metrics (no auth required for basic monitoring)
		r.Get("/system/health", s.handleHealth)
		r.Get("/system/metrics", s.handleMetrics)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// WS ticket requires authentication - user must be logged in to request a ticket
			r.Post("/auth/ws-ticket", s.handleWSTicket)
			r.Get("/auth/me", s.handleMe)

			// Light endpoints
			r.Route("/lights", func(r chi.Router) {
				r.Get("/", s.handleListLights)
				r.With(s.adminMiddleware).Post("/", s.handleCreateLight)
				r.Post("/color", s.handleApplyColours)
				r.Get("/stats", s.handleLightStats)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetLight)
					r.With(s.adminMiddleware).Put("/", s.handleUpdateLight)
					r.With(s.adminMiddleware).Delete("/", s.handleDeleteLight)
					r.Post("/color", s.handleApplyColour)
				})
			})

			// Palette endpoints
			r.Route("/palettes", func(r chi.Router) {
				r.Get("/", s.handleListPalettes)
				r.With(s.adminMiddleware).Post("/", s.handleCreatePalette)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetPalette)
					r.With(s.adminMiddleware).Put("/", s.handleUpdatePalette)
					r.With(s.adminMiddleware).Delete("/", s.handleDeletePalette)
					r.Post("/apply", s.handleApplyPalette)
				})
			})

			// Animation endpoints
			r.Route("/animations", func(r chi.Router) {
				r.Get("/", s.handleListAnimations)
				r.Delete("/", s.handleStopAllAnimations)
				r.Post("/start-synchronized", s.handleStartSynchronised)
				r.Post("/start-staggered", s.handleStartStaggered)

				r.Route("/{target}", func(r chi.Router) {
					r.Get("/", s.handleGetAnimation)
					r.Post("/start", s.handleStartAnimation)
					r.Delete("/", s.handleStopAnimation)
				})
			})

			// Runtime settings
			r.Get("/settings", s.handleGetSettings)
			r.With(s.adminMiddleware).Patch("/settings", s.handleUpdateSettings)

			// User management (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(s.adminMiddleware)
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
				r.Patch("/{id}", s.handleUpdateUser)
				r.Delete("/{id}", s.handleDeleteUser)
			})

			// WebSocket (auth via ticket, validated in handler)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
