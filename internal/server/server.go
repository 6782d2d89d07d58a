// Package server wires the tracker's services into the HTTP API consumed
// by the browser client.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/glucoguide/insulin-tracker/internal/chat"
	"github.com/glucoguide/insulin-tracker/internal/domain"
	"github.com/glucoguide/insulin-tracker/internal/services"
	"github.com/glucoguide/insulin-tracker/internal/storage"
)

// Server bundles the dependencies the handlers need.
type Server struct {
	auth       domain.AuthService
	patients   domain.PatientService
	injections domain.InjectionService
	analytics  *services.AnalyticsService
	chat       *chat.Manager
	store      storage.Store // durable store, for settings
}

func New(
	auth domain.AuthService,
	patients domain.PatientService,
	injections domain.InjectionService,
	analytics *services.AnalyticsService,
	chatManager *chat.Manager,
	store storage.Store,
) *Server {
	return &Server{
		auth:       auth,
		patients:   patients,
		injections: injections,
		analytics:  analytics,
		chat:       chatManager,
		store:      store,
	}
}

// Router builds the chi router with the full API surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	// The chat stream can legitimately run long; everything else is quick.
	r.Use(chiMiddleware.Timeout(5 * time.Minute))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Post("/auth/register", s.handleRegister)
		v1.Post("/auth/login", s.handleLogin)

		v1.Group(func(authed chi.Router) {
			authed.Use(s.requireSession)

			authed.Post("/auth/logout", s.handleLogout)
			authed.Get("/auth/me", s.handleMe)

			authed.Get("/patients", s.handleListPatients)
			authed.Post("/patients", s.handleAddPatient)
			authed.Post("/patients/select", s.handleSelectPatient)
			authed.Post("/patients/home", s.handleGoHome)
			authed.Get("/patients/search", s.handleSearchPatients)

			authed.Get("/injections", s.handleListInjections)
			authed.Post("/injections", s.handleSaveInjection)
			authed.Delete("/injections/{id}", s.handleDeleteInjection)

			authed.Get("/dose", s.handleScheduledDose)
			authed.Get("/dose/status", s.handleDoseStatus)

			authed.Get("/analytics", s.handleAnalytics)

			authed.Post("/chat", s.handleChat)

			authed.Get("/settings/language", s.handleGetLanguage)
			authed.Put("/settings/language", s.handleSetLanguage)
		})
	})

	return r
}
