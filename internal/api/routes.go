package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	if s.RequestTimeout > 0 {
		r.Use(timeoutMiddleware(s.RequestTimeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/guest", s.handleGuest)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.scopeMiddleware)

			r.Get("/auth/me", s.handleMe)

			r.Get("/decks", s.handleListDecks)
			r.Post("/decks/flush", s.handleFlushDecks)
			r.Get("/decks/{name}", s.handleGetDeck)
			r.Put("/decks/{name}", s.handleSaveDeck)
			r.Post("/decks/{name}/import", s.handleImportDeck)
			r.Delete("/decks/{name}", s.handleDeleteDeck)

			r.Post("/sessions", s.handleStartSession)
			r.Get("/sessions/{id}", s.handleGetSession)
			r.Post("/sessions/{id}/answer", s.handleSubmitAnswer)
			r.Post("/sessions/{id}/reveal", s.handleReveal)
			r.Post("/sessions/{id}/known", s.handleMarkKnown)
			r.Post("/sessions/{id}/unknown", s.handleMarkUnknown)
			r.Post("/sessions/{id}/restart", s.handleRestart)
			r.Delete("/sessions/{id}", s.handleDiscardSession)
		})
	})
	return r
}
