package api

import (
	"net/http"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/services"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	user, err := s.AuthService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	login, err := s.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.setTokenCookie(w, login.Token)
	writeJSON(w, http.StatusOK, login)
}

func (s *Server) handleGuest(w http.ResponseWriter, r *http.Request) {
	login, err := s.AuthService.Guest(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.setTokenCookie(w, login.Token)
	writeJSON(w, http.StatusOK, login)
}

// handleLogout ends the login and drops what the server keeps in memory for
// it: guest decks and open quiz sessions.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if login, ok := s.AuthService.Logout(r.Context(), tokenFromRequest(r)); ok {
		n := services.ReleaseLogin(s.DeckService, s.QuizService, login)
		log.Debug("logout: scope=%s discarded_sessions=%d", login.Scope.Key, n)
	}
	clearTokenCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scopeOf(r))
}
