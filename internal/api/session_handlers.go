package api

import (
	"context"
	"net/http"

	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/services"
)

type startSessionRequest struct {
	Deck string `json:"deck" validate:"required"`
	Mode string `json:"mode" validate:"required,oneof=reveal typed"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	v, err := s.QuizService.Start(r.Context(), scopeOf(r), req.Deck, req.Mode)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.QuizService.Get)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	v, err := s.QuizService.Submit(r.Context(), scopeOf(r), pathParam(r, "id"), req.Answer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.QuizService.Reveal)
}

func (s *Server) handleMarkKnown(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.QuizService.MarkKnown)
}

func (s *Server) handleMarkUnknown(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.QuizService.MarkUnknown)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.QuizService.Restart)
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	if err := s.QuizService.Discard(r.Context(), scopeOf(r), pathParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionOp = func(ctx context.Context, scope models.Scope, id string) (*services.SessionView, error)

func (s *Server) sessionAction(w http.ResponseWriter, r *http.Request, op sessionOp) {
	v, err := op(r.Context(), scopeOf(r), pathParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
