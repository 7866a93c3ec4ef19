package api

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/flashdeck/internal/services"
)

// ReadyFunc reports whether the storage backend can serve requests.
type ReadyFunc func(ctx context.Context) error

type Server struct {
	AuthService services.AuthService
	DeckService services.DeckService
	QuizService services.QuizService

	Ready          ReadyFunc
	RequestTimeout time.Duration
	SecureCookies  bool

	validate *validator.Validate
}

func NewServer(authSvc services.AuthService, deckSvc services.DeckService, quizSvc services.QuizService) *Server {
	return &Server{
		AuthService:    authSvc,
		DeckService:    deckSvc,
		QuizService:    quizSvc,
		RequestTimeout: 30 * time.Second,
		validate:       validator.New(),
	}
}
