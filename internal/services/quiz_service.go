package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/quiz"
)

// SessionView is the client-facing snapshot of a quiz session.
type SessionView struct {
	ID         string       `json:"id"`
	Deck       string       `json:"deck"`
	Mode       string       `json:"mode"`
	State      string       `json:"state"`
	Question   string       `json:"question,omitempty"`
	Answer     string       `json:"answer,omitempty"`
	Completed  int          `json:"completed"`
	Total      int          `json:"total"`
	Score      int          `json:"score"`
	LastResult *quiz.Result `json:"last_result,omitempty"`
}

// QuizService runs quiz sessions on behalf of a scope
type QuizService interface {
	Start(ctx context.Context, scope models.Scope, deckName, mode string) (*SessionView, error)
	Get(ctx context.Context, scope models.Scope, id string) (*SessionView, error)
	Submit(ctx context.Context, scope models.Scope, id, answer string) (*SessionView, error)
	Reveal(ctx context.Context, scope models.Scope, id string) (*SessionView, error)
	MarkKnown(ctx context.Context, scope models.Scope, id string) (*SessionView, error)
	MarkUnknown(ctx context.Context, scope models.Scope, id string) (*SessionView, error)
	Restart(ctx context.Context, scope models.Scope, id string) (*SessionView, error)
	Discard(ctx context.Context, scope models.Scope, id string) error
	DiscardScope(scope models.Scope) int
}

type sessionEntry struct {
	mu      sync.Mutex
	owner   string
	session *quiz.Session
	last    *quiz.Result
}

type quizService struct {
	decks DeckService

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewQuizService creates a new QuizService. Sessions copy their deck at
// start, so later edits through decks do not affect them.
func NewQuizService(decks DeckService) QuizService {
	return &quizService{
		decks:    decks,
		sessions: make(map[string]*sessionEntry),
	}
}

func (s *quizService) Start(ctx context.Context, scope models.Scope, deckName, mode string) (*SessionView, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_service")
	log.Debug("starting session: scope=%s deck=%q mode=%s", scope.Key, deckName, mode)

	m, err := quiz.ParseMode(mode)
	if err != nil {
		return nil, errors.NewValidationError("mode", "must be reveal or typed")
	}
	d, err := s.decks.Get(ctx, scope, deckName)
	if err != nil {
		return nil, err
	}
	sess, err := quiz.Start(d, m)
	if err != nil {
		log.Error("failed to start session: %v", err)
		return nil, errors.FromDomain(err)
	}

	id := uuid.NewString()
	entry := &sessionEntry{owner: scope.Key, session: sess}
	s.mu.Lock()
	s.sessions[id] = entry
	s.mu.Unlock()

	log.Info("session %s started on %q (%d cards)", id, d.Name(), sess.Total())
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return view(id, entry), nil
}

// lookup returns the entry only to the scope that owns it.
func (s *quizService) lookup(scope models.Scope, id string) (*sessionEntry, error) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok || entry.owner != scope.Key {
		return nil, errors.NewNotFoundError("session", id)
	}
	return entry, nil
}

// act runs fn on the session under its lock and returns the resulting view.
func (s *quizService) act(ctx context.Context, scope models.Scope, id, op string, fn func(*sessionEntry) error) (*SessionView, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_service")
	log.Debug("%s: session=%s", op, id)

	entry, err := s.lookup(scope, id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := fn(entry); err != nil {
		log.Debug("%s rejected: %v", op, err)
		return nil, errors.FromDomain(err)
	}
	return view(id, entry), nil
}

func (s *quizService) Get(ctx context.Context, scope models.Scope, id string) (*SessionView, error) {
	return s.act(ctx, scope, id, "get", func(*sessionEntry) error { return nil })
}

func (s *quizService) Submit(ctx context.Context, scope models.Scope, id, answer string) (*SessionView, error) {
	return s.act(ctx, scope, id, "submit", func(e *sessionEntry) error {
		res, err := e.session.SubmitAnswer(answer)
		if err != nil {
			return err
		}
		e.last = &res
		return nil
	})
}

func (s *quizService) Reveal(ctx context.Context, scope models.Scope, id string) (*SessionView, error) {
	return s.act(ctx, scope, id, "reveal", func(e *sessionEntry) error {
		return e.session.Reveal()
	})
}

func (s *quizService) MarkKnown(ctx context.Context, scope models.Scope, id string) (*SessionView, error) {
	return s.act(ctx, scope, id, "mark known", func(e *sessionEntry) error {
		e.last = nil
		return e.session.MarkKnown()
	})
}

func (s *quizService) MarkUnknown(ctx context.Context, scope models.Scope, id string) (*SessionView, error) {
	return s.act(ctx, scope, id, "mark unknown", func(e *sessionEntry) error {
		e.last = nil
		return e.session.MarkUnknown()
	})
}

func (s *quizService) Restart(ctx context.Context, scope models.Scope, id string) (*SessionView, error) {
	return s.act(ctx, scope, id, "restart", func(e *sessionEntry) error {
		e.session.Restart()
		e.last = nil
		return nil
	})
}

func (s *quizService) Discard(ctx context.Context, scope models.Scope, id string) error {
	logger.FromContext(ctx).WithPrefix("quiz_service").Debug("discarding session %s", id)

	if _, err := s.lookup(scope, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// DiscardScope drops every session owned by scope and returns how many
// there were.
func (s *quizService) DiscardScope(scope models.Scope) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.sessions {
		if e.owner == scope.Key {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// view must be called with e.mu held. It draws the next card when none is
// shown.
func view(id string, e *sessionEntry) *SessionView {
	sess := e.session
	completed, total := sess.Progress()
	v := &SessionView{
		ID:         id,
		Deck:       sess.DeckName(),
		Mode:       sess.Mode().String(),
		Completed:  completed,
		Total:      total,
		Score:      sess.Score(),
		LastResult: e.last,
	}
	if q, ok := sess.Question(); ok {
		v.Question = q
	}
	if a, err := sess.Answer(); err == nil {
		v.Answer = a
	}
	v.State = sess.State().String()
	return v
}
