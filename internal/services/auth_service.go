package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/flashdeck/internal/auth"
	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

// Login is an authenticated visit, identified by an opaque token.
type Login struct {
	Token     string       `json:"token"`
	Scope     models.Scope `json:"scope"`
	CreatedAt time.Time    `json:"created_at"`

	lastSeen time.Time
}

// ExpiryHook is called once for every login that expires.
type ExpiryHook func(ctx context.Context, l *Login)

// AuthService handles accounts and login tokens
type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*Login, error)
	Guest(ctx context.Context) (*Login, error)
	Logout(ctx context.Context, token string) (*Login, bool)
	Resolve(ctx context.Context, token string) (*Login, error)
}

type authService struct {
	users      repository.UserRepository
	store      repository.CollectionStore
	bcryptCost int

	ttl      time.Duration
	now      func() time.Time
	onExpire ExpiryHook

	mu     sync.Mutex
	logins map[string]*Login
}

// AuthOption configures an AuthService.
type AuthOption func(*authService)

// WithLoginTTL expires logins that have not been used for ttl. Zero keeps
// them until logout.
func WithLoginTTL(ttl time.Duration) AuthOption {
	return func(s *authService) { s.ttl = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AuthOption {
	return func(s *authService) { s.now = now }
}

// WithExpiryHook sets the function told about expired logins.
func WithExpiryHook(fn ExpiryHook) AuthOption {
	return func(s *authService) { s.onExpire = fn }
}

// NewAuthService creates a new AuthService. store receives an empty
// collection for every new account and may be nil.
func NewAuthService(users repository.UserRepository, store repository.CollectionStore, bcryptCost int, opts ...AuthOption) AuthService {
	s := &authService{
		users:      users,
		store:      store,
		bcryptCost: bcryptCost,
		now:        time.Now,
		logins:     make(map[string]*Login),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *authService) Register(ctx context.Context, username, password string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("auth")
	username = strings.TrimSpace(username)
	log.Debug("registering user: %s", username)

	if username == "" {
		return nil, errors.NewValidationError("username", "cannot be empty")
	}
	if !auth.ValidUsername(username) {
		return nil, errors.NewValidationError("username", "may only contain letters, digits, '_' and '-'")
	}
	if password == "" {
		return nil, errors.NewValidationError("password", "cannot be empty")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		log.Error("failed to hash password: %v", err)
		return nil, errors.NewInternalError(err)
	}

	user := models.User{Username: username, PasswordHash: hash, CreatedAt: time.Now()}
	id, err := s.users.Insert(ctx, user)
	if errors.Is(err, errors.ErrAlreadyExists) {
		return nil, errors.NewConflictError("username already taken: " + username)
	}
	if err != nil {
		log.Error("failed to insert user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	user.ID = id

	s.initCollection(ctx, auth.UserScope(username))
	log.Info("registered user %s", username)
	return &user, nil
}

// initCollection writes an empty collection for a new account unless a
// record already exists. Failures only cost the placeholder record.
func (s *authService) initCollection(ctx context.Context, scope models.Scope) {
	if s.store == nil {
		return
	}
	log := logger.FromContext(ctx).WithPrefix("auth")

	_, ok, err := s.store.Read(ctx, scope.Key)
	if err != nil {
		log.Warn("could not check collection for %s: %v", scope.Key, err)
		return
	}
	if ok {
		return
	}
	if err := s.store.Write(ctx, scope.Key, []byte("{}")); err != nil {
		log.Warn("could not create collection for %s: %v", scope.Key, err)
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*Login, error) {
	log := logger.FromContext(ctx).WithPrefix("auth")
	username = strings.TrimSpace(username)
	log.Debug("login attempt: %s", username)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		log.Error("failed to load user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.FromDomain(errors.ErrInvalidCredentials)
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if !errors.Is(err, errors.ErrInvalidCredentials) {
			log.Error("failed to check password: %v", err)
		}
		return nil, errors.FromDomain(err)
	}

	return s.issue(ctx, auth.UserScope(user.Username)), nil
}

func (s *authService) Guest(ctx context.Context) (*Login, error) {
	logger.FromContext(ctx).WithPrefix("auth").Debug("starting guest visit")
	return s.issue(ctx, models.GuestScopeFor(uuid.NewString())), nil
}

// issue stores a new login and drops the ones that have expired, so
// abandoned visits do not pile up.
func (s *authService) issue(ctx context.Context, scope models.Scope) *Login {
	now := s.now()
	l := &Login{Token: uuid.NewString(), Scope: scope, CreatedAt: now, lastSeen: now}

	s.mu.Lock()
	expired := s.sweepLocked(now)
	s.logins[l.Token] = l
	s.mu.Unlock()

	s.expire(ctx, expired)
	return l
}

func (s *authService) expired(l *Login, now time.Time) bool {
	return s.ttl > 0 && now.Sub(l.lastSeen) >= s.ttl
}

func (s *authService) sweepLocked(now time.Time) []*Login {
	if s.ttl <= 0 {
		return nil
	}
	var out []*Login
	for token, l := range s.logins {
		if s.expired(l, now) {
			delete(s.logins, token)
			out = append(out, l)
		}
	}
	return out
}

func (s *authService) expire(ctx context.Context, logins []*Login) {
	if len(logins) == 0 {
		return
	}
	logger.FromContext(ctx).WithPrefix("auth").Debug("expired %d logins", len(logins))
	if s.onExpire == nil {
		return
	}
	for _, l := range logins {
		s.onExpire(ctx, l)
	}
}

// Logout forgets token and returns the login it belonged to.
func (s *authService) Logout(ctx context.Context, token string) (*Login, bool) {
	s.mu.Lock()
	l, ok := s.logins[token]
	delete(s.logins, token)
	s.mu.Unlock()

	if ok {
		logger.FromContext(ctx).WithPrefix("auth").Debug("logged out scope=%s", l.Scope.Key)
	}
	return l, ok
}

func (s *authService) Resolve(ctx context.Context, token string) (*Login, error) {
	if token == "" {
		return nil, errors.NewUnauthorizedError("login required")
	}
	now := s.now()
	s.mu.Lock()
	l, ok := s.logins[token]
	stale := ok && s.expired(l, now)
	switch {
	case stale:
		delete(s.logins, token)
	case ok:
		l.lastSeen = now
	}
	s.mu.Unlock()

	if stale {
		s.expire(ctx, []*Login{l})
		return nil, errors.NewUnauthorizedError("login expired")
	}
	if !ok {
		logger.FromContext(ctx).WithPrefix("auth").Debug("unknown token")
		return nil, errors.NewUnauthorizedError("login required")
	}
	return l, nil
}

// ReleaseLogin drops what is kept in memory for a finished login: its quiz
// sessions and, for a guest, its decks. It returns the number of sessions
// discarded.
func ReleaseLogin(decks DeckService, quizzes QuizService, l *Login) int {
	n := quizzes.DiscardScope(l.Scope)
	if l.Scope.IsGuest() {
		decks.Forget(l.Scope)
	}
	return n
}

// ReleaseOnExpiry returns an ExpiryHook that calls ReleaseLogin.
func ReleaseOnExpiry(decks DeckService, quizzes QuizService) ExpiryHook {
	return func(ctx context.Context, l *Login) {
		n := ReleaseLogin(decks, quizzes, l)
		logger.FromContext(ctx).WithPrefix("auth").Debug("login expired: scope=%s discarded_sessions=%d", l.Scope.Key, n)
	}
}
