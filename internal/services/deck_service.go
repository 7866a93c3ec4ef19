package services

import (
	"context"
	"sync"

	"github.com/vytor/flashdeck/internal/deck"
	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

// DeckSummary is one entry of a deck listing.
type DeckSummary struct {
	Name  string `json:"name"`
	Cards int    `json:"cards"`
}

// DeckService handles deck management for a scope
type DeckService interface {
	List(ctx context.Context, scope models.Scope) ([]DeckSummary, bool, error)
	Get(ctx context.Context, scope models.Scope, name string) (*deck.Deck, error)
	Save(ctx context.Context, scope models.Scope, name, text string) (*deck.Deck, error)
	Import(ctx context.Context, scope models.Scope, name string, cards []deck.Card) (*deck.Deck, error)
	Delete(ctx context.Context, scope models.Scope, name string) (bool, error)
	Flush(ctx context.Context, scope models.Scope) error
	Pending() []models.Scope
	Forget(scope models.Scope)
}

// DeckServiceOptions configures how collections are loaded.
type DeckServiceOptions struct {
	// Strict fails loads of corrupt collections instead of starting empty.
	Strict bool
	// GuestStarterDecks seeds guest scopes with the built-in decks.
	GuestStarterDecks bool
}

// scopeEntry serializes access to one scope's repository.
type scopeEntry struct {
	mu    sync.Mutex
	scope models.Scope
	repo  *deck.Repository
}

type deckService struct {
	store repository.CollectionStore
	opts  DeckServiceOptions

	mu     sync.Mutex
	scopes map[string]*scopeEntry
}

// NewDeckService creates a new DeckService
func NewDeckService(store repository.CollectionStore, opts DeckServiceOptions) DeckService {
	return &deckService{
		store:  store,
		opts:   opts,
		scopes: make(map[string]*scopeEntry),
	}
}

// with runs fn while holding the scope's lock, loading its repository on
// first use.
func (s *deckService) with(ctx context.Context, scope models.Scope, fn func(*deck.Repository) error) error {
	s.mu.Lock()
	entry, ok := s.scopes[scope.Key]
	if !ok {
		entry = &scopeEntry{scope: scope}
		s.scopes[scope.Key] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.repo == nil {
		repo, err := deck.Load(ctx, s.store, scope, s.loadOptions(scope)...)
		if err != nil {
			logger.FromContext(ctx).WithPrefix("deck_service").Error("failed to load scope %s: %v", scope.Key, err)
			return err
		}
		entry.repo = repo
	}
	return fn(entry.repo)
}

func (s *deckService) loadOptions(scope models.Scope) []deck.LoadOption {
	var opts []deck.LoadOption
	if s.opts.Strict {
		opts = append(opts, deck.WithStrict())
	}
	if scope.IsGuest() && s.opts.GuestStarterDecks {
		opts = append(opts, deck.WithDefaults(deck.StarterDecks()...))
	}
	return opts
}

// List returns the scope's decks in order and whether some change has not
// been saved yet.
func (s *deckService) List(ctx context.Context, scope models.Scope) ([]DeckSummary, bool, error) {
	logger.FromContext(ctx).WithPrefix("deck_service").Debug("listing decks: scope=%s", scope.Key)

	var (
		out     []DeckSummary
		unsaved bool
	)
	err := s.with(ctx, scope, func(r *deck.Repository) error {
		out = make([]DeckSummary, 0, r.Len())
		for _, d := range r.Decks() {
			out = append(out, DeckSummary{Name: d.Name(), Cards: d.Len()})
		}
		unsaved = r.Unsaved()
		return nil
	})
	if err != nil {
		return nil, false, errors.FromDomain(err)
	}
	return out, unsaved, nil
}

func (s *deckService) Get(ctx context.Context, scope models.Scope, name string) (*deck.Deck, error) {
	logger.FromContext(ctx).WithPrefix("deck_service").Debug("getting deck: scope=%s name=%q", scope.Key, name)

	var d *deck.Deck
	err := s.with(ctx, scope, func(r *deck.Repository) error {
		var ok bool
		if d, ok = r.Get(name); !ok {
			return errors.NewNotFoundError("deck", name)
		}
		return nil
	})
	if err != nil {
		return nil, errors.FromDomain(err)
	}
	return d, nil
}

// Save creates or replaces a deck from text. A storage failure returns the
// deck together with a NOT_SAVED error; the edit is kept in memory.
func (s *deckService) Save(ctx context.Context, scope models.Scope, name, text string) (*deck.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_service")
	log.Debug("saving deck: scope=%s name=%q", scope.Key, name)

	var d *deck.Deck
	err := s.with(ctx, scope, func(r *deck.Repository) error {
		var err error
		d, err = r.CreateOrReplace(ctx, name, text)
		return err
	})
	if err != nil {
		log.Debug("save of %q failed: %v", name, err)
		return d, errors.FromDomain(err)
	}
	return d, nil
}

func (s *deckService) Import(ctx context.Context, scope models.Scope, name string, cards []deck.Card) (*deck.Deck, error) {
	logger.FromContext(ctx).WithPrefix("deck_service").Debug("importing deck: scope=%s name=%q cards=%d", scope.Key, name, len(cards))

	var d *deck.Deck
	err := s.with(ctx, scope, func(r *deck.Repository) error {
		var err error
		d, err = r.Import(ctx, name, cards)
		return err
	})
	if err != nil {
		return d, errors.FromDomain(err)
	}
	return d, nil
}

// Delete removes a deck and reports whether it existed. A missing deck is
// not an error. A storage failure returns true with a NOT_SAVED error; the
// deck is already gone from memory.
func (s *deckService) Delete(ctx context.Context, scope models.Scope, name string) (bool, error) {
	logger.FromContext(ctx).WithPrefix("deck_service").Debug("deleting deck: scope=%s name=%q", scope.Key, name)

	var existed bool
	err := s.with(ctx, scope, func(r *deck.Repository) error {
		var err error
		existed, err = r.Delete(ctx, name)
		return err
	})
	if err != nil {
		return existed, errors.FromDomain(err)
	}
	return existed, nil
}

// Flush retries persisting the scope's collection.
func (s *deckService) Flush(ctx context.Context, scope models.Scope) error {
	logger.FromContext(ctx).WithPrefix("deck_service").Debug("flushing scope=%s", scope.Key)

	err := s.with(ctx, scope, func(r *deck.Repository) error {
		return r.Flush(ctx)
	})
	if err != nil {
		return errors.FromDomain(err)
	}
	return nil
}

// Pending lists the loaded scopes whose collection has unsaved changes.
func (s *deckService) Pending() []models.Scope {
	s.mu.Lock()
	entries := make([]*scopeEntry, 0, len(s.scopes))
	for _, e := range s.scopes {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	var out []models.Scope
	for _, e := range entries {
		e.mu.Lock()
		if e.repo != nil && e.repo.Unsaved() {
			out = append(out, e.scope)
		}
		e.mu.Unlock()
	}
	return out
}

// Forget drops the cached repository for scope. Guest decks are gone
// afterwards; user decks are reloaded from the store on next use.
func (s *deckService) Forget(scope models.Scope) {
	s.mu.Lock()
	delete(s.scopes, scope.Key)
	s.mu.Unlock()
}
