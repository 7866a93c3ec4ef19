package deck

import (
	"context"
	"fmt"
	"strings"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

// Repository owns the ordered deck collection of one scope. Persistent
// scopes write the whole collection through the store after every
// mutation; guest scopes never touch the store.
//
// A Repository is not safe for concurrent use.
type Repository struct {
	scope   models.Scope
	store   repository.CollectionStore
	names   []string
	decks   map[string]*Deck
	unsaved bool
}

type loadOptions struct {
	strict   bool
	defaults []*Deck
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithStrict makes Load fail with errors.ErrStorageCorrupt on malformed
// data instead of starting from an empty collection.
func WithStrict() LoadOption {
	return func(o *loadOptions) { o.strict = true }
}

// WithDefaults merges built-in decks into the loaded collection. Decks
// already present under the same name win.
func WithDefaults(decks ...*Deck) LoadOption {
	return func(o *loadOptions) { o.defaults = append(o.defaults, decks...) }
}

// Load builds the Repository for scope. A missing record is an empty
// collection, never an error.
func Load(ctx context.Context, store repository.CollectionStore, scope models.Scope, opts ...LoadOption) (*Repository, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo").WithField("scope", scope.Key)

	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := &Repository{
		scope: scope,
		store: store,
		decks: make(map[string]*Deck),
	}

	if scope.Persistent {
		if store == nil {
			return nil, fmt.Errorf("load scope %q: no collection store configured", scope.Key)
		}
		data, ok, err := store.Read(ctx, scope.Key)
		if err != nil {
			log.Error("failed to read collection: %v", err)
			return nil, fmt.Errorf("load scope %q: %w", scope.Key, err)
		}
		if ok {
			decks, dropped, err := Decode(data)
			switch {
			case err != nil && o.strict:
				log.Error("stored collection is corrupt: %v", err)
				return nil, fmt.Errorf("load scope %q: %w", scope.Key, err)
			case err != nil:
				log.Warn("stored collection is corrupt, starting empty: %v", err)
			default:
				for _, d := range decks {
					r.put(d)
				}
				if len(dropped) > 0 {
					log.Warn("dropped %d stored decks without valid cards: %v", len(dropped), dropped)
				}
			}
		} else {
			log.Debug("no stored collection")
		}
	}

	for _, d := range o.defaults {
		if _, exists := r.decks[d.name]; !exists {
			r.put(d)
		}
	}

	log.Debug("loaded %d decks", len(r.names))
	return r, nil
}

func (r *Repository) put(d *Deck) {
	if _, exists := r.decks[d.name]; !exists {
		r.names = append(r.names, d.name)
	}
	r.decks[d.name] = d
}

func (r *Repository) Scope() models.Scope { return r.scope }

// Names returns the deck names in insertion order.
func (r *Repository) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Decks returns the decks in insertion order.
func (r *Repository) Decks() []*Deck {
	out := make([]*Deck, len(r.names))
	for i, n := range r.names {
		out[i] = r.decks[n]
	}
	return out
}

func (r *Repository) Len() int { return len(r.names) }

// Get looks a deck up by name. Surrounding whitespace is ignored, as it is
// when the deck is stored.
func (r *Repository) Get(name string) (*Deck, bool) {
	d, ok := r.decks[strings.TrimSpace(name)]
	return d, ok
}

// Unsaved reports whether the last write to the store failed, leaving the
// in-memory collection ahead of the persisted one.
func (r *Repository) Unsaved() bool { return r.unsaved }

// CreateOrReplace parses rawText and stores the result under name. An
// existing deck keeps its position in the list.
//
// When the store write fails the deck is still kept in memory and returned
// together with an error wrapping errors.ErrStorageIO; Flush retries.
func (r *Repository) CreateOrReplace(ctx context.Context, name, rawText string) (*Deck, error) {
	d, err := FromText(name, rawText)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("deck_repo").Debug("rejected deck %q: %v", name, err)
		return nil, err
	}
	return r.save(ctx, d)
}

// Import stores pre-split cards under name, with the same validation and
// persistence as CreateOrReplace.
func (r *Repository) Import(ctx context.Context, name string, cards []Card) (*Deck, error) {
	d, err := New(name, cards)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("deck_repo").Debug("rejected import %q: %v", name, err)
		return nil, err
	}
	return r.save(ctx, d)
}

func (r *Repository) save(ctx context.Context, d *Deck) (*Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo").WithField("scope", r.scope.Key)

	names := r.names
	if _, exists := r.decks[d.name]; !exists {
		names = append(append(make([]string, 0, len(r.names)+1), r.names...), d.name)
	}
	decks := make(map[string]*Deck, len(r.decks)+1)
	for k, v := range r.decks {
		decks[k] = v
	}
	decks[d.name] = d

	if err := r.commit(ctx, names, decks); err != nil {
		return d, err
	}
	log.Debug("saved deck %q with %d cards", d.name, d.Len())
	return d, nil
}

// Delete removes the named deck. Deleting a missing deck is not an error and
// writes nothing.
func (r *Repository) Delete(ctx context.Context, name string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo").WithField("scope", r.scope.Key)
	name = strings.TrimSpace(name)

	if _, exists := r.decks[name]; !exists {
		log.Debug("delete of unknown deck %q ignored", name)
		return false, nil
	}

	names := make([]string, 0, len(r.names)-1)
	for _, n := range r.names {
		if n != name {
			names = append(names, n)
		}
	}
	decks := make(map[string]*Deck, len(r.decks))
	for k, v := range r.decks {
		if k != name {
			decks[k] = v
		}
	}

	if err := r.commit(ctx, names, decks); err != nil {
		return true, err
	}
	log.Debug("deleted deck %q", name)
	return true, nil
}

// Flush writes the current collection again. It is a no-op for guest scopes.
func (r *Repository) Flush(ctx context.Context) error {
	if !r.scope.Persistent {
		return nil
	}
	data, err := Encode(r.Decks())
	if err != nil {
		return err
	}
	return r.write(ctx, data)
}

// commit encodes the next state, swaps it in and writes it for persistent
// scopes. Only an encoding failure leaves the current state untouched.
func (r *Repository) commit(ctx context.Context, names []string, decks map[string]*Deck) error {
	var data []byte
	if r.scope.Persistent {
		next := make([]*Deck, len(names))
		for i, n := range names {
			next[i] = decks[n]
		}
		var err error
		if data, err = Encode(next); err != nil {
			return err
		}
	}

	r.names = names
	r.decks = decks

	if !r.scope.Persistent {
		return nil
	}
	return r.write(ctx, data)
}

func (r *Repository) write(ctx context.Context, data []byte) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo").WithField("scope", r.scope.Key)

	if err := r.store.Write(ctx, r.scope.Key, data); err != nil {
		r.unsaved = true
		log.Error("failed to persist collection: %v", err)
		if errors.Is(err, errors.ErrStorageIO) {
			return err
		}
		return fmt.Errorf("%w: %w", errors.ErrStorageIO, err)
	}
	r.unsaved = false
	return nil
}
