package repository

import (
	"context"

	"github.com/vytor/flashdeck/internal/models"
)

// CollectionStore persists one serialized deck collection per scope key.
// Read reports ok=false when no record exists, which is distinct from a
// record holding an empty collection.
type CollectionStore interface {
	Read(ctx context.Context, scopeKey string) (data []byte, ok bool, err error)
	Write(ctx context.Context, scopeKey string, data []byte) error
}

// UserRepository handles account data access
type UserRepository interface {
	// GetByUsername returns nil, nil when the user does not exist.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Insert fails with errors.ErrAlreadyExists when the username is taken.
	Insert(ctx context.Context, user models.User) (int64, error)
}
