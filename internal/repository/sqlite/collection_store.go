package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type collectionStore struct {
	db *sql.DB
}

// NewCollectionStore creates a CollectionStore backed by the collections table.
func NewCollectionStore(db *sql.DB) repository.CollectionStore {
	return &collectionStore{db: db}
}

func (s *collectionStore) Read(ctx context.Context, scopeKey string) ([]byte, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("collection_repo")
	log.Debug("reading collection: scope=%s", scopeKey)

	query, args, err := sqlBuilder.Select("data").
		From("collections").
		Where(squirrel.Eq{"scope_key": scopeKey}).
		ToSql()
	if err != nil {
		return nil, false, err
	}

	var data []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no collection stored for scope=%s", scopeKey)
		return nil, false, nil
	}
	if err != nil {
		log.Error("failed to read collection: %v", err)
		return nil, false, err
	}
	return data, true, nil
}

// Write replaces the scope's record in a single statement.
func (s *collectionStore) Write(ctx context.Context, scopeKey string, data []byte) error {
	log := logger.FromContext(ctx).WithPrefix("collection_repo")
	log.Debug("writing collection: scope=%s bytes=%d", scopeKey, len(data))

	query, args, err := sqlBuilder.Insert("collections").
		Columns("scope_key", "data").
		Values(scopeKey, data).
		Suffix("ON CONFLICT(scope_key) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP").
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to write collection: %v", err)
		return err
	}
	return nil
}
