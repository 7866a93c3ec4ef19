package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/repository"
)

const ext = ".json"

type collectionStore struct {
	dir string
}

// NewCollectionStore keeps one JSON file per scope under dir, creating dir
// if needed.
func NewCollectionStore(dir string) (repository.CollectionStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &collectionStore{dir: dir}, nil
}

// Path returns the file that holds the collection for scopeKey.
func Path(dir, scopeKey string) (string, error) {
	if scopeKey == "" || scopeKey == "." || scopeKey == ".." || strings.ContainsAny(scopeKey, `/\`) {
		return "", fmt.Errorf("invalid scope key %q", scopeKey)
	}
	return filepath.Join(dir, scopeKey+ext), nil
}

func (s *collectionStore) Read(ctx context.Context, scopeKey string) ([]byte, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("file_store")

	path, err := Path(s.dir, scopeKey)
	if err != nil {
		return nil, false, err
	}
	log.Debug("reading %s", path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		log.Error("failed to read %s: %v", path, err)
		return nil, false, err
	}
	return data, true, nil
}

// Write replaces the file through a temporary sibling and a rename, so a
// failed write never leaves a truncated record behind.
func (s *collectionStore) Write(ctx context.Context, scopeKey string, data []byte) error {
	log := logger.FromContext(ctx).WithPrefix("file_store")

	path, err := Path(s.dir, scopeKey)
	if err != nil {
		return err
	}
	log.Debug("writing %s (%d bytes)", path, len(data))

	tmp, err := os.CreateTemp(s.dir, "."+scopeKey+"-*.tmp")
	if err != nil {
		log.Error("failed to create temp file: %v", err)
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		log.Error("failed to write %s: %v", tmpName, err)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		log.Error("failed to replace %s: %v", path, err)
		return err
	}
	return nil
}
