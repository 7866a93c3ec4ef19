package worker

import (
	"context"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/services"
)

// FlushJob retries persisting one scope's collection.
type FlushJob struct {
	Decks services.DeckService
	Scope models.Scope
}

func (j FlushJob) Name() string { return "flush:" + j.Scope.Key }

func (j FlushJob) Run(ctx context.Context) error {
	return j.Decks.Flush(ctx, j.Scope)
}

// FlushPending flushes every scope with unsaved changes using up to workers
// goroutines. It returns how many scopes could not be saved.
func FlushPending(ctx context.Context, decks services.DeckService, workers int) int {
	pending := decks.Pending()
	if len(pending) == 0 {
		return 0
	}
	logger.FromContext(ctx).WithPrefix("flush").Info("flushing %d unsaved collections", len(pending))

	pool := NewPool(workers, len(pending))
	pool.Start(ctx)
	for _, scope := range pending {
		pool.Submit(FlushJob{Decks: decks, Scope: scope})
	}
	return pool.Stop()
}
