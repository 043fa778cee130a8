package store

import (
	"context"

	"github.com/rxtech-lab/argo-threshold/internal/types"
)

// DefaultListLimit is the number of runs returned by ListRecent when no limit is given.
const DefaultListLimit = 50

// ResultStore persists backtest results.
type ResultStore interface {
	// Save stores a complete result. Saving an existing ID fails.
	Save(ctx context.Context, result types.BacktestResult) error
	// ListRecent returns up to limit results, newest first. A limit <= 0 means DefaultListLimit.
	ListRecent(ctx context.Context, limit int) ([]types.BacktestResult, error)
	// Get returns the result with the given ID.
	Get(ctx context.Context, id string) (types.BacktestResult, error)
	// Close releases the underlying database.
	Close() error
}
