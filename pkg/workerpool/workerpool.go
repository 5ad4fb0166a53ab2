// Package workerpool provides bounded-parallelism fan-out: a per-request
// deadline propagates to every worker, and a worker's failure never
// blocks its siblings. No command in cmd/reconkg calls it; the execute
// command runs a ruleset's rules one at a time.
package workerpool

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config bounds how many work items run concurrently.
type Config struct {
	MaxConcurrent int
}

// DefaultConfig returns the default per-request parallelism.
func DefaultConfig() Config {
	return Config{MaxConcurrent: 4}
}

// Pool runs work items with bounded parallelism and reassembles results
// in input order, regardless of completion order.
type Pool struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a worker pool. A nil or zero-value logger falls back to
// zap's no-op logger so callers aren't forced to thread one through in
// tests.
func New(cfg Config, logger *zap.Logger) *Pool {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{cfg: cfg, logger: logger.Named("workerpool")}
}

// Item is one unit of work; Run returns the value to store at the
// item's input position.
type Item[T any] struct {
	ID  string
	Run func(ctx context.Context) (T, error)
}

// Result pairs an item's id with its outcome. Err is non-nil on failure;
// the pool never aborts the batch because one item failed — partial
// failure is the norm for this kind of fan-out.
type Result[T any] struct {
	ID    string
	Value T
	Err   error
}

// Process executes items with at most cfg.MaxConcurrent running at once,
// honoring ctx cancellation, and returns results in the same order as
// items regardless of completion order.
func Process[T any](ctx context.Context, p *Pool, items []Item[T]) []Result[T] {
	results := make([]Result[T], len(items))
	if len(items) == 0 {
		return results
	}

	sem := make(chan struct{}, p.cfg.MaxConcurrent)
	var g errgroup.Group

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = Result[T]{ID: item.ID, Err: ctx.Err()}
				return nil
			}

			value, err := item.Run(ctx)
			if err != nil {
				p.logger.Warn("work item failed", zap.String("id", item.ID), zap.Error(err))
			}
			results[i] = Result[T]{ID: item.ID, Value: value, Err: err}
			return nil
		})
	}

	_ = g.Wait() // item-level errors are carried in results, never propagated here

	return results
}
