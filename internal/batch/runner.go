// Package batch evaluates many Fibonacci indices concurrently.
package batch

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"fibcalc/internal/fib"
	"fibcalc/internal/logging"
	"fibcalc/internal/store"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Cache is the subset of the term store the runner needs.
type Cache interface {
	Get(ctx context.Context, key store.TermKey) (*big.Int, bool, error)
	Put(ctx context.Context, key store.TermKey, value *big.Int) error
	RecordRun(ctx context.Context, r store.Run) error
}

// Result is the outcome for one index.
type Result struct {
	N      int64    `json:"n"`
	Value  *big.Int `json:"value,omitempty"`
	Err    string   `json:"error,omitempty"`
	Cached bool     `json:"cached,omitempty"`
}

// Run is a completed batch.
type Run struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Evaluator  string    `json:"evaluator"`
	Results    []Result  `json:"results"`
	Failed     int       `json:"failed"`
	CacheHits  int       `json:"cache_hits"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Runner evaluates indices with a bounded number of workers.
type Runner struct {
	Evaluator fib.Evaluator
	Workers   int
	Cache     Cache // optional
}

// NewRunner creates a runner. Workers below 1 are treated as 1.
func NewRunner(ev fib.Evaluator, workers int, cache Cache) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{Evaluator: ev, Workers: workers, Cache: cache}
}

func (r *Runner) key(n int64) store.TermKey {
	width := int(r.Evaluator.Width)
	if r.Evaluator.Mode == fib.ModeBig {
		width = 0
	}
	return store.TermKey{Mode: string(r.Evaluator.Mode), Width: width, N: n}
}

// Run evaluates every index. Results keep input order. Evaluation errors are
// recorded per result; only cancellation or a cache failure aborts the run.
// Cancellation is observed between indices; an evaluation already in
// progress runs to completion.
func (r *Runner) Run(ctx context.Context, source string, indices []int64) (*Run, error) {
	if err := r.Evaluator.Validate(); err != nil {
		return nil, err
	}

	run := &Run{
		ID:        uuid.NewString(),
		Source:    source,
		Evaluator: r.Evaluator.String(),
		Results:   make([]Result, len(indices)),
		StartedAt: time.Now(),
	}
	log := logging.Get(logging.CategoryBatch).With("run", run.ID)
	log.Info("Starting run: %d indices from %s (%s, %d workers)", len(indices), source, run.Evaluator, r.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for i, n := range indices {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := r.evalOne(gctx, n)
			if err != nil {
				return err
			}
			run.Results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("Run aborted: %v", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, res := range run.Results {
		if res.Err != "" {
			run.Failed++
		}
		if res.Cached {
			run.CacheHits++
		}
	}
	run.FinishedAt = time.Now()
	log.Info("Run complete: %d failed, %d cached, %s", run.Failed, run.CacheHits, run.FinishedAt.Sub(run.StartedAt))

	if r.Cache != nil {
		if err := r.Cache.RecordRun(ctx, store.Run{
			ID:         run.ID,
			Source:     run.Source,
			Evaluator:  run.Evaluator,
			Count:      len(run.Results),
			Failed:     run.Failed,
			CacheHits:  run.CacheHits,
			StartedAt:  run.StartedAt,
			FinishedAt: run.FinishedAt,
		}); err != nil {
			return run, err
		}
	}
	return run, nil
}

func (r *Runner) evalOne(ctx context.Context, n int64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// MaxIndex is not part of the cache key.
	if err := r.Evaluator.CheckIndex(n); err != nil {
		logging.BatchDebug("fib(%d) rejected: %v", n, err)
		return Result{N: n, Err: err.Error()}, nil
	}

	key := r.key(n)
	if r.Cache != nil {
		v, ok, err := r.Cache.Get(ctx, key)
		if err != nil {
			return Result{}, fmt.Errorf("cache lookup for %d: %w", n, err)
		}
		if ok {
			return Result{N: n, Value: v, Cached: true}, nil
		}
	}

	v, err := r.Evaluator.Eval(n)
	if err != nil {
		logging.BatchDebug("fib(%d) failed: %v", n, err)
		return Result{N: n, Err: err.Error()}, nil
	}

	if r.Cache != nil {
		if err := r.Cache.Put(ctx, key, v); err != nil {
			return Result{}, fmt.Errorf("cache store for %d: %w", n, err)
		}
	}
	return Result{N: n, Value: v}, nil
}
