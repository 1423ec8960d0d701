package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"fibcalc/internal/batch"
	"fibcalc/internal/render"
	"fibcalc/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	batchWorkers int
	batchCache   bool
)

// batchCmd evaluates an index file
var batchCmd = &cobra.Command{
	Use:   "batch FILE",
	Short: "Evaluate every index listed in FILE (- for stdin)",
	Long: `Reads indices separated by whitespace or commas ('#' starts a comment)
and evaluates them concurrently. With --cache (or store.enabled in the config)
terms are cached in SQLite and the run is recorded.

Example:
  printf '10 20 30\n47 # wraps\n' | fib batch -`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Concurrent workers (default from config)")
	batchCmd.Flags().BoolVar(&batchCache, "cache", false, "Cache terms in the SQLite store")
}

func readIndices(cmd *cobra.Command, source string) ([]int64, error) {
	var r io.Reader
	if source == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", source, err)
		}
		defer f.Close()
		r = f
	}
	indices, err := batch.ParseIndices(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return indices, nil
}

// openStore opens the term store when caching is requested, returning nil otherwise.
func openStore(force bool) (*store.TermStore, error) {
	if !force && !cfg.Store.Enabled {
		return nil, nil
	}
	path := cfg.GetDatabasePath(workspace)
	ts, err := store.NewTermStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open term store: %w", err)
	}
	logger.Debug("Term store opened", zap.String("path", path))
	return ts, nil
}

func newRunner(ts *store.TermStore) *batch.Runner {
	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Batch.Workers
	}
	// A nil *TermStore must not become a non-nil Cache interface
	var cache batch.Cache
	if ts != nil {
		cache = ts
	}
	return batch.NewRunner(evaluator(), workers, cache)
}

func executeBatch(ctx context.Context, cmd *cobra.Command, runner *batch.Runner, source string) error {
	indices, err := readIndices(cmd, source)
	if err != nil {
		return err
	}

	run, err := runner.Run(ctx, source, indices)
	if err != nil {
		return err
	}
	logger.Info("Batch complete",
		zap.String("run", run.ID),
		zap.Int("terms", len(run.Results)),
		zap.Int("failed", run.Failed))

	out := cmd.OutOrStdout()
	if render.Format(formatFlag) == render.FormatJSON {
		return render.JSON(out, run)
	}
	return render.RunSummary(out, run)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	ts, err := openStore(batchCache)
	if err != nil {
		return err
	}
	if ts != nil {
		defer ts.Close()
	}

	return executeBatch(ctx, cmd, newRunner(ts), args[0])
}
