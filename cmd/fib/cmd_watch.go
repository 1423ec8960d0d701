package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fibcalc/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchCmd re-runs a batch whenever FILE changes
var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Evaluate FILE now and again on every change until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Concurrent workers (default from config)")
	watchCmd.Flags().BoolVar(&batchCache, "cache", false, "Cache terms in the SQLite store")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	if path == "-" {
		return fmt.Errorf("cannot watch stdin")
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ts, err := openStore(batchCache)
	if err != nil {
		return err
	}
	if ts != nil {
		defer ts.Close()
	}
	runner := newRunner(ts)

	evaluate := func(ctx context.Context, p string) {
		runCtx, cancel := context.WithTimeout(ctx, operationTimeout())
		defer cancel()
		if err := executeBatch(runCtx, cmd, runner, p); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		evaluate(ctx, path)
	}

	fw, err := watch.NewFileWatcher(path, evaluate)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}
	defer fw.Stop()

	logger.Info("Watching for changes", zap.String("path", fw.Path()))
	<-ctx.Done()
	return nil
}
