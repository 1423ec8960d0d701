package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fibcalc/internal/config"
	"fibcalc/internal/fib"
	"fibcalc/internal/logging"
	"fibcalc/internal/render"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose      bool
	workspace    string
	modeFlag     string
	widthFlag    int
	formatFlag   string
	timeout      time.Duration
	maxIndexFlag int64

	// Logger
	logger *zap.Logger

	// Loaded by PersistentPreRunE
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fib",
	Short: "fib - Fibonacci terms with fib(1) = fib(2) = 1",
	Long: `fib computes terms of the Fibonacci sequence iteratively.

By default terms use wrapping 32-bit arithmetic: every n <= 2 (including
zero and negative n) yields 1 and overflow wraps silently. Use --mode checked
to report overflow instead, or --mode big for arbitrary precision.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: nearest .fib or go.mod)")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "Computation mode: wrap, checked, big (default from config)")
	rootCmd.PersistentFlags().IntVar(&widthFlag, "width", 0, "Integer width for wrap/checked: 32 or 64 (default from config)")
	rootCmd.PersistentFlags().Int64Var(&maxIndexFlag, "max-index", -1, "Largest accepted index, 0 for unlimited (default from config)")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "o", "text", "Output format: text or json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Operation timeout (default from config batch.timeout)")

	rootCmd.AddCommand(termCmd)
	rootCmd.AddCommand(seqCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup resolves the workspace, loads config, applies flag overrides and
// initializes logging.
func setup(cmd *cobra.Command, args []string) error {
	if _, err := render.ParseFormat(formatFlag); err != nil {
		return err
	}

	var err error
	logger, err = logging.NewConsole(verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if workspace == "" {
		workspace, err = config.FindWorkspaceRoot()
		if err != nil {
			return fmt.Errorf("failed to find workspace: %w", err)
		}
	}

	cfg, err = config.Load(config.DefaultPath(workspace))
	if err != nil {
		return err
	}
	if modeFlag != "" {
		cfg.Compute.Mode = modeFlag
	}
	if widthFlag != 0 {
		cfg.Compute.Width = widthFlag
	}
	if maxIndexFlag >= 0 {
		cfg.Compute.MaxIndex = maxIndexFlag
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.Initialize(workspace, cfg.Logging); err != nil {
		logger.Warn("File logging unavailable", zap.Error(err))
	}
	logging.Boot("Command %s, evaluator %s", cmd.CommandPath(), cfg.Evaluator())
	logger.Debug("Configuration loaded",
		zap.String("workspace", workspace),
		zap.String("evaluator", cfg.Evaluator().String()))
	return nil
}

// operationTimeout returns --timeout, falling back to batch.timeout from config.
func operationTimeout() time.Duration {
	if timeout > 0 {
		return timeout
	}
	return cfg.GetBatchTimeout()
}

// commandContext returns a context cancelled by SIGINT/SIGTERM and by the timeout.
func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithTimeout(ctx, operationTimeout())
	return ctx, func() {
		cancel()
		stop()
	}
}

func evaluator() fib.Evaluator {
	return cfg.Evaluator()
}
