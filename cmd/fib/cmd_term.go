package main

import (
	"fmt"
	"strconv"

	"fibcalc/internal/batch"
	"fibcalc/internal/logging"
	"fibcalc/internal/render"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// termCmd evaluates individual indices
var termCmd = &cobra.Command{
	Use:   "term N [N...]",
	Short: "Compute fib(N) for one or more indices",
	Long: `Computes fib(N) for each index given.

Examples:
  fib term 10            # 55
  fib term -- 0 -3       # 1 1 (every n <= 2 yields 1)
  fib term 47            # wraps to -1323752223 in 32-bit mode
  fib term --mode big 100`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTerm,
}

func parseIndexArgs(args []string) ([]int64, error) {
	out := make([]int64, 0, len(args))
	for _, a := range args {
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", a, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func runTerm(cmd *cobra.Command, args []string) error {
	indices, err := parseIndexArgs(args)
	if err != nil {
		return err
	}

	ev := evaluator()
	results := make([]batch.Result, 0, len(indices))
	failed := 0
	for _, n := range indices {
		v, err := ev.Eval(n)
		if err != nil {
			failed++
			logger.Debug("Evaluation failed", zap.Int64("n", n), zap.Error(err))
			results = append(results, batch.Result{N: n, Err: err.Error()})
			continue
		}
		logging.ComputeDebug("fib(%d) = %s under %s", n, v, ev)
		results = append(results, batch.Result{N: n, Value: v})
	}

	out := cmd.OutOrStdout()
	if render.Format(formatFlag) == render.FormatJSON {
		err = render.JSON(out, results)
	} else {
		err = render.Terms(out, "", results)
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d terms failed", failed, len(indices))
	}
	return nil
}
