package main

import (
	"fibcalc/internal/render"

	"github.com/spf13/cobra"
)

var runsLimit int

// runsCmd lists recorded batch runs
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent batch runs recorded in the term store",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "Number of runs to show")
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	ts, err := openStore(true)
	if err != nil {
		return err
	}
	defer ts.Close()

	runs, err := ts.RecentRuns(ctx, runsLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if render.Format(formatFlag) == render.FormatJSON {
		return render.JSON(out, runs)
	}
	return render.Runs(out, runs)
}
