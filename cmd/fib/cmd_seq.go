package main

import (
	"fmt"
	"math/big"
	"strconv"

	"fibcalc/internal/render"

	"github.com/spf13/cobra"
)

// seqCmd lists the first COUNT terms
var seqCmd = &cobra.Command{
	Use:   "seq COUNT",
	Short: "List fib(1) through fib(COUNT)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeq,
}

func runSeq(cmd *cobra.Command, args []string) error {
	count, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid count %q: %w", args[0], err)
	}

	ev := evaluator()
	values, seqErr := ev.Sequence(count)
	if seqErr != nil && values == nil {
		return seqErr
	}

	out := cmd.OutOrStdout()
	if render.Format(formatFlag) == render.FormatJSON {
		err = render.JSON(out, struct {
			Evaluator string     `json:"evaluator"`
			Terms     []*big.Int `json:"terms"`
		}{ev.String(), values})
	} else {
		err = render.Sequence(out, fmt.Sprintf("fib(1)..fib(%d) under %s", count, ev), values)
	}
	if err != nil {
		return err
	}
	// In checked mode the terms before the overflow are still printed
	return seqErr
}
