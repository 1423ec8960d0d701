package main

import (
	"fmt"
	"os"

	"fibcalc/internal/config"

	"github.com/spf13/cobra"
)

var initForce bool

// initCmd writes a default configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .fib/config.yaml in the workspace",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath(workspace)
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
