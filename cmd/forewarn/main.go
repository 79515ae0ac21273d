package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dwsmith1983/forewarn/internal/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "forewarn",
		Short: "Failure-pattern discovery for predictive maintenance",
		Long: `Forewarn mines historical equipment sensor data for the state
transitions that precede failures. It discretizes readings into states,
builds a transition graph per machine, searches it for paths into failure
states, and ranks the recurring precursors into actionable warning signs.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewInitCmd(),
		commands.NewDiscoverCmd(),
		commands.NewClassifyCmd(),
		commands.NewHistoryCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
