package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/forewarn/internal/store"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored discovery runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(runID)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show warning signs for one run")
	return cmd
}

func runHistory(runID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("no store.path configured in forewarn.yaml")
	}

	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening run store: %w", err)
	}
	defer s.Close()

	if runID != "" {
		return printRunSigns(s, runID)
	}

	runs, err := s.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		color.Yellow("No stored runs")
		return nil
	}

	bold := color.New(color.Bold)
	_, _ = bold.Printf("%-28s %-22s %8s %7s %7s %6s\n", "RUN", "CREATED", "RECORDS", "STATES", "PATHS", "FAILS")
	for _, run := range runs {
		fmt.Printf("%-28s %-22s %8d %7d %7d %6d\n",
			run.RunID, run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.RecordCount, run.NodeCount, run.PathCount, run.FailureCount)
	}
	return nil
}

func printRunSigns(s *store.Store, runID string) error {
	signs, err := s.WarningSigns(runID)
	if err != nil {
		return err
	}
	if len(signs) == 0 {
		color.Yellow("No warning signs for run %s", runID)
		return nil
	}
	for _, sign := range signs {
		fmt.Printf("[%.2f] %s (seen %dx)\n", sign.PredictiveScore, sign.Pattern, sign.Frequency)
	}
	return nil
}
