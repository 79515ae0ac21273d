package commands

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/forewarn/internal/alert"
	"github.com/dwsmith1983/forewarn/internal/discovery"
	"github.com/dwsmith1983/forewarn/internal/graph"
	"github.com/dwsmith1983/forewarn/internal/ingest"
	"github.com/dwsmith1983/forewarn/internal/report"
	"github.com/dwsmith1983/forewarn/internal/store"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

const discoverTimeout = 10 * time.Minute

// Warning signs at or above this score are dispatched as alerts.
const alertScoreThreshold = 0.5

// NewDiscoverCmd creates the discover command.
func NewDiscoverCmd() *cobra.Command {
	var (
		algorithm string
		workers   int
		seed      int64
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Mine historical sensor data for failure-preceding patterns",
		Long: `Loads the configured history CSV, builds a state-transition graph per
machine, searches it for paths into failure states, and writes ranked
warning signs to the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(algorithm, workers, seed, verbose)
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", discovery.AlgorithmBFS, "Search algorithm (bfs or astar)")
	cmd.Flags().IntVar(&workers, "workers", 1, "Concurrent start-state searches")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for sampling (0 = time-based)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	return cmd
}

func runDiscover(algorithm string, workers int, seed int64, verbose bool) error {
	logger := newLogger(verbose)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	records, err := ingest.LoadHistoryCSV(cfg.Data.Path, historyColumns(cfg))
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no records in %s", cfg.Data.Path)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))
	records = ingest.Sample(records, cfg.Data.SampleCap, rnd)

	ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout)
	defer cancel()

	result, err := discovery.Run(ctx, records, graph.BuildConfig{
		Schemes:                cfg.Graph.Discretization,
		StateComponents:        cfg.Graph.StateComponents,
		MaxSimilarityNeighbors: cfg.Graph.MaxSimilarityNeighbors,
	}, cfg.Search, discovery.Options{
		Algorithm: algorithm,
		Workers:   workers,
		Rand:      rnd,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if err := report.WriteSequences(cfg.OutputDir, result.Sequences); err != nil {
		return err
	}
	if err := report.WriteWarningSigns(cfg.OutputDir, result.WarningSigns); err != nil {
		return err
	}

	if cfg.Store.Path != "" {
		runID, err := saveRun(cfg.Store.Path, len(records), result)
		if err != nil {
			return err
		}
		fmt.Printf("Run stored as %s\n", runID)
	}

	if err := dispatchWarningAlerts(ctx, cfg.Alerts, result.WarningSigns, logger); err != nil {
		return err
	}

	printDiscoverSummary(result)
	return nil
}

func saveRun(path string, recordCount int, result *discovery.Result) (string, error) {
	s, err := store.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening run store: %w", err)
	}
	defer s.Close()

	return s.SaveRun(store.RunSummary{
		RecordCount:  recordCount,
		NodeCount:    result.Graph.NodeCount(),
		EdgeCount:    result.Graph.EdgeCount(),
		FailureCount: result.Graph.FailureCount(),
		PathCount:    len(result.Paths),
	}, result.Sequences, result.WarningSigns)
}

// dispatchWarningAlerts sends one alert per warning sign scoring at or
// above the threshold. No configured sinks means nothing to do.
func dispatchWarningAlerts(ctx context.Context, configs []types.AlertConfig, signs []types.WarningSign, logger *slog.Logger) error {
	if len(configs) == 0 {
		return nil
	}
	dispatcher, err := alert.NewDispatcher(configs, logger)
	if err != nil {
		return fmt.Errorf("configuring alerts: %w", err)
	}
	for _, sign := range signs {
		if sign.PredictiveScore < alertScoreThreshold {
			continue
		}
		dispatcher.Dispatch(ctx, types.Alert{
			Level:     types.AlertWarning,
			Message:   fmt.Sprintf("high-scoring warning sign (%.2f): %s", sign.PredictiveScore, sign.Pattern),
			Timestamp: time.Now(),
		})
	}
	return nil
}

func printDiscoverSummary(result *discovery.Result) {
	bold := color.New(color.Bold)
	_, _ = bold.Println("Discovery summary")
	fmt.Printf("  States:        %d\n", result.Graph.NodeCount())
	fmt.Printf("  Transitions:   %d\n", result.Graph.EdgeCount())
	fmt.Printf("  Failure states: %d\n", result.Graph.FailureCount())
	fmt.Printf("  Paths found:   %d\n", len(result.Paths))
	fmt.Printf("  Sequences:     %d\n", len(result.Sequences))

	if len(result.WarningSigns) == 0 {
		color.Yellow("No warning signs found")
		return
	}

	_, _ = bold.Println("Top warning signs")
	limit := len(result.WarningSigns)
	if limit > 5 {
		limit = 5
	}
	for _, sign := range result.WarningSigns[:limit] {
		line := fmt.Sprintf("  [%.2f] %s (seen %dx)", sign.PredictiveScore, sign.Pattern, sign.Frequency)
		if sign.PredictiveScore >= alertScoreThreshold {
			color.Red(line)
		} else {
			fmt.Println(line)
		}
	}
}
