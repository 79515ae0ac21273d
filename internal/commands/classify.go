package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/forewarn/internal/alert"
	"github.com/dwsmith1983/forewarn/internal/classify"
	"github.com/dwsmith1983/forewarn/internal/ingest"
	"github.com/dwsmith1983/forewarn/internal/report"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

const classifyTimeout = 2 * time.Minute

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "classify [readings.csv]",
		Short: "Run threshold rules over a batch of sensor readings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(args[0], verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	return cmd
}

func runClassify(path string, verbose bool) error {
	logger := newLogger(verbose)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	readings, err := ingest.LoadReadingsCSV(path)
	if err != nil {
		return fmt.Errorf("loading readings: %w", err)
	}
	if len(readings) == 0 {
		return fmt.Errorf("no readings in %s", path)
	}

	classifier := classify.New(cfg.Classifier)
	classifications := classifier.ClassifyAll(readings)

	if err := report.WriteClassificationsJSONL(cfg.OutputDir, classifications); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), classifyTimeout)
	defer cancel()

	var dispatcher *alert.Dispatcher
	if len(cfg.Alerts) > 0 {
		dispatcher, err = alert.NewDispatcher(cfg.Alerts, logger)
		if err != nil {
			return fmt.Errorf("configuring alerts: %w", err)
		}
	}

	anomalies := 0
	for _, c := range classifications {
		if c.Status != types.StatusAnomaly {
			continue
		}
		anomalies++
		if dispatcher != nil {
			dispatcher.Dispatch(ctx, types.Alert{
				Level:     types.AlertWarning,
				MachineID: c.EquipmentID,
				Message: fmt.Sprintf("anomaly at %s: %v (confidence %.2f)",
					c.Timestamp, c.ViolatedRules, c.Confidence),
				Timestamp: time.Now(),
			})
		}
	}

	if anomalies > 0 {
		color.Yellow("Classified %d readings: %d anomalies", len(classifications), anomalies)
	} else {
		color.Green("Classified %d readings: all normal", len(classifications))
	}
	return nil
}
