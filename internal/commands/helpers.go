// Package commands implements the CLI subcommands for the forewarn binary.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dwsmith1983/forewarn/internal/config"
	"github.com/dwsmith1983/forewarn/internal/ingest"
)

// newLogger builds the CLI logger. Verbose switches on debug level.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads forewarn.yaml from the working directory.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// historyColumns maps the data config onto CSV column bindings.
func historyColumns(cfg *config.Config) ingest.Columns {
	return ingest.Columns{
		Timestamp: cfg.Data.TimestampColumn,
		MachineID: cfg.Data.MachineIDColumn,
		Failure:   cfg.Data.FailureColumn,
		Sensors:   cfg.Data.SensorColumns,
	}
}
