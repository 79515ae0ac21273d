package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [project-name]",
		Short: "Initialize a new Forewarn project",
		Long:  "Creates project scaffolding with a starter forewarn.yaml.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args[0])
		},
	}
}

func runInit(projectName string) error {
	bold := color.New(color.Bold)
	_, _ = bold.Printf("Initializing Forewarn project: %s\n", projectName)

	for _, dir := range []string{"data", "outputs"} {
		path := filepath.Join(projectName, dir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", path, err)
		}
	}

	configPath := filepath.Join(projectName, "forewarn.yaml")
	configContent := `data:
  path: ./data/history.csv

graph:
  discretization:
    temperature:
      bins: [0, 50, 80, 120]
      labels: [low, medium, high]
    vibration:
      bins: [0, 2, 5, 10]
      labels: [low, medium, high]
  stateComponents: [temperature, vibration]

search:
  maxDepth: 50
  minPatternLength: 3
  heuristic: time_to_failure

classifier:
  thresholds:
    temperature:
      min: 0
      max: 100
    vibration:
      max: 8

alerts:
  - type: console

store:
  path: ./forewarn.db

outputDir: ./outputs
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	color.Green("  ✓ Project scaffolded")
	fmt.Println()
	_, _ = bold.Println("Next steps:")
	fmt.Printf("  cd %s\n", projectName)
	fmt.Println("  # drop your history CSV at ./data/history.csv")
	fmt.Println("  forewarn discover")
	return nil
}
