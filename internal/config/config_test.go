package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forewarn.yaml"), []byte(content), 0o644))
	return dir
}

const validConfig = `data:
  path: data/history.csv
graph:
  discretization:
    Temperature:
      bins: [0, 25, 50, 75, 100]
      labels: [low, medium, high, very_high]
    Vibration_Level:
      bins: [0, 5, 10]
      labels: [calm, rough]
  stateComponents: [Temperature, Vibration_Level]
search:
  maxDepth: 20
  heuristic: sensor_distance
alerts:
  - type: console
store:
  path: forewarn.db
`

func TestLoad(t *testing.T) {
	dir := writeConfig(t, validConfig)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "data/history.csv", cfg.Data.Path)
	assert.Equal(t, 20, cfg.Search.MaxDepth)
	assert.Equal(t, "sensor_distance", cfg.Search.Heuristic)
	assert.Len(t, cfg.Graph.Discretization, 2)
	assert.Equal(t, []string{"Temperature", "Vibration_Level"}, cfg.Graph.StateComponents)
	assert.Equal(t, "forewarn.db", cfg.Store.Path)

	// Defaults fill unset knobs.
	assert.Equal(t, DefaultMinPatternLength, cfg.Search.MinPatternLength)
	assert.Equal(t, DefaultLookbackWindow, cfg.Search.LookbackWindow)
	assert.Equal(t, DefaultAStarWeight, cfg.Search.AStarWeight)
	assert.Equal(t, DefaultSampleCap, cfg.Data.SampleCap)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := writeConfig(t, "graph: [broken")
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidation_LabelCountMismatch(t *testing.T) {
	dir := writeConfig(t, `graph:
  discretization:
    Temperature:
      bins: [0, 50, 100]
      labels: [low, medium, high]
  stateComponents: [Temperature]
`)
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "labels")
}

func TestValidation_BinsNotIncreasing(t *testing.T) {
	dir := writeConfig(t, `graph:
  discretization:
    Temperature:
      bins: [0, 50, 50]
      labels: [low, high]
  stateComponents: [Temperature]
`)
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strictly increasing")
}

func TestValidation_UnknownStateComponent(t *testing.T) {
	dir := writeConfig(t, `graph:
  discretization:
    Temperature:
      bins: [0, 50, 100]
      labels: [low, high]
  stateComponents: [Temperature, Pressure]
`)
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Pressure")
}

func TestValidation_UnknownHeuristic(t *testing.T) {
	dir := writeConfig(t, `graph:
  discretization:
    Temperature:
      bins: [0, 50, 100]
      labels: [low, high]
  stateComponents: [Temperature]
search:
  heuristic: frequency
`)
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown heuristic")
}

func TestValidation_WebhookRequiresURL(t *testing.T) {
	dir := writeConfig(t, `graph:
  discretization:
    Temperature:
      bins: [0, 50, 100]
      labels: [low, high]
  stateComponents: [Temperature]
alerts:
  - type: webhook
`)
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook")
}
