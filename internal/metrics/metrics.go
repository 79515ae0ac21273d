// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	RecordsLoaded      = expvar.NewInt("records_loaded")
	RecordsSampled     = expvar.NewInt("records_sampled")
	GraphNodesBuilt    = expvar.NewInt("graph_nodes_built")
	GraphEdgesBuilt    = expvar.NewInt("graph_edges_built")
	SearchesRun        = expvar.NewInt("searches_run")
	PathsDiscovered    = expvar.NewInt("paths_discovered")
	PathCapReached     = expvar.NewInt("path_cap_reached")
	ReadingsClassified = expvar.NewInt("readings_classified")
	AnomaliesDetected  = expvar.NewInt("anomalies_detected")
	AlertsDispatched   = expvar.NewInt("alerts_dispatched")
	AlertsFailed       = expvar.NewInt("alerts_failed")
)
