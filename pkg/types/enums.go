package types

// ClassificationStatus is the outcome of rule classification for a reading.
type ClassificationStatus string

// ClassificationStatus values.
const (
	StatusNormal  ClassificationStatus = "normal"
	StatusAnomaly ClassificationStatus = "anomaly"
)

// AlertLevel indicates alert severity.
type AlertLevel string

// AlertLevel values.
const (
	AlertInfo    AlertLevel = "info"
	AlertWarning AlertLevel = "warning"
	AlertError   AlertLevel = "error"
)

// AlertSinkType identifies an alert sink implementation.
type AlertSinkType string

// AlertSinkType values enumerate the supported alert destinations.
const (
	AlertConsole AlertSinkType = "console"
	AlertFile    AlertSinkType = "file"
	AlertWebhook AlertSinkType = "webhook"
)

// AlertConfig configures a single alert sink.
type AlertConfig struct {
	Type AlertSinkType `yaml:"type" json:"type"`
	URL  string        `yaml:"url,omitempty" json:"url,omitempty"`
	Path string        `yaml:"path,omitempty" json:"path,omitempty"`
}
