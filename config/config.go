package config

import (
	"time"
)

// Config holds the application configuration.
type Config struct {
	LogLevel  string          `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Seed      int64           `mapstructure:"seed"`
	Timeout   time.Duration   `mapstructure:"timeout" validate:"gt=0"`
	Baseline  BaselineConfig  `mapstructure:"baseline"`
	Model     ModelConfig     `mapstructure:"model"`
	Stress    StressConfig    `mapstructure:"stress"`
	Artifacts ArtifactConfig  `mapstructure:"artifacts"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Topology  TopologyConfig  `mapstructure:"topology"`

	MongoURI           string `mapstructure:"-"`
	UnprocessedDir     string `mapstructure:"-"`
	ProcessedDir       string `mapstructure:"-"`
	MoveProcessedFiles bool   `mapstructure:"-"`
}

// BaselineConfig configures the baseline generator.
type BaselineConfig struct {
	Path string `mapstructure:"path" validate:"required"`
	Rows int    `mapstructure:"rows" validate:"gt=0"`
}

// ModelConfig configures the model trainer.
type ModelConfig struct {
	Name       string `mapstructure:"name" validate:"required,excludesall=@/"`
	Resolution int    `mapstructure:"resolution" validate:"gt=1"`
}

// StressConfig configures the stress injector.
type StressConfig struct {
	Path            string  `mapstructure:"path" validate:"required"`
	Rows            int     `mapstructure:"rows" validate:"gt=0"`
	IDPrefix        string  `mapstructure:"id_prefix"`
	LatencyFraction float64 `mapstructure:"latency_fraction" validate:"gte=0,lte=1"`
	LatencyValue    int     `mapstructure:"latency_value"`
	AmountFraction  float64 `mapstructure:"amount_fraction" validate:"gte=0,lte=1"`
	AmountValue     float64 `mapstructure:"amount_value"`
	StatusFraction  float64 `mapstructure:"status_fraction" validate:"gte=0,lte=1"`
	StatusValue     int     `mapstructure:"status_value"`
}

// ArtifactConfig selects where serialized models are stored.
type ArtifactConfig struct {
	Backend  string `mapstructure:"backend" validate:"oneof=file gcs"`
	Dir      string `mapstructure:"dir" validate:"required_if=Backend file"`
	Bucket   string `mapstructure:"bucket" validate:"required_if=Backend gcs"`
	Prefix   string `mapstructure:"prefix"`
	Endpoint string `mapstructure:"endpoint"`
}

// DashboardConfig configures the dashboard HTTP server.
type DashboardConfig struct {
	Addr             string        `mapstructure:"addr" validate:"required"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	MetricsNamespace string        `mapstructure:"metrics_namespace"`
}

// TopologyConfig maps categories to chart coordinates and lists the drawn connections.
// Category keys are case-insensitive.
type TopologyConfig struct {
	Positions   map[string][]float64 `mapstructure:"positions" validate:"dive,len=2"`
	Connections [][]string           `mapstructure:"connections" validate:"dive,len=2"`
}
