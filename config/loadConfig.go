package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Default values.
const (
	defaultTimeoutSeconds     = 30
	defaultLogLevel           = "info"
	defaultBaselinePath       = "normal_logs.csv"
	defaultBaselineRows       = 5000
	defaultModelName          = "sanket-brain"
	defaultModelResolution    = 100
	defaultStressPath         = "data/stress_test_logs.csv"
	defaultStressRows         = 10000
	defaultStressIDPrefix     = "SYN-"
	defaultArtifactBackend    = "file"
	defaultArtifactDir        = "model"
	defaultDashboardAddr      = ":8501"
	defaultMetricsNamespace   = "sanket"
	defaultMongoURI           = "mongodb://localhost:27017/datalake"
	defaultMongoHost          = "localhost"
	defaultMongoPort          = "27017"
	defaultCSVDir             = "./data"
	defaultProcessedDir       = "processed"
	defaultUnprocessedDir     = "unprocessed"
	defaultMoveProcessedFiles = false
	envPrefix                 = "SANKET"
	envConfigFile             = "SANKET_CONFIG"
	envMongoURI               = "MONGO_URI"
	envMongoHost              = "MONGO_HOST"
	envCSVDirectory           = "CSV_DIR"
	envProcessedDirectory     = "PROCESSED_DIR"
	envUnprocessedDirectory   = "UNPROCESSED_DIR"
	envMoveProcessedFiles     = "MOVE_PROCESSED_FILES"
	envMongoUser              = "MONGO_USER"
	envMongoPassword          = "MONGO_PASSWORD"
)

var errInvalidConfig = errors.New("invalid configuration")

// InvalidConfigError wraps a validation failure.
func InvalidConfigError(err error) error {
	return fmt.Errorf("%w: %w", errInvalidConfig, err)
}

// LoadConfig loads the application configuration from defaults, an optional YAML
// file and environment variables, in increasing order of precedence. When path is
// empty the file named by SANKET_CONFIG is used, if any.
func LoadConfig(ctx context.Context, logger *slog.Logger, path string) (*Config, error) {
	v := newViper()

	if path == "" {
		path = os.Getenv(envConfigFile)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		logger.DebugContext(ctx, "Using configuration file", "file", v.ConfigFileUsed())
	} else {
		logger.DebugContext(ctx, "No configuration file, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.MongoURI = formatMongoURI(ctx, v, logger)

	csvDirectory := v.GetString("ingest.csv_dir")
	logger.DebugContext(ctx, "Using CSV directory", "dir", csvDirectory)
	cfg.UnprocessedDir = fmt.Sprintf("%s/%s", csvDirectory, v.GetString("ingest.unprocessed_dir"))
	cfg.ProcessedDir = fmt.Sprintf("%s/%s", csvDirectory, v.GetString("ingest.processed_dir"))
	logger.DebugContext(ctx, "Constructed directory paths", "unprocessed", cfg.UnprocessedDir, "processed", cfg.ProcessedDir)

	cfg.MoveProcessedFiles = moveProcessedFiles(ctx, v, logger)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct constraints of the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return InvalidConfigError(err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("seed", 0)
	v.SetDefault("timeout", defaultTimeoutSeconds*time.Second)

	v.SetDefault("baseline.path", defaultBaselinePath)
	v.SetDefault("baseline.rows", defaultBaselineRows)

	v.SetDefault("model.name", defaultModelName)
	v.SetDefault("model.resolution", defaultModelResolution)

	v.SetDefault("stress.path", defaultStressPath)
	v.SetDefault("stress.rows", defaultStressRows)
	v.SetDefault("stress.id_prefix", defaultStressIDPrefix)
	v.SetDefault("stress.latency_fraction", 0.05)
	v.SetDefault("stress.latency_value", 5000)
	v.SetDefault("stress.amount_fraction", 0.02)
	v.SetDefault("stress.amount_value", -100.0)
	v.SetDefault("stress.status_fraction", 0.03)
	v.SetDefault("stress.status_value", 500)

	v.SetDefault("artifacts.backend", defaultArtifactBackend)
	v.SetDefault("artifacts.dir", defaultArtifactDir)
	v.SetDefault("artifacts.bucket", "")
	v.SetDefault("artifacts.prefix", "")
	v.SetDefault("artifacts.endpoint", "")

	v.SetDefault("dashboard.addr", defaultDashboardAddr)
	v.SetDefault("dashboard.read_timeout", 5*time.Second)
	v.SetDefault("dashboard.write_timeout", 10*time.Second)
	v.SetDefault("dashboard.metrics_namespace", defaultMetricsNamespace)

	// topology has no defaults; an empty topology selects the dashboard's
	// built-in layout and configured positions replace it whole.

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.host", defaultMongoHost)
	v.SetDefault("mongo.user", "")
	v.SetDefault("mongo.password", "")

	v.SetDefault("ingest.csv_dir", defaultCSVDir)
	v.SetDefault("ingest.unprocessed_dir", defaultUnprocessedDir)
	v.SetDefault("ingest.processed_dir", defaultProcessedDir)
	v.SetDefault("ingest.move_processed_files", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variable names inherited from the ingest tooling are honoured unprefixed.
	_ = v.BindEnv("mongo.uri", envMongoURI)
	_ = v.BindEnv("mongo.host", envMongoHost)
	_ = v.BindEnv("mongo.user", envMongoUser)
	_ = v.BindEnv("mongo.password", envMongoPassword)
	_ = v.BindEnv("ingest.csv_dir", envCSVDirectory)
	_ = v.BindEnv("ingest.unprocessed_dir", envUnprocessedDirectory)
	_ = v.BindEnv("ingest.processed_dir", envProcessedDirectory)
	_ = v.BindEnv("ingest.move_processed_files", envMoveProcessedFiles)

	return v
}

func moveProcessedFiles(ctx context.Context, v *viper.Viper, logger *slog.Logger) bool {
	moveProcessedFilesStr := v.GetString("ingest.move_processed_files")
	if moveProcessedFilesStr == "" {
		logger.DebugContext(ctx, "Using default value for moveProcessedFiles", "value", defaultMoveProcessedFiles)
		return defaultMoveProcessedFiles
	}

	parsedBool, err := strconv.ParseBool(moveProcessedFilesStr)
	if err != nil {
		logger.WarnContext(
			ctx,
			"Invalid value for MOVE_PROCESSED_FILES, using default",
			"value", moveProcessedFilesStr,
			"default", defaultMoveProcessedFiles,
			"error", err,
		)
		return defaultMoveProcessedFiles
	}

	logger.DebugContext(ctx, "Set moveProcessedFiles from configuration", "value", parsedBool)
	return parsedBool
}

// formatMongoURI formats mongo settings to a url and return the result.
func formatMongoURI(
	ctx context.Context,
	v *viper.Viper,
	logger *slog.Logger,
) string {
	if mongoURI := v.GetString("mongo.uri"); mongoURI != "" {
		logger.DebugContext(ctx, "Using configured MongoDB URI", "uri", mongoURI)
		return mongoURI
	}

	mongoHost := v.GetString("mongo.host")
	mongoUser := v.GetString("mongo.user")
	mongoPassword := v.GetString("mongo.password")

	if mongoUser != "" && mongoPassword != "" {
		hostPort := net.JoinHostPort(mongoHost, defaultMongoPort)
		mongoURI := fmt.Sprintf(
			"mongodb://%s:%s@%s/datalake?authSource=admin",
			mongoUser,
			mongoPassword,
			hostPort,
		)
		logger.DebugContext(ctx, "Created MongoDB URI from user, password, and host", "host", mongoHost)
		return mongoURI
	}

	logger.DebugContext(ctx, "Using default MongoDB URI", "uri", defaultMongoURI)
	return defaultMongoURI
}
