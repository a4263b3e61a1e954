package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/climate-percentiles/internal/domain"
)

// Config holds all job and server settings, populated from environment variables.
type Config struct {
	DataRoot         string
	TemperatureDir   string
	PrecipitationDir string
	OutputPath       string
	PercentileKind   domain.PercentileKind

	LogLevel        string
	LogFormat       string
	MetricsTextfile string

	// Optional publication of the artifact to Kafka.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaTopic     string
	PublishTimeout time.Duration

	// Report server settings.
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	publishTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("PUBLISH_TIMEOUT", "10s"))
	if err != nil || publishTimeout <= 0 {
		return nil, errors.New("invalid PUBLISH_TIMEOUT")
	}

	kind, err := domain.ParsePercentileKind(sharedcfg.EnvOrDefault("PERCENTILE_KIND", string(domain.KindMean)))
	if err != nil {
		return nil, fmt.Errorf("invalid PERCENTILE_KIND: %w", err)
	}

	root := sharedcfg.EnvOrDefault("DATA_ROOT", filepath.Join("public", "maps", "data"))

	cfg := &Config{
		DataRoot:         root,
		TemperatureDir:   sharedcfg.EnvOrDefault("TEMPERATURE_DIR", filepath.Join(root, "Datos_temp")),
		PrecipitationDir: sharedcfg.EnvOrDefault("PRECIPITATION_DIR", filepath.Join(root, "Datos_precip")),
		OutputPath:       sharedcfg.EnvOrDefault("OUTPUT_PATH", filepath.Join(root, "datos_percentiles.json")),
		PercentileKind:   kind,

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		MetricsTextfile: sharedcfg.EnvOrDefault("METRICS_TEXTFILE", ""),

		KafkaEnabled:   sharedcfg.EnvOrDefault("KAFKA_ENABLED", "false") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:     sharedcfg.EnvOrDefault("KAFKA_TOPIC", "climate-percentiles"),
		PublishTimeout: publishTimeout,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is not set")
	}

	return cfg, nil
}
