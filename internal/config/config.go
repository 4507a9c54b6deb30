package config

import (
	"errors"
	"os"
	"strconv"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all run settings, populated from environment variables.
// Command-line flags override individual fields after Load.
type Config struct {
	NEOFile   string
	CADFile   string
	Strict    bool
	LogLevel  string
	LogFormat string

	// MetricsTextfile, when set, receives a Prometheus text-format snapshot
	// at the end of the run (node-exporter textfile collector).
	MetricsTextfile string

	// Kafka sink configuration, used only when publishing is requested.
	KafkaBrokers []string
	KafkaTopic   string
	BatchSize    int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	strict, err := parseBool("STRICT", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		NEOFile:         sharedcfg.EnvOrDefault("NEO_FILE", "data/neos.csv"),
		CADFile:         sharedcfg.EnvOrDefault("CAD_FILE", "data/cad.json"),
		Strict:          strict,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "neo-close-approaches"),
		BatchSize:       batchSize,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that flags may also have changed.
func (c *Config) Validate() error {
	if c.NEOFile == "" {
		return errors.New("NEO_FILE is required")
	}
	if c.CADFile == "" {
		return errors.New("CAD_FILE is required")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return errors.New("LOG_FORMAT must be json or text")
	}
	return nil
}

// ValidateKafka checks the settings needed to publish to Kafka.
func (c *Config) ValidateKafka() error {
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required")
	}
	return nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New("invalid " + key)
	}
	return v, nil
}
