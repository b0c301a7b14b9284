package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Station source.
	SourcePath      string
	StationColumn   string
	CSVDelimiter    rune
	SourceCacheSize int

	// Assessment parameters.
	Params            domain.Params
	InfluenceRadiusKm float64

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka publishing of the enriched station table.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is read first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	delimiter, err := ParseDelimiter(sharedcfg.EnvOrDefault("CSV_DELIMITER", ","))
	if err != nil {
		return nil, fmt.Errorf("CSV_DELIMITER: %w", err)
	}

	cacheSize, err := parsePositiveInt("SOURCE_CACHE_SIZE", 8)
	if err != nil {
		return nil, err
	}

	params := domain.DefaultParams()
	if params.HighQuantile, err = parseFloat("HIGH_RISK_QUANTILE", domain.DefaultHighQuantile); err != nil {
		return nil, err
	}
	if params.MediumQuantile, err = parseFloat("MEDIUM_RISK_QUANTILE", domain.DefaultMediumQuantile); err != nil {
		return nil, err
	}
	if params.DangerWeight, err = parseFloat("DANGER_WEIGHT", domain.DefaultDangerWeight); err != nil {
		return nil, err
	}
	params.ProximityWeight = 1 - params.DangerWeight
	if params.ClusterEps, err = parseFloat("CLUSTER_EPS_RADIANS", domain.DefaultClusterEps); err != nil {
		return nil, err
	}
	if params.ClusterMinSamples, err = parsePositiveInt("CLUSTER_MIN_SAMPLES", domain.DefaultClusterMinSamples); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assessment parameters: %w", err)
	}

	influence, err := parseFloat("INFLUENCE_RADIUS_KM", 50)
	if err != nil {
		return nil, err
	}
	if influence <= 0 {
		return nil, errors.New("INFLUENCE_RADIUS_KM must be positive")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		if kafkaEnabled, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid KAFKA_ENABLED %q: must be a boolean", v)
		}
	}

	cfg := &Config{
		SourcePath:        sharedcfg.EnvOrDefault("SOURCE_PATH", "data/flood_gauges_gbm.csv"),
		StationColumn:     sharedcfg.EnvOrDefault("STATION_COLUMN", domain.DefaultStationColumn),
		CSVDelimiter:      delimiter,
		SourceCacheSize:   cacheSize,
		Params:            params,
		InfluenceRadiusKm: influence,
		HTTPAddr:          sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		KafkaEnabled:      kafkaEnabled,
		KafkaBrokers:      brokers,
		KafkaSinkTopic:    sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "flood-risk-assessments"),
	}

	if cfg.SourcePath == "" {
		return nil, errors.New("SOURCE_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when Kafka is enabled")
	}

	return cfg, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s: must be finite, got %q", key, s)
	}
	return v, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

// ParseDelimiter accepts a single character or the two-character escape \t.
func ParseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q: must be a single character", s)
	}
	return r, nil
}
