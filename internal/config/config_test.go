package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/flood_gauges_gbm.csv", cfg.SourcePath)
	assert.Equal(t, "Station", cfg.StationColumn)
	assert.Equal(t, ',', cfg.CSVDelimiter)
	assert.Equal(t, 8, cfg.SourceCacheSize)
	assert.Equal(t, domain.DefaultParams(), cfg.Params)
	assert.InDelta(t, 50.0, cfg.InfluenceRadiusKm, 1e-9)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "flood-risk-assessments", cfg.KafkaSinkTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("SOURCE_PATH", "/srv/gauges.tsv")
	t.Setenv("STATION_COLUMN", "Gauge")
	t.Setenv("CSV_DELIMITER", `\t`)
	t.Setenv("SOURCE_CACHE_SIZE", "2")
	t.Setenv("HIGH_RISK_QUANTILE", "0.8")
	t.Setenv("MEDIUM_RISK_QUANTILE", "0.5")
	t.Setenv("DANGER_WEIGHT", "0.7")
	t.Setenv("CLUSTER_EPS_RADIANS", "0.05")
	t.Setenv("CLUSTER_MIN_SAMPLES", "4")
	t.Setenv("INFLUENCE_RADIUS_KM", "25")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/gauges.tsv", cfg.SourcePath)
	assert.Equal(t, "Gauge", cfg.StationColumn)
	assert.Equal(t, '\t', cfg.CSVDelimiter)
	assert.Equal(t, 2, cfg.SourceCacheSize)
	assert.InDelta(t, 0.8, cfg.Params.HighQuantile, 1e-12)
	assert.InDelta(t, 0.5, cfg.Params.MediumQuantile, 1e-12)
	assert.InDelta(t, 0.7, cfg.Params.DangerWeight, 1e-12)
	assert.InDelta(t, 0.3, cfg.Params.ProximityWeight, 1e-12)
	assert.InDelta(t, 0.05, cfg.Params.ClusterEps, 1e-12)
	assert.Equal(t, 4, cfg.Params.ClusterMinSamples)
	assert.InDelta(t, 25.0, cfg.InfluenceRadiusKm, 1e-12)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		errMsg string
	}{
		{"shutdown timeout", "SHUTDOWN_TIMEOUT", "not-a-duration", "SHUTDOWN_TIMEOUT"},
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-1s", "SHUTDOWN_TIMEOUT"},
		{"cache size zero", "SOURCE_CACHE_SIZE", "0", "SOURCE_CACHE_SIZE"},
		{"cache size text", "SOURCE_CACHE_SIZE", "many", "SOURCE_CACHE_SIZE"},
		{"delimiter too long", "CSV_DELIMITER", ";;", "CSV_DELIMITER"},
		{"delimiter quote", "CSV_DELIMITER", `"`, "CSV_DELIMITER"},
		{"quantile text", "HIGH_RISK_QUANTILE", "high", "HIGH_RISK_QUANTILE"},
		{"medium above high", "MEDIUM_RISK_QUANTILE", "0.9", "invalid assessment parameters"},
		{"weight above one", "DANGER_WEIGHT", "1.5", "invalid assessment parameters"},
		{"eps zero", "CLUSTER_EPS_RADIANS", "0", "invalid assessment parameters"},
		{"min samples zero", "CLUSTER_MIN_SAMPLES", "0", "CLUSTER_MIN_SAMPLES"},
		{"influence radius", "INFLUENCE_RADIUS_KM", "-5", "INFLUENCE_RADIUS_KM"},
		{"NaN high quantile", "HIGH_RISK_QUANTILE", "NaN", "HIGH_RISK_QUANTILE"},
		{"NaN medium quantile", "MEDIUM_RISK_QUANTILE", "NaN", "MEDIUM_RISK_QUANTILE"},
		{"NaN danger weight", "DANGER_WEIGHT", "NaN", "DANGER_WEIGHT"},
		{"Inf danger weight", "DANGER_WEIGHT", "+Inf", "DANGER_WEIGHT"},
		{"NaN eps", "CLUSTER_EPS_RADIANS", "NaN", "CLUSTER_EPS_RADIANS"},
		{"Inf influence radius", "INFLUENCE_RADIUS_KM", "Inf", "INFLUENCE_RADIUS_KM"},
		{"kafka enabled not boolean", "KAFKA_ENABLED", "yes", "KAFKA_ENABLED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaBrokersImplyEnabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", defaultBroker)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
}

func TestLoad_KafkaEnabledBooleanForms(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"false", false},
		{"0", false},
		{"F", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("KAFKA_BROKERS", defaultBroker)
			t.Setenv("KAFKA_ENABLED", tt.value)
			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.KafkaEnabled)
		})
	}
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", defaultBroker)
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{",", ',', false},
		{";", ';', false},
		{"|", '|', false},
		{`\t`, '\t', false},
		{"\t", '\t', false},
		{"", 0, true},
		{"ab", 0, true},
		{`"`, 0, true},
		{"\n", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDelimiter(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
