package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBrokers = "broker1:9092,broker2:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "data/ibtracs_dataset.csv", cfg.DatasetPath)
	assert.Empty(t, cfg.DatasetURL)
	assert.Equal(t, time.Minute, cfg.DatasetTimeout)
	assert.Equal(t, time.Hour, cfg.DatasetRefreshInterval)
	assert.Equal(t, "http://localhost:5000/predict", cfg.PredictorURL)
	assert.Equal(t, 10*time.Second, cfg.PredictorTimeout)
	assert.Equal(t, 256, cfg.PredictorCacheSize)
	assert.InDelta(t, 5.0, cfg.PredictorRateLimit, 1e-9)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "storm-predictions", cfg.KafkaPredictionTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATASET_PATH", "/srv/tracks.csv")
	t.Setenv("DATASET_URL", "https://example.com/ibtracs.csv")
	t.Setenv("DATASET_TIMEOUT", "2m")
	t.Setenv("DATASET_REFRESH_INTERVAL", "15m")
	t.Setenv("PREDICTOR_URL", "http://model:5000/predict")
	t.Setenv("PREDICTOR_TIMEOUT", "3s")
	t.Setenv("PREDICTOR_CACHE_SIZE", "64")
	t.Setenv("PREDICTOR_RATE_LIMIT", "0.5")
	t.Setenv("KAFKA_BROKERS", testBrokers)
	t.Setenv("KAFKA_PREDICTION_TOPIC", "custom-predictions")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/srv/tracks.csv", cfg.DatasetPath)
	assert.Equal(t, "https://example.com/ibtracs.csv", cfg.DatasetURL)
	assert.Equal(t, 2*time.Minute, cfg.DatasetTimeout)
	assert.Equal(t, 15*time.Minute, cfg.DatasetRefreshInterval)
	assert.Equal(t, "http://model:5000/predict", cfg.PredictorURL)
	assert.Equal(t, 3*time.Second, cfg.PredictorTimeout)
	assert.Equal(t, 64, cfg.PredictorCacheSize)
	assert.InDelta(t, 0.5, cfg.PredictorRateLimit, 1e-9)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-predictions", cfg.KafkaPredictionTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_RefreshIntervalZeroDisablesRefresh(t *testing.T) {
	t.Setenv("DATASET_REFRESH_INTERVAL", "0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.DatasetRefreshInterval)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"DATASET_REFRESH_INTERVAL", "soon"},
		{"DATASET_REFRESH_INTERVAL", "-1m"},
		{"DATASET_TIMEOUT", "0s"},
		{"PREDICTOR_TIMEOUT", "bad"},
		{"PREDICTOR_TIMEOUT", "0"},
		{"PREDICTOR_CACHE_SIZE", "0"},
		{"PREDICTOR_CACHE_SIZE", "many"},
		{"PREDICTOR_RATE_LIMIT", "-2"},
		{"PREDICTOR_URL", "ftp://model/predict"},
		{"PREDICTOR_URL", "http://"},
		{"DATASET_URL", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", testBrokers)
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
