package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset source. DatasetURL takes precedence over DatasetPath when set.
	DatasetPath            string
	DatasetURL             string
	DatasetTimeout         time.Duration
	DatasetRefreshInterval time.Duration

	// Prediction model service.
	PredictorURL       string
	PredictorTimeout   time.Duration
	PredictorCacheSize int
	PredictorRateLimit float64

	// Kafka prediction sink.
	KafkaEnabled         bool
	KafkaBrokers         []string
	KafkaPredictionTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parseDuration("DATASET_REFRESH_INTERVAL", "1h", true)
	if err != nil {
		return nil, err
	}

	datasetTimeout, err := parseDuration("DATASET_TIMEOUT", "60s", false)
	if err != nil {
		return nil, err
	}

	predictorTimeout, err := parseDuration("PREDICTOR_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("PREDICTOR_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	rateLimit, err := parseRateLimit()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatasetPath:            sharedcfg.EnvOrDefault("DATASET_PATH", "data/ibtracs_dataset.csv"),
		DatasetURL:             os.Getenv("DATASET_URL"),
		DatasetTimeout:         datasetTimeout,
		DatasetRefreshInterval: refreshInterval,

		PredictorURL:       sharedcfg.EnvOrDefault("PREDICTOR_URL", "http://localhost:5000/predict"),
		PredictorTimeout:   predictorTimeout,
		PredictorCacheSize: cacheSize,
		PredictorRateLimit: rateLimit,

		KafkaEnabled:         kafkaEnabled,
		KafkaBrokers:         brokers,
		KafkaPredictionTopic: sharedcfg.EnvOrDefault("KAFKA_PREDICTION_TOPIC", "storm-predictions"),
	}

	if cfg.DatasetURL == "" && cfg.DatasetPath == "" {
		return nil, errors.New("DATASET_PATH or DATASET_URL is required")
	}
	if cfg.DatasetURL != "" {
		if err := validateURL(cfg.DatasetURL); err != nil {
			return nil, fmt.Errorf("invalid DATASET_URL: %w", err)
		}
	}
	if err := validateURL(cfg.PredictorURL); err != nil {
		return nil, fmt.Errorf("invalid PREDICTOR_URL: %w", err)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaPredictionTopic == "" {
		return nil, errors.New("KAFKA_PREDICTION_TOPIC is required")
	}

	return cfg, nil
}

// parseDuration reads a positive duration. When allowZero is set, "0"
// disables the feature the duration controls.
func parseDuration(key, fallback string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseRateLimit() (float64, error) {
	s := sharedcfg.EnvOrDefault("PREDICTOR_RATE_LIMIT", "5")
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r <= 0 {
		return 0, errors.New("invalid PREDICTOR_RATE_LIMIT")
	}
	return r, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
