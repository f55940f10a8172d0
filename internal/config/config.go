package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// DefaultSheetID is the published spreadsheet holding the pollution sites.
const DefaultSheetID = "18z15WmDqTfmiZggT-zCTraNS5ze-6nqgN3EgfgnCG4s"

// Config holds all service settings, populated from environment variables.
type Config struct {
	SheetID         string
	FeedBaseURL     string
	FeedTimeout     time.Duration
	FeedCacheTTL    time.Duration
	FeedRateLimit   float64
	RefreshInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Snapshot publishing.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaSitesTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory, when present, seeds variables that are not
// already set.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := parsePositiveDuration("FEED_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parsePositiveDuration("FEED_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("REFRESH_INTERVAL", "1h"))
	if err != nil || refreshInterval < 0 {
		return nil, errors.New("invalid REFRESH_INTERVAL")
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("FEED_RATE_LIMIT", "1"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid FEED_RATE_LIMIT: must be a positive number")
	}

	kafkaEnabled, err := strconv.ParseBool(sharedcfg.EnvOrDefault("KAFKA_ENABLED", "false"))
	if err != nil {
		return nil, errors.New("invalid KAFKA_ENABLED")
	}

	cfg := &Config{
		SheetID:         sharedcfg.EnvOrDefault("SHEET_ID", DefaultSheetID),
		FeedBaseURL:     sharedcfg.EnvOrDefault("FEED_BASE_URL", "https://docs.google.com/spreadsheets/d"),
		FeedTimeout:     feedTimeout,
		FeedCacheTTL:    cacheTTL,
		FeedRateLimit:   rateLimit,
		RefreshInterval: refreshInterval,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSitesTopic: sharedcfg.EnvOrDefault("KAFKA_SITES_TOPIC", "pollution-sites"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSitesTopic == "" {
			return nil, errors.New("KAFKA_SITES_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}
