package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agroclima/agromet-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	AgrometBaseURL string
	AgrometTimeout time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	WatchInterval   time.Duration
	CatalogCacheTTL time.Duration
	ExportDir       string

	// Station selection. Region and StationNames are OR'd: the target set is
	// the union of both predicates, deduplicated by station ID.
	Region       *domain.BoundingBox
	StationNames []string

	// Kafka publishing configuration.
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	agrometTimeout, err := parsePositiveDuration("AGROMET_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	watchInterval, err := parsePositiveDuration("WATCH_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("CATALOG_CACHE_TTL", "6h")
	if err != nil {
		return nil, err
	}

	region, err := parseRegion()
	if err != nil {
		return nil, err
	}

	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		AgrometBaseURL:  envOrDefault("AGROMET_BASE_URL", "https://api.agrometeorologia.cl"),
		AgrometTimeout:  agrometTimeout,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		WatchInterval:   watchInterval,
		CatalogCacheTTL: cacheTTL,
		ExportDir:       envOrDefault("EXPORT_DIR", "data/out"),
		Region:          region,
		StationNames:    splitList(os.Getenv("STATION_NAMES")),
		KafkaBrokers:    splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  envOrDefault("KAFKA_SINK_TOPIC", "agromet-observations"),
		KafkaEnabled:    kafkaEnabled,
	}

	if cfg.AgrometBaseURL == "" {
		return nil, errors.New("AGROMET_BASE_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
	}

	return cfg, nil
}

// parseRegion reads the four REGION_* bounds. All four must be set together;
// none set means no bounding-box predicate.
func parseRegion() (*domain.BoundingBox, error) {
	keys := []string{"REGION_WEST", "REGION_EAST", "REGION_SOUTH", "REGION_NORTH"}
	values := make([]float64, len(keys))
	set := 0
	for i, key := range keys {
		raw := os.Getenv(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q", key, raw)
		}
		values[i] = v
		set++
	}

	switch set {
	case 0:
		return nil, nil
	case len(keys):
		box := &domain.BoundingBox{West: values[0], East: values[1], South: values[2], North: values[3]}
		if box.West > box.East {
			return nil, errors.New("REGION_WEST must not exceed REGION_EAST")
		}
		if box.South > box.North {
			return nil, errors.New("REGION_SOUTH must not exceed REGION_NORTH")
		}
		return box, nil
	default:
		return nil, errors.New("REGION_WEST, REGION_EAST, REGION_SOUTH and REGION_NORTH must be set together")
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

// splitList splits a comma-separated value, trimming whitespace and dropping
// empty items.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
