package config

import (
	"testing"
	"time"

	"github.com/agroclima/agromet-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.agrometeorologia.cl", cfg.AgrometBaseURL)
	assert.Equal(t, 10*time.Second, cfg.AgrometTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Hour, cfg.WatchInterval)
	assert.Equal(t, 6*time.Hour, cfg.CatalogCacheTTL)
	assert.Equal(t, "data/out", cfg.ExportDir)
	assert.Nil(t, cfg.Region)
	assert.Empty(t, cfg.StationNames)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "agromet-observations", cfg.KafkaSinkTopic)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("AGROMET_BASE_URL", "http://localhost:9099")
	t.Setenv("AGROMET_TIMEOUT", "3s")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("WATCH_INTERVAL", "15m")
	t.Setenv("CATALOG_CACHE_TTL", "2h")
	t.Setenv("EXPORT_DIR", "/tmp/agromet")
	t.Setenv("REGION_WEST", "-71.0")
	t.Setenv("REGION_EAST", "-70.0")
	t.Setenv("REGION_SOUTH", "-34.0")
	t.Setenv("REGION_NORTH", "-33.0")
	t.Setenv("STATION_NAMES", "La Platina, Los Tilos ,")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9099", cfg.AgrometBaseURL)
	assert.Equal(t, 3*time.Second, cfg.AgrometTimeout)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15*time.Minute, cfg.WatchInterval)
	assert.Equal(t, 2*time.Hour, cfg.CatalogCacheTTL)
	assert.Equal(t, "/tmp/agromet", cfg.ExportDir)
	require.NotNil(t, cfg.Region)
	assert.Equal(t, domain.BoundingBox{West: -71.0, East: -70.0, South: -34.0, North: -33.0}, *cfg.Region)
	assert.Equal(t, []string{"La Platina", "Los Tilos"}, cfg.StationNames)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("AGROMET_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AGROMET_TIMEOUT")
}

func TestLoad_NegativeWatchInterval(t *testing.T) {
	t.Setenv("WATCH_INTERVAL", "-1m")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WATCH_INTERVAL")
}

func TestLoad_PartialRegion(t *testing.T) {
	t.Setenv("REGION_WEST", "-71.0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be set together")
}

func TestLoad_InvertedRegion(t *testing.T) {
	t.Setenv("REGION_WEST", "-70.0")
	t.Setenv("REGION_EAST", "-71.0")
	t.Setenv("REGION_SOUTH", "-34.0")
	t.Setenv("REGION_NORTH", "-33.0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REGION_WEST")
}

func TestLoad_InvalidRegionValue(t *testing.T) {
	t.Setenv("REGION_WEST", "west-ish")
	t.Setenv("REGION_EAST", "-70.0")
	t.Setenv("REGION_SOUTH", "-34.0")
	t.Setenv("REGION_NORTH", "-33.0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REGION_WEST")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", ",")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}
