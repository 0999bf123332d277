package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, "templates.events", cfg.KafkaTopic)
	assert.Equal(t, 64, cfg.EventBuffer)
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "/tmp/templates.db")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("BASE_URL", "https://devmarkt.example/")
	t.Setenv("EVENT_BUFFER", "8")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "/tmp/templates.db", cfg.DatabaseURL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "https://devmarkt.example", cfg.BaseURL)
	assert.Equal(t, 8, cfg.EventBuffer)
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := Load()

	assert.ErrorContains(t, err, "unsupported DATABASE_DRIVER")
}

func TestLoad_InvalidBuffer(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("EVENT_BUFFER", "0")

	_, err := Load()

	assert.ErrorContains(t, err, "EVENT_BUFFER")
}
