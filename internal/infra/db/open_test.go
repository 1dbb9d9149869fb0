package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOpenRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	database, err := Open()
	assert.Nil(t, database)
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestPoolConfigDefaults(t *testing.T) {
	cfg := poolConfigFromEnv()
	assert.Equal(t, DefaultPoolConfig(), cfg)
}

func TestPoolConfigFromEnv(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "40")
	t.Setenv("DB_MAX_IDLE_CONNS", "8")
	t.Setenv("DB_CONN_MAX_LIFETIME", "2h")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "10m")

	cfg := poolConfigFromEnv()
	assert.Equal(t, 40, cfg.MaxOpenConns)
	assert.Equal(t, 8, cfg.MaxIdleConns)
	assert.Equal(t, 2*time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 10*time.Minute, cfg.ConnMaxIdleTime)
}

func TestPoolConfigIgnoresNonPositiveValues(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "0")
	t.Setenv("DB_CONN_MAX_LIFETIME", "-1h")

	cfg := poolConfigFromEnv()
	assert.Equal(t, DefaultPoolConfig().MaxOpenConns, cfg.MaxOpenConns)
	assert.Equal(t, DefaultPoolConfig().ConnMaxLifetime, cfg.ConnMaxLifetime)
}

func TestPoolConfigIgnoresGarbage(t *testing.T) {
	t.Setenv("DB_MAX_IDLE_CONNS", "lots")

	cfg := poolConfigFromEnv()
	assert.Equal(t, DefaultPoolConfig().MaxIdleConns, cfg.MaxIdleConns)
}
