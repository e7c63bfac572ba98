package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3001", cfg.HTTPAddr)
	assert.False(t, cfg.Postgres.Enabled())
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "match.events", cfg.AMQP.Exchange)
	assert.Equal(t, 60.0, cfg.Simulation.TimeMultiplier)
	assert.Equal(t, 90.0, cfg.Simulation.MaxDuration)
	assert.Equal(t, 256, cfg.WebSocket.SendQueue)
	assert.Equal(t, 60*time.Second, cfg.WebSocket.ReadTimeout)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_USER", "live")
	t.Setenv("PG_DATABASE", "matches")
	t.Setenv("SIM_TIME_MULTIPLIER", "600")
	t.Setenv("AMQP_INCLUDE_TICKS", "true")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.True(t, cfg.Postgres.Enabled())
	assert.Contains(t, cfg.Postgres.DSN(), "host=db port=5432 user=live")
	assert.Contains(t, cfg.Postgres.DSN(), "dbname=matches")
	assert.Equal(t, 600.0, cfg.Simulation.TimeMultiplier)
	assert.True(t, cfg.AMQP.IncludeTicks)
}

func TestLoad_RejectsNonPositiveMultiplier(t *testing.T) {
	t.Setenv("SIM_TIME_MULTIPLIER", "0")
	_, err := Load(context.Background())
	assert.Error(t, err)
}

func TestLoad_RejectsTinyMultiplier(t *testing.T) {
	t.Setenv("SIM_TIME_MULTIPLIER", "0.000000000001")
	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "SIM_TIME_MULTIPLIER")
}
