package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetwise/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, time.Hour, cfg.Server.StatusInterval)
	assert.Equal(t, "postgres://postgres:@localhost:5432/budgetwise?sslmode=disable", cfg.ConnectionString())
	assert.False(t, cfg.Remote())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,https://bills.example.com")
	t.Setenv("API_BASE_URL", "http://localhost:9000")
	t.Setenv("STATUS_REFRESH_INTERVAL", "15m")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, []string{"http://localhost:5173", "https://bills.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.Server.StatusInterval)
	assert.True(t, cfg.Remote())

	t.Setenv("DEMO_MODE", "true")

	cfg, err = config.Load()
	require.NoError(t, err)
	assert.False(t, cfg.Remote())
}

func TestLoad_RejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("STATUS_REFRESH_INTERVAL", "0s")

	_, err := config.Load()
	assert.Error(t, err)
}
