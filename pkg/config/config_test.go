package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "Europe/Berlin", cfg.Availability.Timezone)
	assert.Equal(t, 30*time.Minute, cfg.Availability.CombineTolerance)
	assert.Equal(t, time.Minute, cfg.Availability.CacheTTL)
	assert.Equal(t, 3*time.Second, cfg.Calendar.FetchTimeout)
	assert.Equal(t, 8, cfg.Calendar.Concurrency)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, 1, cfg.Jobs.Workers)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AVAILABILITY_TIMEZONE", "America/New_York")
	t.Setenv("AVAILABILITY_CACHE_TTL", "not-a-duration")
	t.Setenv("CALENDAR_FETCH_TIMEOUT", "750ms")
	t.Setenv("ALLOWED_ORIGINS", "https://book.example.com, ,https://admin.example.com")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", cfg.Availability.Timezone)
	assert.Equal(t, time.Minute, cfg.Availability.CacheTTL, "invalid durations fall back")
	assert.Equal(t, 750*time.Millisecond, cfg.Calendar.FetchTimeout)
	assert.Equal(t, []string{"https://book.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 0.001)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
