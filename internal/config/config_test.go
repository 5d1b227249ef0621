package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DB_DSN", "postgres://localhost/skillhub")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("JWT_EXPIRES_MIN", "")
		t.Setenv("REDIS_DB", "")

		cfg := Load()
		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, 10080, cfg.JWTExpiresMin)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, "./uploads", cfg.UploadDir)
		assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
		assert.False(t, cfg.UseSupabase())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DB_DSN", "postgres://localhost/skillhub")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("JWT_EXPIRES_MIN", "60")
		t.Setenv("WORKER_COUNT", "not-a-number")
		t.Setenv("APP_BASE_URL", "https://api.example.com/")
		t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
		t.Setenv("SUPABASE_SERVICE_KEY", "key")

		cfg := Load()
		assert.Equal(t, 60, cfg.JWTExpiresMin)
		assert.Equal(t, 4, cfg.WorkerCount)
		assert.Equal(t, "https://api.example.com", cfg.AppBaseURL)
		assert.Equal(t, "https://abc.supabase.co", cfg.SupabaseURL)
		assert.True(t, cfg.UseSupabase())
	})

	t.Run("missing required", func(t *testing.T) {
		t.Setenv("DB_DSN", "")
		t.Setenv("JWT_SECRET", "secret")
		assert.PanicsWithValue(t, "missing env: DB_DSN", func() { Load() })
	})
}

func TestNewLogger(t *testing.T) {
	log := NewLogger("debug")
	require.NotNil(t, log)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = NewLogger("nonsense")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
