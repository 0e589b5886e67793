package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", ":memory:")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STAFF_TOKEN_TTL", "")
	t.Setenv("CLIENT_TOKEN_TTL", "")
	t.Setenv("ORDER_TRANSITION_POLICY", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.StaffTokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.ClientTokenTTL)
	assert.Equal(t, "open", cfg.TransitionPolicy)
	assert.Equal(t, "open", cfg.Policy().Name())
	assert.NotEmpty(t, cfg.JWTSecret, "Non-production environments get a development secret")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsTest())
	assert.False(t, cfg.StorageEnabled())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", ":memory:")
	t.Setenv("STAFF_TOKEN_TTL", "one day")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabaseURL:      "postgres://localhost/db",
			DBDriver:         DriverPostgres,
			GoEnv:            "development",
			JWTSecret:        "short",
			TransitionPolicy: "strict",
			StaffTokenTTL:    time.Hour,
			ClientTokenTTL:   time.Hour,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL is required"},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, "unsupported DB_DRIVER"},
		{"unknown policy", func(c *Config) { c.TransitionPolicy = "lenient" }, "unknown order transition policy"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret in production", func(c *Config) { c.GoEnv = "production" }, "at least 32 characters"},
		{"zero ttl", func(c *Config) { c.ClientTokenTTL = 0 }, "TTLs must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSetGetConfig(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	cfg := &Config{GoEnv: "test"}
	SetConfig(cfg)
	assert.Same(t, cfg, GetConfig())
}
