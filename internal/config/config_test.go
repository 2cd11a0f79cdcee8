package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:             "8080",
		Env:              "production",
		DBDriver:         "postgres",
		DBPassword:       "secure-password",
		JWTAccessSecret:  "access-secret-at-least-32-characters-long",
		JWTRefreshSecret: "refresh-secret-at-least-32-characters-long",
		TokenTTLHours:    168,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid Production", func(_ *Config) {}, false},
		{"Missing Port", func(c *Config) { c.Port = "" }, true},
		{"Missing Refresh Secret", func(c *Config) { c.JWTRefreshSecret = "" }, true},
		{"Identical Secrets", func(c *Config) { c.JWTRefreshSecret = c.JWTAccessSecret }, true},
		{"Default Access Secret In Production", func(c *Config) { c.JWTAccessSecret = defaultAccessSecret }, true},
		{"Short Secret In Production", func(c *Config) { c.JWTAccessSecret = "short" }, true},
		{"Short Secret In Development", func(c *Config) { c.Env = "development"; c.JWTAccessSecret = "short" }, false},
		{"Weak DB Password In Production", func(c *Config) { c.DBPassword = "password" }, true},
		{"SQLite Ignores DB Password", func(c *Config) { c.DBDriver = "sqlite"; c.DBPassword = "" }, false},
		{"Unknown Driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"Negative TTL", func(c *Config) { c.TokenTTLHours = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("JWT_ACCESS_SECRET", "env-access-secret-0123456789abcdef")
	t.Setenv("JWT_REFRESH_SECRET", "env-refresh-secret-0123456789abcdef")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "env-access-secret-0123456789abcdef", cfg.JWTAccessSecret)
	assert.Equal(t, "env-refresh-secret-0123456789abcdef", cfg.JWTRefreshSecret)
	assert.Equal(t, 168, cfg.TokenTTLHours)
	assert.Equal(t, "8375", cfg.Port)
	assert.False(t, cfg.IsProduction())
}
