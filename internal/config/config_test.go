package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("NODE_ENV", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Auth.StrictBearer)
	assert.Equal(t, "memory", cfg.Auth.RevocationBackend)
	assert.Equal(t, devJWTSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins())
	assert.Nil(t, cfg.KafkaBrokers())
}

func TestParse_FromEnv(t *testing.T) {
	t.Setenv("PORT", "4001")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("AUTH_STRICT_BEARER", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 4001, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "s3cr3t", cfg.Auth.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.StrictBearer)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Port: 3000,
			Env:  "development",
			Auth: AuthConfig{TokenTTL: time.Hour, RevocationBackend: "memory"},
			Database: DBConfig{Driver: "pgx"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "dev without secret", mutate: func(c *Config) {}},
		{name: "production without secret", mutate: func(c *Config) { c.Env = "production" }, wantErr: "JWT_SECRET"},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.TokenTTL = 0 }, wantErr: "TOKEN_TTL"},
		{name: "redis without addr", mutate: func(c *Config) { c.Auth.RevocationBackend = "redis" }, wantErr: "REDIS_ADDR"},
		{name: "db without url", mutate: func(c *Config) { c.Auth.RevocationBackend = "db" }, wantErr: "DATABASE_URL"},
		{name: "unknown backend", mutate: func(c *Config) { c.Auth.RevocationBackend = "file" }, wantErr: "REVOCATION_BACKEND"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "DB_DRIVER"},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "PORT"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a", "b"}, CSV(" a ,, b "))
}
