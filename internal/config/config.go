package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-only-jwt-secret-change-me"

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"storefront"`
	Port        int    `env:"PORT"         envDefault:"3000"`
	Env         string `env:"NODE_ENV"     envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"`

	Auth     AuthConfig
	Database DBConfig
	Redis    RedisConfig  `envPrefix:"REDIS_"`
	Kafka    KafkaConfig
	Search   SearchConfig `envPrefix:"ES_"`
	HTTP     HTTPConfig

	SeedData bool `env:"SEED_DATA" envDefault:"true"`
}

type AuthConfig struct {
	JWTSecret         string        `env:"JWT_SECRET"`
	TokenTTL          time.Duration `env:"TOKEN_TTL"                 envDefault:"1h"`
	StrictBearer      bool          `env:"AUTH_STRICT_BEARER"        envDefault:"false"`
	RevocationBackend string        `env:"REVOCATION_BACKEND"        envDefault:"memory"`
	RevocationSweep   time.Duration `env:"REVOCATION_SWEEP_INTERVAL" envDefault:"10m"`
}

type DBConfig struct {
	URL    string `env:"DATABASE_URL"`
	Driver string `env:"DB_DRIVER"    envDefault:"pgx"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type KafkaConfig struct {
	Brokers string `env:"KAFKA_BROKERS"`
	Topic   string `env:"KAFKA_TOPIC" envDefault:"storefront_events"`
}

type SearchConfig struct {
	URL      string `env:"URL"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Index    string `env:"INDEX" envDefault:"products"`
}

type HTTPConfig struct {
	CORSOrigins  string  `env:"CORS_ORIGINS"   envDefault:"*"`
	RateLimitRPS float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	BodyLimit    string  `env:"BODY_LIMIT"     envDefault:"10M"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate applies defaults that depend on other fields and rejects
// combinations the server cannot start with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("missing required env JWT_SECRET")
		}
		c.Auth.JWTSecret = devJWTSecret
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}

	switch c.Auth.RevocationBackend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("REVOCATION_BACKEND=redis requires REDIS_ADDR")
		}
	case "db":
		if c.Database.URL == "" {
			return errors.New("REVOCATION_BACKEND=db requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown REVOCATION_BACKEND %q", c.Auth.RevocationBackend)
	}

	switch c.Database.Driver {
	case "pgx", "pq", "sqlite":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) KafkaBrokers() []string {
	return CSV(c.Kafka.Brokers)
}

func (c *Config) CORSOrigins() []string {
	return CSV(c.HTTP.CORSOrigins)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
