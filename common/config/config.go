package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service configuration
type Config struct {
	Service  ServiceConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Defaults PartyDefaultsConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds snapshot artifact cache settings
type CacheConfig struct {
	Enabled     bool
	Backend     string // "memory" or "redis"
	ArtifactTTL time.Duration
}

// PartyDefaultsConfig carries the default transporter/recipient identity data
// applied when a new lineage is created without them. These are deliberately
// configuration, not values baked into the record defaults.
type PartyDefaultsConfig struct {
	TransporterName          string
	TransporterAuthorization string
	TransportPermit          string
	RecipientName            string
	RecipientAuthorization   string
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("SERVICE_PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "console"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvInt("DB_PORT", 5432),
			Database:    getEnv("DB_NAME", "manifest"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			MaxConns:    getEnvInt("DB_MAX_CONNS", 10),
			MinConns:    getEnvInt("DB_MIN_CONNS", 2),
			MaxIdleTime: getEnvDuration("DB_MAX_IDLE_TIME", 5*time.Minute),
			MaxLifetime: getEnvDuration("DB_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Enabled:     getEnvBool("CACHE_ENABLED", true),
			Backend:     getEnv("CACHE_BACKEND", "memory"),
			ArtifactTTL: getEnvDuration("CACHE_ARTIFACT_TTL", 15*time.Minute),
		},
		Defaults: PartyDefaultsConfig{
			TransporterName:          getEnv("DEFAULT_TRANSPORTER_NAME", ""),
			TransporterAuthorization: getEnv("DEFAULT_TRANSPORTER_AUTHORIZATION", ""),
			TransportPermit:          getEnv("DEFAULT_TRANSPORT_PERMIT", ""),
			RecipientName:            getEnv("DEFAULT_RECIPIENT_NAME", ""),
			RecipientAuthorization:   getEnv("DEFAULT_RECIPIENT_AUTHORIZATION", ""),
		},
	}

	if cfg.Service.Port <= 0 || cfg.Service.Port > 65535 {
		return nil, fmt.Errorf("invalid service port: %d", cfg.Service.Port)
	}

	return cfg, nil
}

// DatabaseURL builds the Postgres connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
	)
}

// RedisAddr builds the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
