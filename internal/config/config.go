package config

import (
	"os"
	"strconv"
	"strings"
)

// PostgresConfig holds PostgreSQL connection and pool settings.
// Pool bounds are static for the process lifetime.
type PostgresConfig struct {
	Host              string
	Port              string
	User              string
	Password          string
	Name              string
	SSLMode           string
	URL               string
	MaxOpenConns      int
	MaxIdleConns      int
	IdleTimeoutSec    int
	ConnectTimeoutSec int
}

// Neo4jConfig holds graph database settings.
type Neo4jConfig struct {
	URI                   string
	User                  string
	Password              string
	Database              string
	MaxPoolSize           int
	AcquisitionTimeoutSec int
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded outside local defaults.
type AppConfig struct {
	Env      string
	Port     string
	Postgres PostgresConfig
	Neo4j    Neo4jConfig
	Log      LogConfig
}

// IsProduction reports whether APP_ENV selects production mode.
func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence over the .env file.
func Load() *AppConfig {
	return &AppConfig{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "3000"),
		Postgres: PostgresConfig{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              getEnv("POSTGRES_PORT", "5432"),
			User:              getEnv("POSTGRES_USER", "postgres"),
			Password:          getEnv("POSTGRES_PASSWORD", "postgres"),
			Name:              getEnv("POSTGRES_DB", "minga"),
			SSLMode:           getEnv("POSTGRES_SSLMODE", "disable"),
			URL:               getEnv("DATABASE_URL", ""),
			MaxOpenConns:      getEnvInt("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns:      getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			IdleTimeoutSec:    getEnvInt("POSTGRES_IDLE_TIMEOUT_SEC", 30),
			ConnectTimeoutSec: getEnvInt("POSTGRES_CONNECT_TIMEOUT_SEC", 2),
		},
		Neo4j: Neo4jConfig{
			URI:                   getEnv("NEO4J_URI", "bolt://localhost:7687"),
			User:                  getEnv("NEO4J_USER", "neo4j"),
			Password:              getEnv("NEO4J_PASSWORD", "password"),
			Database:              getEnv("NEO4J_DATABASE", ""),
			MaxPoolSize:           getEnvInt("NEO4J_MAX_POOL_SIZE", 50),
			AcquisitionTimeoutSec: getEnvInt("NEO4J_ACQUISITION_TIMEOUT_SEC", 2),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getEnvInt falls back to def for unparsable or non-positive values.
func getEnvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil && i > 0 {
			return i
		}
	}
	return def
}
