package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds server configuration.
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// Backend selects the document store: "firestore", "sqlite" or "memory".
	Backend          string `yaml:"backend"`
	FirestoreProject string `yaml:"firestore_project"`
	SQLitePath       string `yaml:"sqlite_path"`

	// RedisAddr enables the Redis rate limiter when set; empty falls back
	// to the in-process limiter.
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// RateLimitRPM is the per-actor request budget for write endpoints.
	RateLimitRPM int `yaml:"rate_limit_rpm"`

	// PageSize is the feed page size.
	PageSize int `yaml:"page_size"`

	CORSOrigins []string `yaml:"cors_origins"`

	OTLPEndpoint     string `yaml:"otlp_endpoint"`
	TelemetryEnabled bool   `yaml:"telemetry_enabled"`
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		Port:             getenv("PORT", "8080"),
		LogLevel:         getenv("LOG_LEVEL", "INFO"),
		Backend:          getenv("STORE_BACKEND", "memory"),
		FirestoreProject: os.Getenv("FIRESTORE_PROJECT"),
		SQLitePath:       getenv("SQLITE_PATH", "clix.db"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getenvInt("REDIS_DB", 0),
		RateLimitRPM:     getenvInt("RATE_LIMIT_RPM", 120),
		PageSize:         getenvInt("PAGE_SIZE", 9),
		OTLPEndpoint:     getenv("OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: os.Getenv("TELEMETRY_ENABLED") == "true",
	}
	return cfg
}

// LoadFile loads a YAML deployment file and overlays it on the env config.
// Env vars win over file values for the fields both provide.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}

	env := Load()
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	} else if cfg.Port == "" {
		cfg.Port = env.Port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	} else if cfg.LogLevel == "" {
		cfg.LogLevel = env.LogLevel
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.Backend = v
	} else if cfg.Backend == "" {
		cfg.Backend = env.Backend
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = env.SQLitePath
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = env.PageSize
	}
	if cfg.RateLimitRPM == 0 {
		cfg.RateLimitRPM = env.RateLimitRPM
	}
	if cfg.OTLPEndpoint == "" {
		cfg.OTLPEndpoint = env.OTLPEndpoint
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Backend {
	case "firestore":
		if c.FirestoreProject == "" {
			return fmt.Errorf("firestore backend requires FIRESTORE_PROJECT")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite backend requires a database path")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store backend %q", c.Backend)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
