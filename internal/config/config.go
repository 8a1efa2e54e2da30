package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/brightline/growth-engine/internal/experiment"
	"github.com/brightline/growth-engine/internal/leadscore"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig            `yaml:"server"`
	Database    DatabaseConfig          `yaml:"database"`
	Redis       RedisConfig             `yaml:"redis"`
	Sink        SinkConfig              `yaml:"sink"`
	Scoring     ScoringConfig           `yaml:"scoring"`
	Experiments []experiment.Experiment `yaml:"experiments"`
}

// ServerConfig holds the collector HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds the Postgres event log connection settings.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds the assignment/profile store connection settings.
// When Addr is empty the in-memory store is used instead.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SinkConfig holds the outbound event dispatcher settings.
type SinkConfig struct {
	Endpoint             string   `yaml:"endpoint"`
	FlushIntervalSeconds int      `yaml:"flush_interval_seconds"`
	BatchSize            int      `yaml:"batch_size"`
	MaxQueue             int      `yaml:"max_queue"`
	CriticalTypes        []string `yaml:"critical_types"`
	MaxRetries           int      `yaml:"max_retries"`
}

// ScoringConfig holds lead scoring weights and tier thresholds.
// Zero values fall back to the package defaults.
type ScoringConfig struct {
	Weights leadscore.Weights `yaml:"weights"`
	Tiers   leadscore.Tiers   `yaml:"tiers"`
}

// Load reads the YAML file at path and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Sink.FlushIntervalSeconds == 0 {
		cfg.Sink.FlushIntervalSeconds = 10
	}
	if cfg.Sink.BatchSize == 0 {
		cfg.Sink.BatchSize = 20
	}
	if cfg.Sink.MaxQueue == 0 {
		cfg.Sink.MaxQueue = 500
	}
	if cfg.Sink.MaxRetries == 0 {
		cfg.Sink.MaxRetries = 3
	}
	if len(cfg.Sink.CriticalTypes) == 0 {
		cfg.Sink.CriticalTypes = []string{
			"contact_form", "phone_call", "meeting_scheduled",
		}
	}

	var zeroWeights leadscore.Weights
	if cfg.Scoring.Weights == zeroWeights {
		cfg.Scoring.Weights = leadscore.DefaultWeights()
	}
	var zeroTiers leadscore.Tiers
	if cfg.Scoring.Tiers == zeroTiers {
		cfg.Scoring.Tiers = leadscore.DefaultTiers()
	}

	return &cfg, nil
}

// LoadFromEnv loads the YAML file, then overrides fields from environment
// variables. A .env file is loaded first when present.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = n
		}
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if endpoint := os.Getenv("SINK_ENDPOINT"); endpoint != "" {
		cfg.Sink.Endpoint = endpoint
	}

	return cfg, nil
}
