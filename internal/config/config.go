// Package config loads neoview settings.
//
// Precedence (highest to lowest):
//  1. Environment variables (NEO4J_*, NEOVIEW_*), including those loaded from .env
//  2. Config file (YAML)
//  3. Built-in defaults
//
// Environment variables:
//   - NEO4J_URI="bolt://localhost:7687"
//   - NEO4J_USER="neo4j"
//   - NEO4J_PASSWORD="password"
//   - NEO4J_DATABASE="neo4j"
//   - NEOVIEW_QUERY_TIMEOUT_MS=5000
//   - NEOVIEW_QUERY_HARD_LIMIT=200
//   - NEOVIEW_SYMBOL_SIZE=30
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every neoview setting.
type Config struct {
	Neo4j Neo4jConfig `yaml:"neo4j"`
	Query QueryConfig `yaml:"query"`
	Graph GraphConfig `yaml:"graph"`
}

// Neo4jConfig describes the database connection.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// QueryConfig bounds query execution.
type QueryConfig struct {
	TimeoutMS int `yaml:"timeout_ms"`
	// HardLimit is the default row limit for generated lookups.
	HardLimit int `yaml:"hard_limit"`
}

// GraphConfig tunes the graph projection.
type GraphConfig struct {
	SymbolSize float64 `yaml:"symbol_size"`
}

// Timeout returns the query timeout as a duration.
func (q QueryConfig) Timeout() time.Duration {
	return time.Duration(q.TimeoutMS) * time.Millisecond
}

// LoadDefaults returns the built-in defaults.
func LoadDefaults() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:7687",
			User:     "neo4j",
			Password: "password",
			Database: "neo4j",
		},
		Query: QueryConfig{
			TimeoutMS: 5000,
			HardLimit: 200,
		},
		Graph: GraphConfig{
			SymbolSize: 30,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path and the environment.
// An empty path or a missing file is not an error.
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := LoadDefaults()

	// 2. Load YAML config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 3. Override with environment variables if present
	ApplyEnvVars(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvVars overrides cfg with any set environment variables.
func ApplyEnvVars(cfg *Config) {
	cfg.Neo4j.URI = getEnv("NEO4J_URI", cfg.Neo4j.URI)
	cfg.Neo4j.User = getEnv("NEO4J_USER", cfg.Neo4j.User)
	cfg.Neo4j.Password = getEnv("NEO4J_PASSWORD", cfg.Neo4j.Password)
	cfg.Neo4j.Database = getEnv("NEO4J_DATABASE", cfg.Neo4j.Database)
	cfg.Query.TimeoutMS = getEnvInt("NEOVIEW_QUERY_TIMEOUT_MS", cfg.Query.TimeoutMS)
	cfg.Query.HardLimit = getEnvInt("NEOVIEW_QUERY_HARD_LIMIT", cfg.Query.HardLimit)
	cfg.Graph.SymbolSize = getEnvFloat("NEOVIEW_SYMBOL_SIZE", cfg.Graph.SymbolSize)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Neo4j.URI == "" {
		return fmt.Errorf("%w: neo4j uri is required", ErrInvalidConfig)
	}
	if c.Query.TimeoutMS <= 0 {
		return fmt.Errorf("%w: query timeout must be positive, got %d", ErrInvalidConfig, c.Query.TimeoutMS)
	}
	if c.Query.HardLimit < 0 {
		return fmt.Errorf("%w: query hard limit must not be negative, got %d", ErrInvalidConfig, c.Query.HardLimit)
	}
	if c.Graph.SymbolSize <= 0 {
		return fmt.Errorf("%w: symbol size must be positive, got %v", ErrInvalidConfig, c.Graph.SymbolSize)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
