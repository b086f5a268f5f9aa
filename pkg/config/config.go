package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for helm-search.
// Values come from config.yaml with environment variable overrides;
// secrets (PGPASSWORD, AI_API_KEY) must come from the environment only.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8084"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Ranking  RankingConfig  `yaml:"ranking"`

	// CapabilityDefinitionsPath optionally points at a YAML file that
	// overrides the compiled-in capability registry.
	CapabilityDefinitionsPath string `yaml:"capability_definitions_path" env:"CAPABILITY_DEFINITIONS_PATH" env-default:""`
}

// DatabaseConfig holds PostgreSQL settings for the tenant data store.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"helmsearch"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"vessel_maintenance"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// AIConfig holds settings for the optional AI fallback extractor.
type AIConfig struct {
	Endpoint string        `yaml:"endpoint" env:"AI_ENDPOINT" env-default:""`
	Model    string        `yaml:"model" env:"AI_MODEL" env-default:""`
	APIKey   string        `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
	Timeout  time.Duration `yaml:"timeout" env:"AI_TIMEOUT" env-default:"6s"`
}

// IsAvailable returns true if the AI fallback extractor is configured.
func (c *AIConfig) IsAvailable() bool {
	return c.Endpoint != "" && c.Model != ""
}

// PipelineConfig bounds per-stage work in the search pipeline.
type PipelineConfig struct {
	// StageDeadline caps each pipeline stage's wall-clock time.
	StageDeadline time.Duration `yaml:"stage_deadline" env:"PIPELINE_STAGE_DEADLINE" env-default:"10s"`
	// MaxConcurrentPlans bounds parallel capability execution.
	MaxConcurrentPlans int `yaml:"max_concurrent_plans" env:"PIPELINE_MAX_CONCURRENT_PLANS" env-default:"4"`
	// DefaultLimit is the per-capability row limit when the caller does not set one.
	DefaultLimit int `yaml:"default_limit" env:"PIPELINE_DEFAULT_LIMIT" env-default:"20"`
}

// RankingConfig controls result diversification.
type RankingConfig struct {
	// MaxPerTable caps results from a single source table.
	MaxPerTable int `yaml:"max_per_table" env:"RANKING_MAX_PER_TABLE" env-default:"5"`
	// MaxPerParent caps child rows sharing one parent grouping key.
	MaxPerParent int `yaml:"max_per_parent" env:"RANKING_MAX_PER_PARENT" env-default:"2"`
	// MaxResults truncates the final ranked list.
	MaxResults int `yaml:"max_results" env:"RANKING_MAX_RESULTS" env-default:"25"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Pipeline.MaxConcurrentPlans < 1 {
		return fmt.Errorf("pipeline.max_concurrent_plans must be at least 1, got %d", c.Pipeline.MaxConcurrentPlans)
	}
	if c.Ranking.MaxPerTable < 1 {
		return fmt.Errorf("ranking.max_per_table must be at least 1, got %d", c.Ranking.MaxPerTable)
	}
	if c.Ranking.MaxPerParent < 1 {
		return fmt.Errorf("ranking.max_per_parent must be at least 1, got %d", c.Ranking.MaxPerParent)
	}
	return nil
}
