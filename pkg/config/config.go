// Package config loads the engine's configuration surface from
// config.yaml with environment variable overrides, using cleanenv's
// layered struct-tag approach.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the reconciliation engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values for
// fields that support both. Secrets (DB passwords) must only come from
// environment variables.
type Config struct {
	// LLM configuration. LLMEnabled=false routes every LLM-assisted
	// component to its deterministic fallback.
	LLMEnabled     bool    `yaml:"llm_enabled" env:"LLM_ENABLED" env-default:"true"`
	LLMEndpoint    string  `yaml:"llm_endpoint" env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`
	LLMModel       string  `yaml:"llm_model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	LLMTemperature float64 `yaml:"llm_temperature" env:"LLM_TEMPERATURE" env-default:"0.1"`
	LLMMaxTokens   int     `yaml:"llm_max_tokens" env:"LLM_MAX_TOKENS" env-default:"2048"`
	LLMAPIKey      string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML

	// UseEnvDBConfigs: when true, source/target DB configs below are used
	// and callers may omit connection details from requests.
	UseEnvDBConfigs bool `yaml:"use_env_db_configs" env:"USE_ENV_DB_CONFIGS" env-default:"false"`

	SourceDB DBConfig `yaml:"source_db"`
	TargetDB DBConfig `yaml:"target_db"`

	// ResultStorageDir overrides the default "results/" directory.
	ResultStorageDir string `yaml:"result_storage_dir" env:"RESULT_STORAGE_DIR" env-default:"results"`

	// StorageRoot is the application root under which schemas/, kg_storage/,
	// data/, kpi_configs/, kpi_results/, kpi_evidence/ live.
	StorageRoot string `yaml:"storage_root" env:"STORAGE_ROOT" env-default:"."`

	// WorkerPoolSize is the configured per-request parallelism; no command
	// reads it.
	WorkerPoolSize int `yaml:"worker_pool_size" env:"WORKER_POOL_SIZE" env-default:"4"`

	// Version is set at load time from the build, not from config.
	Version string `yaml:"-"`
}

// DBConfig holds one side (source or target) of a reconciliation
// connection. Field names mirror the SOURCE_DB_*/TARGET_DB_* env keys
// with the prefix supplied by the caller at Load time.
type DBConfig struct {
	Type        string `yaml:"type"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	Username    string `yaml:"username"`
	Password    string `yaml:"-"`                      // Secret - not in YAML
	ServiceName string `yaml:"service_name,omitempty"` // Oracle TNS service name
}

// Dialect database type identifiers accepted as SOURCE_DB_TYPE/TARGET_DB_TYPE.
const (
	DialectMySQL      = "mysql"
	DialectPostgreSQL = "postgresql"
	DialectSQLServer  = "sqlserver"
	DialectOracle     = "oracle"
)

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on
// the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.loadDBConfigsFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load db configs: %w", err)
	}

	return cfg, nil
}

// loadDBConfigsFromEnv populates SourceDB/TargetDB from SOURCE_DB_*/
// TARGET_DB_* environment variables when UseEnvDBConfigs is set.
// cleanenv has no notion of "read this struct twice under two env
// prefixes," so the prefixed read is done by hand here, the one place in
// this config surface that falls back to raw env lookups rather than
// struct tags.
func (c *Config) loadDBConfigsFromEnv() error {
	if !c.UseEnvDBConfigs {
		return nil
	}
	c.SourceDB = readDBConfigFromEnv("SOURCE_DB")
	c.TargetDB = readDBConfigFromEnv("TARGET_DB")
	return nil
}
