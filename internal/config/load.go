package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix shared by every environment variable the
// application reads, e.g. FORGE_SERVER_PORT.
const EnvPrefix = "FORGE"

// defaults lists every known key with its default value. Keys without a
// sensible default are registered with a zero value so that viper binds
// the corresponding environment variable.
var defaults = map[string]any{
	"server.port":                     8080,
	"server.log_level":                "info",
	"database.url":                    "",
	"auth.jwt_secret":                 "",
	"auth.token_lifetime_minutes":     60,
	"llm.provider":                    "groq",
	"llm.groq_api_key":                "",
	"llm.groq_base_url":               "https://api.groq.com/openai/v1",
	"llm.gemini_api_key":              "",
	"llm.model_name":                  "mistral-saba-24b",
	"llm.temperature":                 0.1,
	"llm.max_tokens":                  4000,
	"llm.max_retries":                 3,
	"llm.retry_delay_seconds":         2,
	"llm.requests_per_second":         0.5,
	"task.worker_count":               2,
	"task.queue_size":                 100,
	"task.stuck_task_age_minutes":     30,
	"pipeline.workspace_dir":          "workspace",
	"pipeline.project_name":           "generated_api",
	"pipeline.provision_database":     false,
	"pipeline.provision_venv":         false,
	"pipeline.python_bin":             "python",
	"pipeline.max_steps":              32,
	"pipeline.generation_concurrency": 4,
	"tracing.store_enabled":           true,
	"tracing.otlp_endpoint":           "",
	"tracing.service_name":            "srsforge",
}

// Load configuration from a .env file, environment variables and optionally
// a config.yaml file. Environment variables take precedence over values from
// config files. Returns a populated Config struct or an error if
// loading/validation fails.
func Load() (*Config, error) {
	cfg, err := LoadUnvalidated()
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnvalidated reads configuration like Load without checking it.
// Commands that need only some sections validate those with ValidateSection.
func LoadUnvalidated() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// ValidateSection checks the struct tags of one configuration group, e.g.
// cfg.LLM.
func ValidateSection(section any) error {
	if err := validator.New().Struct(section); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
