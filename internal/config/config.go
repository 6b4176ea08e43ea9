package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains settings for API client authentication.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings.
// Only the API key of the selected provider is required.
type LLMConfig struct {
	Provider          string  `mapstructure:"provider" validate:"required,oneof=groq gemini"`
	GroqAPIKey        string  `mapstructure:"groq_api_key" validate:"required_if=Provider groq"`
	GroqBaseURL       string  `mapstructure:"groq_base_url" validate:"omitempty,url"`
	GeminiAPIKey      string  `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	ModelName         string  `mapstructure:"model_name" validate:"required"`
	Temperature       float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens         int     `mapstructure:"max_tokens" validate:"gte=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize           int `mapstructure:"queue_size" validate:"required,gt=0"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`
}

// PipelineConfig controls where and how generated projects are produced.
type PipelineConfig struct {
	WorkspaceDir          string `mapstructure:"workspace_dir" validate:"required"`
	ProjectName           string `mapstructure:"project_name" validate:"required"`
	ProvisionDatabase     bool   `mapstructure:"provision_database"`
	ProvisionVenv         bool   `mapstructure:"provision_venv"`
	PythonBin             string `mapstructure:"python_bin" validate:"required"`
	MaxSteps              int    `mapstructure:"max_steps" validate:"required,gt=0"`
	GenerationConcurrency int    `mapstructure:"generation_concurrency" validate:"required,gt=0"`
}

// TracingConfig controls where pipeline trace runs are recorded.
type TracingConfig struct {
	StoreEnabled bool   `mapstructure:"store_enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}
