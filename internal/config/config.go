package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Study    StudyConfig    `mapstructure:"study" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
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

// AuthConfig contains all authentication and authorization settings.
// Tokens are issued by the external identity service; this service only
// verifies them.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// StudyConfig tunes due-card selection and review handling.
type StudyConfig struct {
	// NewCardShare is the fraction of a selection batch reserved for
	// never-seen cards (0 disables new-card introduction).
	NewCardShare float64 `mapstructure:"new_card_share" validate:"gte=0,lte=1"`

	// NewPerDueRatio interleaves one new card after this many due cards.
	NewPerDueRatio int `mapstructure:"new_per_due_ratio" validate:"required,gt=0"`

	// ReviewDebounceSeconds treats a repeat review of the same card inside
	// this window as a duplicate submission and replays the prior result.
	ReviewDebounceSeconds int `mapstructure:"review_debounce_seconds" validate:"gte=0"`

	// DefaultSelectionLimit caps getDueCards when the caller does not
	// specify a limit.
	DefaultSelectionLimit int `mapstructure:"default_selection_limit" validate:"required,gt=0"`
}

// TaskConfig tunes the background task runner used for deferred mastery
// recomputation.
type TaskConfig struct {
	WorkerCount  int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize    int `mapstructure:"queue_size" validate:"required,gt=0"`
	MaxRetries   int `mapstructure:"max_retries" validate:"gte=0"`
	BaseDelayMS  int `mapstructure:"base_delay_ms" validate:"required,gt=0"`
	StuckTaskMin int `mapstructure:"stuck_task_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings. The API key is
// optional; without it the card drafting endpoint is disabled.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"`
}
