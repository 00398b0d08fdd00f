package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"TELEGRAM_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// GenerationConfig holds the reply-generation collaborator settings.
type GenerationConfig struct {
	APIKey  string `yaml:"api_key" envconfig:"OPENAI_API_KEY"`
	BaseURL string `yaml:"base_url" envconfig:"GENERATION_BASE_URL"`
	Model   string `yaml:"model" envconfig:"GENERATION_MODEL"`
	// TimeoutSeconds bounds a single generation call; 0 -> default
	TimeoutSeconds int `yaml:"timeout_seconds" envconfig:"GENERATION_TIMEOUT_SECONDS"`
}

// MediaConfig holds the intent/media-lookup collaborator settings.
type MediaConfig struct {
	ProjectID    string `yaml:"project_id" envconfig:"DIALOGFLOW_PROJECT_ID"`
	Endpoint     string `yaml:"endpoint" envconfig:"DIALOGFLOW_ENDPOINT"`
	SessionID    string `yaml:"session_id" envconfig:"DIALOGFLOW_SESSION_ID"`
	AccessToken  string `yaml:"access_token" envconfig:"DIALOGFLOW_ACCESS_TOKEN"`
	LanguageCode string `yaml:"language_code" envconfig:"DIALOGFLOW_LANGUAGE_CODE"`
	// TimeoutSeconds bounds a single lookup call; 0 -> default
	TimeoutSeconds int `yaml:"timeout_seconds" envconfig:"DIALOGFLOW_TIMEOUT_SECONDS"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates all application configuration.
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Generation GenerationConfig `yaml:"generation"`
	Media      MediaConfig      `yaml:"media"`
	Logging    LoggingConfig    `yaml:"logging"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Generation.APIKey == "" {
		return fmt.Errorf("generation.api_key is required")
	}
	if cfg.Media.ProjectID == "" {
		return fmt.Errorf("media.project_id is required")
	}

	if strings.TrimSpace(cfg.Generation.BaseURL) == "" {
		cfg.Generation.BaseURL = "https://api.openai.com"
	}
	if strings.TrimSpace(cfg.Generation.Model) == "" {
		cfg.Generation.Model = "gpt-3.5-turbo"
	}
	if cfg.Generation.TimeoutSeconds < 0 {
		return fmt.Errorf("generation.timeout_seconds must be >= 0")
	}

	if strings.TrimSpace(cfg.Media.Endpoint) == "" {
		cfg.Media.Endpoint = "https://dialogflow.googleapis.com"
	}
	if strings.TrimSpace(cfg.Media.SessionID) == "" {
		cfg.Media.SessionID = "saludbot-sesion"
	}
	if strings.TrimSpace(cfg.Media.LanguageCode) == "" {
		cfg.Media.LanguageCode = "es"
	}
	if cfg.Media.TimeoutSeconds < 0 {
		return fmt.Errorf("media.timeout_seconds must be >= 0")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}
	return nil
}
