package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Slack   SlackConfig   `yaml:"slack" envconfig:"SLACK"`
	Reports ReportsConfig `yaml:"reports" envconfig:"REPORTS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	// MaxUploadBytes bounds one multipart analysis request.
	MaxUploadBytes int64   `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"104857600"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int     `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"20"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// SlackConfig contains the publish capability credentials. Both values
// empty disables publishing; set, the token must be a bot token.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token" envconfig:"BOT_TOKEN" validate:"omitempty,startswith=xoxb-"`
	ChannelID string `yaml:"channel_id" envconfig:"CHANNEL_ID"`
}

// ReportsConfig contains report output configuration
type ReportsConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"reports"`
}

// Enabled reports whether publishing is configured at all.
func (s SlackConfig) Enabled() bool {
	return s.BotToken != "" && s.ChannelID != ""
}

// Load loads configuration from an optional .env file, AGING_*
// environment variables, and a YAML file at AGING_CONFIG_FILE (default
// config.yml) when present. File values override the environment.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("AGING", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := os.Getenv("AGING_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yml"
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := applyFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func applyFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
