package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Session   SessionConfig   `mapstructure:"session"`
	Export    ExportConfig    `mapstructure:"export"`
	DevServer DevServerConfig `mapstructure:"devserver"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// APIConfig holds backend API configuration
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig holds the persisted session store configuration
type SessionConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// ExportConfig holds local export configuration
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// DevServerConfig holds the local stub backend configuration
type DevServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	DBPath       string        `mapstructure:"db_path"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	OpenAIKey    string        `mapstructure:"openai_key"`
	OpenAIModel  string        `mapstructure:"openai_model"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	// Missing config file is fine; defaults plus env cover the CLI case.
	if _, err := os.Stat(configPath); err == nil {
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// API defaults
	viper.SetDefault("api.base_url", "http://localhost:8080")
	viper.SetDefault("api.timeout", 30*time.Second)

	// Session defaults
	viper.SetDefault("session.db_path", "data/session.db")

	// Export defaults
	viper.SetDefault("export.output_dir", "exports")

	// Dev server defaults
	viper.SetDefault("devserver.host", "0.0.0.0")
	viper.SetDefault("devserver.port", 8080)
	viper.SetDefault("devserver.db_path", "data/devserver.db")
	viper.SetDefault("devserver.read_timeout", 30*time.Second)
	viper.SetDefault("devserver.write_timeout", 30*time.Second)
	viper.SetDefault("devserver.openai_model", "gpt-4o")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("api.base_url", "FAKTURO_API_URL")
	viper.BindEnv("session.db_path", "FAKTURO_SESSION_DB")
	viper.BindEnv("devserver.openai_key", "OPENAI_API_KEY")
	viper.BindEnv("logger.level", "FAKTURO_LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.DevServer.Port <= 0 || c.DevServer.Port > 65535 {
		return fmt.Errorf("devserver.port must be a valid port")
	}
	return nil
}
