package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Lookup  LookupConfig  `mapstructure:"lookup"`
	Sheets  SheetsConfig  `mapstructure:"sheets"`
	Storage StorageConfig `mapstructure:"storage"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LookupConfig holds company lookup configuration
type LookupConfig struct {
	// CustomAPIURL is the optional self-hosted lookup API. Empty or a
	// placeholder value disables the source.
	CustomAPIURL     string        `mapstructure:"custom_api_url"`
	RegistryEndpoint string        `mapstructure:"registry_endpoint"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// SheetsConfig holds spreadsheet sync configuration
type SheetsConfig struct {
	WebhookURL   string        `mapstructure:"webhook_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	WorkbookPath string        `mapstructure:"workbook_path"`
}

// StorageConfig holds record persistence configuration
type StorageConfig struct {
	FilePath string `mapstructure:"file_path"`
	// ReadOnly skips filesystem writes entirely; set on deploy targets
	// with a read-only filesystem.
	ReadOnly bool `mapstructure:"read_only"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables. A missing
// config file is fine; defaults and environment variables still apply.
func Load(configPath string) (*Config, error) {
	setDefaults()
	bindEnvVars()
	viper.AutomaticEnv()

	if configPath != "" {
		viper.SetConfigFile(configPath)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

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
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	// Submit awaits the spreadsheet sync, which can take up to three
	// 30-second attempts plus backoff.
	viper.SetDefault("server.write_timeout", 120*time.Second)

	// Lookup defaults
	viper.SetDefault("lookup.custom_api_url", "")
	viper.SetDefault("lookup.registry_endpoint", "https://api.vietqr.io/v2/business")
	viper.SetDefault("lookup.timeout", 10*time.Second)

	// Sheets defaults
	viper.SetDefault("sheets.webhook_url", "")
	viper.SetDefault("sheets.timeout", 30*time.Second)
	viper.SetDefault("sheets.max_attempts", 3)
	viper.SetDefault("sheets.workbook_path", "")

	// Storage defaults
	viper.SetDefault("storage.file_path", "data/tax-info.json")
	viper.SetDefault("storage.read_only", false)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("lookup.custom_api_url", "TAX_API_URL")
	viper.BindEnv("sheets.webhook_url", "SHEETS_WEBHOOK_URL")
	viper.BindEnv("sheets.workbook_path", "SHEETS_WORKBOOK_PATH")
	viper.BindEnv("storage.file_path", "STORAGE_FILE_PATH")
	viper.BindEnv("storage.read_only", "STORAGE_READ_ONLY")
	viper.BindEnv("logger.level", "LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Lookup.Timeout <= 0 {
		return fmt.Errorf("lookup.timeout must be positive")
	}
	if c.Sheets.Timeout <= 0 {
		return fmt.Errorf("sheets.timeout must be positive")
	}
	if c.Sheets.MaxAttempts < 1 {
		return fmt.Errorf("sheets.max_attempts must be at least 1")
	}
	if !c.Storage.ReadOnly && c.Storage.FilePath == "" {
		return fmt.Errorf("storage.file_path is required unless storage is read-only")
	}
	return nil
}
