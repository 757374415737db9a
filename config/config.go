package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Search  SearchConfig
	Render  RenderConfig
	Output  OutputConfig
	Session SessionConfig
	Server  ServerConfig
	Log     LogConfig
}

// SearchConfig holds marketplace search API configuration
type SearchConfig struct {
	BaseURL      string            `mapstructure:"base_url"`
	Limit        int               `mapstructure:"limit"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	MaxBodyBytes int64             `mapstructure:"max_body_bytes"`
	ResultSet    string            `mapstructure:"resultset"`
	Sort         string            `mapstructure:"sort"`
	Page         int               `mapstructure:"page"`
	AppType      int               `mapstructure:"app_type"`
	Currency     string            `mapstructure:"currency"`
	Dest         int               `mapstructure:"dest"`
	Headers      map[string]string `mapstructure:"headers"` // replaces the defaults when set in a config file
}

// RenderConfig holds the URLs baked into the results page
type RenderConfig struct {
	StylesheetURL  string `mapstructure:"stylesheet_url"`
	ImageBaseURL   string `mapstructure:"image_base_url"`
	ProductBaseURL string `mapstructure:"product_base_url"`
}

// OutputConfig holds where the results page is written
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// SessionConfig holds interactive loop configuration
type SessionConfig struct {
	Delay       time.Duration `mapstructure:"delay"`
	ExitKeyword string        `mapstructure:"exit_keyword"`
}

// ServerConfig holds preview server configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

const maxLimit = 100

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/wbscout/")

	// WBSCOUT_SEARCH_LIMIT -> search.limit
	v.SetEnvPrefix("WBSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env if present. Variables already set in the
// environment are left untouched.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Search defaults
	v.SetDefault("search.base_url", "https://search.wb.ru/exactmatch/ru/common/v4/search")
	v.SetDefault("search.limit", 50)
	v.SetDefault("search.timeout", "15s")
	v.SetDefault("search.max_body_bytes", 8<<20)
	v.SetDefault("search.resultset", "catalog")
	v.SetDefault("search.sort", "popular")
	v.SetDefault("search.page", 1)
	v.SetDefault("search.app_type", 1)
	v.SetDefault("search.currency", "rub")
	v.SetDefault("search.dest", -1257786)
	v.SetDefault("search.headers", map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		"Accept":          "*/*",
		"Accept-Language": "en-US,en;q=0.5",
		"Origin":          "https://www.wildberries.ru",
		"Referer":         "https://www.wildberries.ru/",
	})

	// Render defaults
	v.SetDefault("render.stylesheet_url", "https://cdn.jsdelivr.net/npm/bootstrap@5.1.3/dist/css/bootstrap.min.css")
	v.SetDefault("render.image_base_url", "https://images.wbstatic.net/c246x328/new/")
	v.SetDefault("render.product_base_url", "https://www.wildberries.ru/catalog/")

	// Output defaults
	v.SetDefault("output.path", "wildberries_results.html")

	// Session defaults
	v.SetDefault("session.delay", "1s")
	v.SetDefault("session.exit_keyword", "quit")

	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Log defaults
	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Search.BaseURL == "" {
		return fmt.Errorf("search base URL is required (set WBSCOUT_SEARCH_BASE_URL)")
	}

	if config.Search.Limit < 1 || config.Search.Limit > maxLimit {
		return fmt.Errorf("search limit must be between 1 and %d, got: %d", maxLimit, config.Search.Limit)
	}

	if config.Search.Timeout <= 0 {
		return fmt.Errorf("search timeout must be positive, got: %s", config.Search.Timeout)
	}

	if config.Output.Path == "" {
		return fmt.Errorf("output path is required (set WBSCOUT_OUTPUT_PATH)")
	}

	if config.Session.Delay < 0 {
		return fmt.Errorf("session delay must not be negative, got: %s", config.Session.Delay)
	}

	if strings.TrimSpace(config.Session.ExitKeyword) == "" {
		return fmt.Errorf("session exit keyword is required")
	}

	if _, err := zerolog.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log level %q is not valid", config.Log.Level)
	}

	return nil
}
