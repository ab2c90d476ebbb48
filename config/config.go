package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Shopify  ShopifyConfig
	Sync     SyncConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the product database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN builds the Postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode)
}

// ShopifyConfig holds Shopify Admin API configuration
type ShopifyConfig struct {
	ShopURL           string  `mapstructure:"shop_url"`
	AccessToken       string  `mapstructure:"access_token"`
	APIVersion        string  `mapstructure:"api_version"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	MaxAttempts       int     `mapstructure:"max_attempts"`
	PageSize          int     `mapstructure:"page_size"`
}

// SyncConfig holds reconciliation defaults
type SyncConfig struct {
	DefaultBatchSize int `mapstructure:"default_batch_size"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/wortmann2shopify/")

	v.SetEnvPrefix("W2S")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
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

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "wortmann")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")

	// Empty defaults register the keys so AutomaticEnv can override them;
	// validate rejects them when they stay empty.
	v.SetDefault("shopify.shop_url", "")
	v.SetDefault("shopify.access_token", "")
	v.SetDefault("shopify.api_version", "2023-10")
	// Shopify's published REST ceiling: 2 sustained requests/second with
	// short bursts tolerated.
	v.SetDefault("shopify.requests_per_second", 2.0)
	v.SetDefault("shopify.burst", 4)
	v.SetDefault("shopify.max_attempts", 5)
	v.SetDefault("shopify.page_size", 250)

	v.SetDefault("sync.default_batch_size", 5)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Shopify.ShopURL == "" {
		return fmt.Errorf("Shopify shop URL is required (set W2S_SHOPIFY_SHOP_URL)")
	}
	if config.Shopify.AccessToken == "" {
		return fmt.Errorf("Shopify access token is required (set W2S_SHOPIFY_ACCESS_TOKEN)")
	}
	if config.Shopify.RequestsPerSecond <= 0 {
		return fmt.Errorf("shopify.requests_per_second must be positive, got: %v", config.Shopify.RequestsPerSecond)
	}
	if config.Shopify.MaxAttempts < 1 {
		return fmt.Errorf("shopify.max_attempts must be at least 1, got: %d", config.Shopify.MaxAttempts)
	}
	if config.Sync.DefaultBatchSize < 1 {
		return fmt.Errorf("sync.default_batch_size must be positive, got: %d", config.Sync.DefaultBatchSize)
	}
	return nil
}
