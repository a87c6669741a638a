package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variable.
// It is built once in main and handed to collaborators explicitly.
type Config struct {
	AppName  string `mapstructure:"APP_NAME"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	LogLevel string `mapstructure:"LOG_LEVEL"` // "debug", "info", "warn", "error"

	// StoreBackend selects the repository implementation: "memory" or "postgres".
	StoreBackend string `mapstructure:"STORE_BACKEND"`

	// PostgreSQL configuration
	DBHost       string `mapstructure:"DB_HOST"`
	DBPort       int    `mapstructure:"DB_PORT"`
	DBUser       string `mapstructure:"DB_USER"`
	DBPassword   string `mapstructure:"DB_PASSWORD"`
	DBName       string `mapstructure:"DB_NAME"`
	DBSSLMode    string `mapstructure:"DB_SSL_MODE"` // "disable", "require", "verify-full"
	MigrationDir string `mapstructure:"MIGRATION_DIR"`

	// Auth
	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	// Background jobs
	CampaignSweepInterval time.Duration `mapstructure:"CAMPAIGN_SWEEP_INTERVAL"`

	// Chat
	ChatHistoryLimit int `mapstructure:"CHAT_HISTORY_LIMIT"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("APP_NAME", "pashumitra")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("STORE_BACKEND", "postgres")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "pashumitra")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("MIGRATION_DIR", "migrations")

	viper.SetDefault("JWT_SECRET", "change-me")
	viper.SetDefault("TOKEN_TTL", 24*time.Hour)

	viper.SetDefault("CAMPAIGN_SWEEP_INTERVAL", 24*time.Hour)

	viper.SetDefault("CHAT_HISTORY_LIMIT", 100)

	// If a config file is found, read it in.
	if err = viper.ReadInConfig(); err == nil {
		log.Info().Str("file", viper.ConfigFileUsed()).Msg("Using config file")
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		log.Info().Msg("No config file found, using environment variables and defaults.")
	} else {
		log.Error().Err(err).Msg("Error reading config file")
		return
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	err = viper.Unmarshal(&config)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to decode into struct")
	}

	return
}
