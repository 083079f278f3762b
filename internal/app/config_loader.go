package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yourusername/edufetch-go/internal/domain"
)

// LoadConfig loads configuration from file and environment. A .env file in
// the working directory is loaded first so Telegram credentials can stay out
// of the config file.
func LoadConfig(configPath string) (*domain.Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.edufetch")
		v.AddConfigPath("/etc/edufetch")
	}

	v.SetEnvPrefix("EDUFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Credentials come from the environment when not set in the file
	if config.Notification.BotToken == "" {
		config.Notification.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if config.Notification.ChatID == "" {
		config.Notification.ChatID = os.Getenv("TELEGRAM_CHAT_ID")
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.RootDir = expandPath(config.Download.RootDir)
	config.Catalog.Path = expandPath(config.Catalog.Path)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	if strings.Contains(path, "$HOME") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	return path
}

// validateConfig validates the configuration. Invalid values fail fast
// before any download starts.
func validateConfig(config *domain.Config) error {
	if config.Download.RootDir == "" {
		return fmt.Errorf("download root directory not configured")
	}

	if config.Download.TimeoutSeconds < 1 {
		return fmt.Errorf("download timeout must be at least 1 second")
	}

	if config.Download.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	if config.Scheduler.DocumentWorkers < 1 {
		return fmt.Errorf("document workers must be at least 1")
	}

	if config.Scheduler.VideoWorkers < 1 {
		return fmt.Errorf("video workers must be at least 1")
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}
