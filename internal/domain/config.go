package domain

import "time"

// Worker-pool bounds. Video transfers are large and bandwidth-sensitive, so
// their pool is capped tighter than the generic document pool.
const (
	MaxDocumentWorkers = 10
	MaxVideoWorkers    = 4
)

// Config represents the application configuration
type Config struct {
	Download     DownloadConfig     `mapstructure:"download"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Catalog      CatalogConfig      `mapstructure:"catalog"`
	Notification NotificationConfig `mapstructure:"notification"`
	Server       ServerConfig       `mapstructure:"server"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	RootDir             string        `mapstructure:"root_dir"`
	TimeoutSeconds      int           `mapstructure:"timeout_seconds"`
	VideoTimeoutSeconds int           `mapstructure:"video_timeout_seconds"`
	ChunkSize           int           `mapstructure:"chunk_size"`
	UserAgent           string        `mapstructure:"user_agent"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryDelay          time.Duration `mapstructure:"retry_delay"`
}

// SchedulerConfig contains worker-pool sizing
type SchedulerConfig struct {
	DocumentWorkers int `mapstructure:"document_workers"`
	VideoWorkers    int `mapstructure:"video_workers"`
}

// CatalogConfig locates the catalog export consumed by discovery
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// NotificationConfig contains Telegram notification settings. BotToken and
// ChatID normally come from the environment (.env), not the config file.
type NotificationConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BotToken    string        `mapstructure:"bot_token"`
	ChatID      string        `mapstructure:"chat_id"`
	MinInterval time.Duration `mapstructure:"min_interval"`
}

// ServerConfig contains the optional status API listener
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Download: DownloadConfig{
			RootDir:             "$HOME/Downloads/edufetch",
			TimeoutSeconds:      30,
			VideoTimeoutSeconds: 60,
			ChunkSize:           8192,
			UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			MaxRetries:          0,
			RetryDelay:          5 * time.Second,
		},
		Scheduler: SchedulerConfig{
			DocumentWorkers: 3,
			VideoWorkers:    2,
		},
		Catalog: CatalogConfig{
			Path: "catalog.json",
		},
		Notification: NotificationConfig{
			Enabled:     false,
			MinInterval: time.Second,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
