// Package config provides configuration management for pomoflow.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. POMOFLOW_STORAGE_DATA_DIR.
	EnvPrefix = "POMOFLOW"

	defaultDataDir = "~/.pomoflow"
)

// Config holds all configuration for the pomoflow application.
type Config struct {
	Storage       StorageConfig      `mapstructure:"storage"`
	Estimation    EstimationConfig   `mapstructure:"estimation"`
	Pomodoro      PomodoroConfig     `mapstructure:"pomodoro"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Server        ServerConfig       `mapstructure:"server"`
	Log           LogConfig          `mapstructure:"log"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// EstimationConfig holds estimation settings.
type EstimationConfig struct {
	// DefaultUnits is the number of WORK+BREAK pairs a new task gets when
	// no estimation is given.
	DefaultUnits int `mapstructure:"default_units"`
}

// PomodoroConfig holds segment lengths used to pre-fill the remaining time
// when a pomodoro is paused without an explicit value.
type PomodoroConfig struct {
	WorkDuration      time.Duration `mapstructure:"work_duration"`
	BreakDuration     time.Duration `mapstructure:"break_duration"`
	LongBreakDuration time.Duration `mapstructure:"long_break_duration"`
	// LongBreakEvery makes every Nth BREAK of a task a long one; 0 disables it.
	LongBreakEvery int `mapstructure:"long_break_every"`
}

// SegmentLength returns the configured length of a segment. breakNumber is
// the 1-based position of a BREAK among the task's breaks and is ignored for
// WORK segments.
func (c PomodoroConfig) SegmentLength(isBreak bool, breakNumber int) time.Duration {
	if !isBreak {
		return c.WorkDuration
	}
	if c.LongBreakEvery > 0 && breakNumber > 0 && breakNumber%c.LongBreakEvery == 0 {
		return c.LongBreakDuration
	}
	return c.BreakDuration
}

// Longest returns the longest configured segment length.
func (c PomodoroConfig) Longest() time.Duration {
	return max(c.WorkDuration, c.BreakDuration, c.LongBreakDuration)
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ServerConfig holds REST server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// RateLimit caps requests per client IP per minute; 0 disables it.
	RateLimit       int           `mapstructure:"rate_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ThemeConfig holds the colors used by the terminal views.
type ThemeConfig struct {
	ColorTitle    string `mapstructure:"color_title"`
	ColorActive   string `mapstructure:"color_active"`
	ColorFinished string `mapstructure:"color_finished"`
	ColorHelp     string `mapstructure:"color_help"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorTitle:    "#7C6FE0",
		ColorActive:   "#4ECDC4",
		ColorFinished: "#6B7280",
		ColorHelp:     "#95A5A6",
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir: defaultDataDir,
		},
		Estimation: EstimationConfig{
			DefaultUnits: 1,
		},
		Pomodoro: PomodoroConfig{
			WorkDuration:      25 * time.Minute,
			BreakDuration:     5 * time.Minute,
			LongBreakDuration: 15 * time.Minute,
			LongBreakEvery:    4,
		},
		Notifications: NotificationConfig{
			Enabled: true,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8765",
			RateLimit:       120,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Theme: DefaultThemeConfig(),
	}
}

// Load loads the configuration from the default config file, creating it
// with defaults on first use. A .env file in the working directory is read
// first so its values can override the file through the environment.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFile(configPath)
}

// LoadFile loads the configuration from configPath.
func LoadFile(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveFile(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir

	return &cfg, nil
}

// Save saves the configuration to the default config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveFile(configPath, cfg)
}

// SaveFile saves the configuration to configPath.
func SaveFile(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("estimation.default_units", cfg.Estimation.DefaultUnits)
	v.Set("pomodoro.work_duration", cfg.Pomodoro.WorkDuration.String())
	v.Set("pomodoro.break_duration", cfg.Pomodoro.BreakDuration.String())
	v.Set("pomodoro.long_break_duration", cfg.Pomodoro.LongBreakDuration.String())
	v.Set("pomodoro.long_break_every", cfg.Pomodoro.LongBreakEvery)
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("server.rate_limit", cfg.Server.RateLimit)
	v.Set("server.shutdown_timeout", cfg.Server.ShutdownTimeout.String())
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("theme.color_title", cfg.Theme.ColorTitle)
	v.Set("theme.color_active", cfg.Theme.ColorActive)
	v.Set("theme.color_finished", cfg.Theme.ColorFinished)
	v.Set("theme.color_help", cfg.Theme.ColorHelp)

	return v.WriteConfig()
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pomoflow", "config.toml"), nil
}

// GetDBPath returns the path to the database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "pomoflow.db")
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults sets default values for viper. Every key needs a default so
// AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("storage.data_dir", defaults.Storage.DataDir)
	v.SetDefault("estimation.default_units", defaults.Estimation.DefaultUnits)
	v.SetDefault("pomodoro.work_duration", defaults.Pomodoro.WorkDuration.String())
	v.SetDefault("pomodoro.break_duration", defaults.Pomodoro.BreakDuration.String())
	v.SetDefault("pomodoro.long_break_duration", defaults.Pomodoro.LongBreakDuration.String())
	v.SetDefault("pomodoro.long_break_every", defaults.Pomodoro.LongBreakEvery)
	v.SetDefault("notifications.enabled", defaults.Notifications.Enabled)
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.rate_limit", defaults.Server.RateLimit)
	v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout.String())
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("theme.color_title", defaults.Theme.ColorTitle)
	v.SetDefault("theme.color_active", defaults.Theme.ColorActive)
	v.SetDefault("theme.color_finished", defaults.Theme.ColorFinished)
	v.SetDefault("theme.color_help", defaults.Theme.ColorHelp)
}

// loadDotEnv loads path into the process environment. Variables that are
// already set win, and a missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func expandHome(dir string) (string, error) {
	if dir != "" && dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if dir == "" {
		return filepath.Join(homeDir, ".pomoflow"), nil
	}
	return filepath.Join(homeDir, strings.TrimPrefix(dir, "~")), nil
}
