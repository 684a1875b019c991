package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultContentDir      = "./posts"
	defaultPort            = 8080
	defaultShutdownTimeout = 5 * time.Second
	defaultLogLevel        = "info"
)

// Config holds the server settings, read from the environment.
type Config struct {
	ContentDir      string
	Port            int
	BaseURL         string
	ScanOnRead      bool
	Watch           bool
	RescanInterval  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
	LogPretty       bool
	WebhookSecret   string
}

// Load reads the configuration from the environment. Variables from ENV_FILE,
// or from .env when ENV_FILE is unset, are loaded first without overriding
// variables that are already set.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{
		ContentDir:    getEnv("BLOG_CONTENT_DIR", defaultContentDir),
		BaseURL:       os.Getenv("BLOG_BASE_URL"),
		LogLevel:      getEnv("BLOG_LOG_LEVEL", defaultLogLevel),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
	}

	var err error
	if cfg.Port, err = getInt("BLOG_PORT", defaultPort); err != nil {
		return nil, err
	}
	if cfg.ScanOnRead, err = getBool("BLOG_SCAN_ON_READ", true); err != nil {
		return nil, err
	}
	if cfg.Watch, err = getBool("BLOG_WATCH", false); err != nil {
		return nil, err
	}
	if cfg.LogPretty, err = getBool("BLOG_LOG_PRETTY", false); err != nil {
		return nil, err
	}
	if cfg.RescanInterval, err = getDuration("BLOG_RESCAN_INTERVAL", 0); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("BLOG_SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return nil, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("BLOG_PORT %d out of range", cfg.Port)
	}
	if cfg.RescanInterval < 0 {
		return nil, fmt.Errorf("BLOG_RESCAN_INTERVAL must not be negative")
	}

	return cfg, nil
}

func loadEnvFile() error {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
