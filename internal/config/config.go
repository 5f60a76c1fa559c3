package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DataDir         string
	DBPath          string
	MediaDir        string
	ListenAddr      string
	LogLevel        slog.Level
	LogFormat       string
	SnapshotsOn     bool
	ChromePath      string
	DefaultMaxPosts int
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	dataDir := getEnv("ARCHIVE_DATA_DIR", "archive_data")

	cfg := &Config{
		DataDir:    dataDir,
		DBPath:     getEnv("DB_PATH", filepath.Join(dataDir, "archive.db")),
		MediaDir:   getEnv("MEDIA_DIR", filepath.Join(dataDir, "media")),
		ListenAddr: getEnv("LISTEN_ADDR", "127.0.0.1:5757"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		ChromePath: getEnv("CHROME_PATH", ""),
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	snapshots, err := parseBool("SNAPSHOTS_ENABLED", getEnv("SNAPSHOTS_ENABLED", "true"))
	if err != nil {
		return nil, err
	}
	cfg.SnapshotsOn = snapshots

	maxPostsStr := getEnv("DEFAULT_MAX_POSTS", "500")
	maxPosts, err := strconv.Atoi(maxPostsStr)
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_MAX_POSTS must be a valid integer: %w", err)
	}
	if maxPosts <= 0 {
		return nil, fmt.Errorf("DEFAULT_MAX_POSTS must be greater than 0")
	}
	cfg.DefaultMaxPosts = maxPosts

	// Create the data and media directories if they don't exist
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.MediaDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	return cfg, nil
}

// BaseURL returns the loopback HTTP address the server is reachable on.
// The snapshot renderer navigates here, so a wildcard listen address is
// rewritten to the loopback host.
func (c *Config) BaseURL() string {
	addr := c.ListenAddr
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	host, port, found := strings.Cut(addr, ":")
	if found && (host == "0.0.0.0" || host == "") {
		addr = "127.0.0.1:" + port
	}
	return "http://" + addr
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseLogLevel converts a level name into a slog.Level.
func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error (got %q)", s)
	}
}

// parseBool converts an env value into a bool with a helpful error.
func parseBool(key, s string) (bool, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}
