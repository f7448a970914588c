package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default values
func LoadFromEnv(cfg *Config) {
	if configDir := os.Getenv("EMBACKUP_CONFIG_DIR"); configDir != "" {
		cfg.Paths.ConfigDir = configDir
	}

	// Database configuration
	if dbPath := os.Getenv("EMBACKUP_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Tracker configuration
	if cpuInterval := os.Getenv("EMBACKUP_CPU_LOG_INTERVAL_MS"); cpuInterval != "" {
		if millis, err := strconv.Atoi(cpuInterval); err == nil && millis > 0 {
			interval := time.Duration(millis) * time.Millisecond
			if interval >= cfg.Tracker.MinCPULogInterval {
				cfg.Tracker.CPULogInterval = interval
			}
		}
	}

	// Daemon configuration
	if pidFile := os.Getenv("EMBACKUP_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	// Notification configuration
	if notify := os.Getenv("EMBACKUP_NOTIFY"); notify != "" {
		if val, err := strconv.ParseBool(notify); err == nil {
			cfg.Notify.Enabled = val
		}
	}

	// Web configuration
	if webHost := os.Getenv("EMBACKUP_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("EMBACKUP_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}
}

// New creates a new Config with default values and loads from environment
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}
