package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the runtime configuration of the embackup binary. User
// settings for the gesture and the backup live in settings.BackupConfig.
type Config struct {
	// Settings directory (config.yaml, logs, history database)
	Paths PathsConfig

	// Database configuration
	Database DatabaseConfig

	// Tracker configuration
	Tracker TrackerConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Desktop notification configuration
	Notify NotifyConfig

	// Web server configuration
	Web WebConfig
}

// PathsConfig holds the on-disk locations
type PathsConfig struct {
	ConfigDir string // Empty means ~/.emergency-backup
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string // Path to SQLite database file, empty means <ConfigDir>/history.db
}

// TrackerConfig holds tracking loop configuration
type TrackerConfig struct {
	CPULogInterval    time.Duration // How often the CPU consumption is logged
	MinCPULogInterval time.Duration // Minimum allowed CPU log interval
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
}

// NotifyConfig holds desktop notification configuration
type NotifyConfig struct {
	Enabled bool
	AppName string

	Summary       string
	ErrorSummary  string
	FirstCommand  string
	SecondCommand string
	BackupDone    string
	BackupError   string
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string // Host to bind web server to
	Port int    // Port for web server
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			ConfigDir: "",
		},
		Database: DatabaseConfig{
			Path: "",
		},
		Tracker: TrackerConfig{
			CPULogInterval:    120 * time.Second,
			MinCPULogInterval: time.Second,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/embackup-%d.pid", os.Getuid()),
		},
		Notify: NotifyConfig{
			Enabled:       true,
			AppName:       "embackup",
			Summary:       "Mouse Tracker",
			ErrorSummary:  "Mouse Tracker Error.",
			FirstCommand:  "Mouse command detected, perform the second step to start the backup",
			SecondCommand: "Mouse command detected, backup started",
			BackupDone:    "Backup successfully done.",
			BackupError:   "An error occurred during the backup, please try again.",
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 11000 + os.Getuid()%50000, // Default port based on user ID
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tracker.CPULogInterval < c.Tracker.MinCPULogInterval {
		return fmt.Errorf("cpu log interval (%v) cannot be less than minimum (%v)",
			c.Tracker.CPULogInterval, c.Tracker.MinCPULogInterval)
	}

	// Validate web config
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	// Validate daemon config
	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	if c.Notify.Enabled && c.Notify.AppName == "" {
		return fmt.Errorf("notification app name cannot be empty")
	}

	return nil
}

// SetCPULogInterval sets the CPU log interval with validation
func (c *Config) SetCPULogInterval(interval time.Duration) error {
	if interval < c.Tracker.MinCPULogInterval {
		return fmt.Errorf("cpu log interval cannot be less than %v", c.Tracker.MinCPULogInterval)
	}
	c.Tracker.CPULogInterval = interval
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// ResolveConfigDir returns the settings directory, defaulting to
// ~/.emergency-backup
func (c *Config) ResolveConfigDir() (string, error) {
	if c.Paths.ConfigDir != "" {
		return c.Paths.ConfigDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".emergency-backup"), nil
}

// ResolveDatabasePath returns the history database path
func (c *Config) ResolveDatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	dir, err := c.ResolveConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// ResolveLogDir returns the directory of the rolling log files
func (c *Config) ResolveLogDir() (string, error) {
	dir, err := c.ResolveConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Paths:
    Config Dir: %s
  Database:
    Path: %s
  Tracker:
    CPU Log Interval: %v
  Daemon:
    PID File: %s
  Notify:
    Enabled: %v
    App Name: %s
  Web:
    Host: %s
    Port: %d`,
		c.Paths.ConfigDir,
		c.Database.Path,
		c.Tracker.CPULogInterval,
		c.Daemon.PIDFile,
		c.Notify.Enabled,
		c.Notify.AppName,
		c.Web.Host,
		c.Web.Port,
	)
}
