package config_test

import (
	"fmt"
	"time"

	"github.com/embackup/embackup/internal/config"
)

// Example of creating a default configuration
func ExampleDefault() {
	cfg := config.Default()
	fmt.Println("CPU Log Interval:", cfg.Tracker.CPULogInterval)
	fmt.Println("Notifications:", cfg.Notify.Enabled)
	// Output:
	// CPU Log Interval: 2m0s
	// Notifications: true
}

// Example of setting the CPU log interval with validation
func ExampleConfig_SetCPULogInterval() {
	cfg := config.Default()

	// Valid interval
	if err := cfg.SetCPULogInterval(30 * time.Second); err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("CPU log interval set to:", cfg.Tracker.CPULogInterval)
	}

	// Invalid interval (too low)
	if err := cfg.SetCPULogInterval(500 * time.Millisecond); err != nil {
		fmt.Println("Error:", err)
	}

	// Output:
	// CPU log interval set to: 30s
	// Error: cpu log interval cannot be less than 1s
}

// Example of validating configuration
func ExampleConfig_Validate() {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	} else {
		fmt.Println("Configuration is valid")
	}

	// Output:
	// Configuration is valid
}
