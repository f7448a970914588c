package settings

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Mode selects what the backup copies
type Mode string

const (
	ModeFile   Mode = "file"
	ModeFolder Mode = "folder"
)

// ParseMode normalizes a user supplied mode, case-insensitively
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFile:
		return ModeFile, nil
	case ModeFolder:
		return ModeFolder, nil
	default:
		return "", ErrModeNotRecognized
	}
}

var extensionPattern = regexp.MustCompile(`^\w+$`)

// BackupConfig is the user configuration persisted in config.yaml.
// A tracking loop reads it once; changes need a restart.
type BackupConfig struct {
	// Mouse position sampling period in milliseconds. Lower values cost more CPU.
	MillisUpdateFrequency uint32 `yaml:"millis_update_frequency" json:"millis_update_frequency"`

	// Seconds within which the second mouse command must be performed.
	TrackingWindowSec uint32 `yaml:"tracking_window_sec" json:"tracking_window_sec"`

	// Pixel slack when matching the non-origin corners.
	Tolerance uint32 `yaml:"tolerance" json:"tolerance"`

	BackupSource      string `yaml:"backup_source" json:"backup_source"`
	BackupDestination string `yaml:"backup_destination" json:"backup_destination"`

	// When true only files whose extension is in ExtensionType are copied.
	ExtensionOnly bool     `yaml:"extension_only" json:"extension_only"`
	ExtensionType []string `yaml:"extension_type" json:"extension_type"`

	// "Folder" or "File"
	Mode string `yaml:"mode" json:"mode"`

	// Whether the tracker daemon is supposed to be running
	Active bool `yaml:"active" json:"active"`
}

// Default returns the configuration written on first load
func Default() BackupConfig {
	return BackupConfig{
		MillisUpdateFrequency: 200,
		TrackingWindowSec:     15,
		Tolerance:             5,
		ExtensionType:         []string{},
		Mode:                  "Folder",
	}
}

// SampleInterval returns the sampling period
func (c BackupConfig) SampleInterval() time.Duration {
	return time.Duration(c.MillisUpdateFrequency) * time.Millisecond
}

// TrackingWindow returns the confirmation window
func (c BackupConfig) TrackingWindow() time.Duration {
	return time.Duration(c.TrackingWindowSec) * time.Second
}

// HistoryCapacity is the number of samples that fit in one tracking window
func (c BackupConfig) HistoryCapacity() int {
	if c.MillisUpdateFrequency == 0 {
		return 0
	}
	return int(1000/c.MillisUpdateFrequency) * int(c.TrackingWindowSec)
}

// Extensions returns the filter extensions in dotted form
func (c BackupConfig) Extensions() []string {
	exts := make([]string, 0, len(c.ExtensionType))
	for _, ext := range c.ExtensionType {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

// CheckFields validates the values that do not touch the filesystem
func (c BackupConfig) CheckFields() error {
	var problems []error

	if c.MillisUpdateFrequency == 0 {
		problems = append(problems, ErrZeroSampleInterval)
	}
	if c.TrackingWindowSec == 0 {
		problems = append(problems, ErrZeroTrackingWindow)
	}
	if c.MillisUpdateFrequency != 0 && c.TrackingWindowSec != 0 && c.HistoryCapacity() == 0 {
		problems = append(problems, ErrZeroHistoryCapacity)
	}
	if c.ExtensionOnly {
		if len(c.ExtensionType) == 0 {
			problems = append(problems, ErrExtensionListEmpty)
		}
		for _, ext := range c.ExtensionType {
			if !extensionPattern.MatchString(strings.TrimPrefix(ext, ".")) {
				problems = append(problems, errors.Wrapf(ErrExtensionFormat, "invalid extension %q", ext))
				break
			}
		}
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// Validate performs every startup check, including the mode/path-kind match.
// An unrecognized mode passes here and is rejected by the backup itself.
func (c BackupConfig) Validate() error {
	var problems []error
	if err := c.CheckFields(); err != nil {
		problems = append(problems, err.(*ConfigError).Problems...)
	}

	if strings.TrimSpace(c.BackupSource) == "" || strings.TrimSpace(c.BackupDestination) == "" {
		problems = append(problems, ErrBackupPathNotConfigured)
	} else if mode, err := ParseMode(c.Mode); err == nil {
		info, statErr := os.Stat(c.BackupSource)
		switch {
		case statErr != nil:
			problems = append(problems, errors.Wrap(ErrBackupSourceNotFound, c.BackupSource))
		case mode == ModeFile && info.IsDir():
			problems = append(problems, ErrFolderProvidedFileRequired)
		case mode == ModeFolder && !info.IsDir():
			problems = append(problems, ErrFileProvidedFolderRequired)
		}
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// String returns a human readable dump of the configuration
func (c BackupConfig) String() string {
	return fmt.Sprintf(`Backup configuration:
  Source: %s
  Destination: %s
  Mode: %s
  Extension only: %v
  Extensions: %s
  Sampling: %dms
  Tracking window: %ds
  Tolerance: %dpx
  Active: %v`,
		c.BackupSource,
		c.BackupDestination,
		c.Mode,
		c.ExtensionOnly,
		strings.Join(c.ExtensionType, " "),
		c.MillisUpdateFrequency,
		c.TrackingWindowSec,
		c.Tolerance,
		c.Active,
	)
}
