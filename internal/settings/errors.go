package settings

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrHomeDirectory              = errors.New("failed to retrieve user's home directory")
	ErrLoadSettings               = errors.New("configuration loading failed, please try again")
	ErrApplySettings              = errors.New("configuration saving failed, please try again")
	ErrZeroSampleInterval         = errors.New("mouse sampling frequency must be a positive value")
	ErrZeroTrackingWindow         = errors.New("mouse tracking window cannot be zero seconds")
	ErrZeroHistoryCapacity        = errors.New("sampling interval is too long for the tracking window, position history would be empty")
	ErrBackupPathNotConfigured    = errors.New("backup source and/or destination path not configured")
	ErrBackupSourceNotFound       = errors.New("backup source path does not exist")
	ErrFolderProvidedFileRequired = errors.New("backup mode set to 'file', but a folder was provided")
	ErrFileProvidedFolderRequired = errors.New("backup mode set to 'folder', but a file was provided")
	ErrExtensionListEmpty         = errors.New("at least one file extension must be provided when using extension type option")
	ErrExtensionFormat            = errors.New("file extension list must be provided in the format: 'txt pdf png ...'")
	ErrExtensionOnlyValue         = errors.New("'extension_only' attribute must be either 'true' or 'false'")
	ErrModeNotRecognized          = errors.New("invalid backup mode, must be 'file' or 'folder'")
)

// ConfigError collects every problem found while validating a BackupConfig.
// It is fatal at startup: the tracking loop never begins.
type ConfigError struct {
	Problems []error
}

func (e *ConfigError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return "invalid backup configuration: " + strings.Join(msgs, "; ")
}

// Is reports whether any collected problem matches target
func (e *ConfigError) Is(target error) bool {
	for _, p := range e.Problems {
		if errors.Is(p, target) {
			return true
		}
	}
	return false
}
