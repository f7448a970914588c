package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/embackup/embackup/internal/settings"
	"github.com/otiai10/copy"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DirName is created inside the configured destination
	DirName = "emergency-backup"
	// LogFileName is written inside DirName after every successful backup
	LogFileName = "backup_log_info.log"
)

var (
	ErrFileTransfer      = errors.New("file transfer failed")
	ErrBackupSource      = errors.New("failed to retrieve backup source")
	ErrModeNotRecognized = settings.ErrModeNotRecognized
)

// Outcome describes a completed backup attempt
type Outcome struct {
	Success     bool          `json:"success"`
	Mode        settings.Mode `json:"mode"`
	Destination string        `json:"destination"`
	Elapsed     time.Duration `json:"elapsed"`
	CPUTime     time.Duration `json:"cpu_time"`
	Bytes       int64         `json:"bytes"`
	Files       int           `json:"files"`
	LogWritten  bool          `json:"log_written"`
}

// SizeMb returns the copied size in mebibytes, the unit of the backup log
func (o *Outcome) SizeMb() float64 {
	return float64(o.Bytes) / 1024 / 1024
}

// CPUClock returns the cumulative CPU time consumed by the current process
type CPUClock func() (time.Duration, error)

// Executor copies the configured source into <destination>/emergency-backup
type Executor struct {
	cpuClock CPUClock
	log      logrus.FieldLogger
}

// NewExecutor creates an executor. cpuClock may be nil, in which case the
// CPU time of a backup is reported as zero.
func NewExecutor(cpuClock CPUClock, log logrus.FieldLogger) *Executor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Executor{cpuClock: cpuClock, log: log}
}

// Backup runs the backup synchronously. An unrecognized mode fails before
// the filesystem is touched. A failure to write the backup log is logged and
// reflected in Outcome.LogWritten but does not fail the backup.
func (e *Executor) Backup(cfg settings.BackupConfig) (*Outcome, error) {
	mode, err := settings.ParseMode(cfg.Mode)
	if err != nil {
		return nil, errors.Wrapf(ErrModeNotRecognized, "mode %q", cfg.Mode)
	}

	destination := filepath.Join(cfg.BackupDestination, DirName)
	started := time.Now()
	cpuStart := e.cpuTime()

	var bytes int64
	var files int
	switch mode {
	case ModeFile:
		bytes, err = e.fileBackup(cfg.BackupSource, destination)
		files = 1
	case ModeFolder:
		bytes, files, err = e.folderBackup(cfg, destination)
	}
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Success:     true,
		Mode:        mode,
		Destination: destination,
		Elapsed:     time.Since(started),
		CPUTime:     e.cpuTime() - cpuStart,
		Bytes:       bytes,
		Files:       files,
	}

	if err := WriteLog(destination, outcome); err != nil {
		e.log.WithError(err).Error("Error writing backup logs on target directory")
	} else {
		outcome.LogWritten = true
		e.log.Info("Backup logs successfully written")
	}

	return outcome, nil
}

// ModeFile and ModeFolder are re-exported for callers of this package
const (
	ModeFile   = settings.ModeFile
	ModeFolder = settings.ModeFolder
)

func (e *Executor) cpuTime() time.Duration {
	if e.cpuClock == nil {
		return 0
	}
	d, err := e.cpuClock()
	if err != nil {
		e.log.WithError(err).Debug("Failed to read process CPU time")
		return 0
	}
	return d
}

func (e *Executor) fileBackup(source, destination string) (int64, error) {
	name := filepath.Base(filepath.Clean(source))
	if source == "" || name == "." || name == string(filepath.Separator) {
		e.log.Error("Error to retrieve backup source file name")
		return 0, ErrBackupSource
	}

	info, err := os.Stat(source)
	if err != nil {
		return 0, errors.Wrap(ErrBackupSource, err.Error())
	}

	if err := os.MkdirAll(destination, 0755); err != nil {
		return 0, errors.Wrapf(ErrFileTransfer, "failed to create %s: %v", destination, err)
	}
	if err := copy.Copy(source, filepath.Join(destination, name)); err != nil {
		return 0, errors.Wrapf(ErrFileTransfer, "failed to copy %s: %v", source, err)
	}

	return info.Size(), nil
}

func (e *Executor) folderBackup(cfg settings.BackupConfig, destination string) (int64, int, error) {
	var filter []string
	if cfg.ExtensionOnly {
		filter = cfg.Extensions()
		e.log.WithField("extensions", filter).Debug("Target extensions")
	}

	var bytes int64
	var files int
	opts := copy.Options{
		Skip: func(info os.FileInfo, src, dest string) (bool, error) {
			if info.IsDir() {
				return false, nil
			}
			if filter != nil && !matchesExtension(info.Name(), filter) {
				return true, nil
			}
			bytes += info.Size()
			files++
			return false, nil
		},
	}

	if err := copy.Copy(cfg.BackupSource, destination, opts); err != nil {
		e.log.WithError(err).Error("Directory copy error")
		return 0, 0, errors.Wrapf(ErrFileTransfer, "failed to copy %s: %v", cfg.BackupSource, err)
	}
	return bytes, files, nil
}

func matchesExtension(name string, extensions []string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	for _, want := range extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// FormatLog renders the two-line backup log record
func FormatLog(o *Outcome) string {
	return fmt.Sprintf("Backup CPU time: %d ms\nBackup size: %.2f Mb", o.CPUTime.Milliseconds(), o.SizeMb())
}

// WriteLog writes the backup log record into dir
func WriteLog(dir string, o *Outcome) error {
	path := filepath.Join(dir, LogFileName)
	if err := os.WriteFile(path, []byte(FormatLog(o)), 0644); err != nil {
		return errors.Wrap(err, "failed to write backup log")
	}
	return nil
}
