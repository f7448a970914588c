package settings

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultDirName = ".emergency-backup"
	fileName       = "config.yaml"
)

// DefaultDir returns ~/.emergency-backup
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", errors.Wrap(ErrHomeDirectory, "failed to resolve settings directory")
	}
	return filepath.Join(home, defaultDirName), nil
}

// Store persists a BackupConfig as YAML. Every read-modify-write round trip
// holds an advisory lock so the CLI and the daemon never interleave writes.
type Store struct {
	mu   sync.Mutex
	dir  string
	path string
	lock *flock.Flock
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	path := filepath.Join(dir, fileName)
	return &Store{
		dir:  dir,
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Dir returns the directory holding the settings file
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the settings file path
func (s *Store) Path() string {
	return s.path
}

// EnsureDir creates the settings directory if needed
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create settings directory")
	}
	return nil
}

// Load reads the settings file, creating it with defaults when missing
func (s *Store) Load() (BackupConfig, error) {
	if err := s.acquire(); err != nil {
		return BackupConfig{}, err
	}
	defer s.release()

	return s.readOrCreate()
}

// Save overwrites the settings file
func (s *Store) Save(cfg BackupConfig) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	return s.write(cfg)
}

// Update applies fn to the stored configuration and saves the result.
// Nothing is written when fn returns an error.
func (s *Store) Update(fn func(*BackupConfig) error) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	cfg, err := s.readOrCreate()
	if err != nil {
		return err
	}
	if err := fn(&cfg); err != nil {
		return err
	}
	return s.write(cfg)
}

// SetActive records whether the tracker daemon is running
func (s *Store) SetActive(active bool) error {
	return s.Update(func(cfg *BackupConfig) error {
		cfg.Active = active
		return nil
	})
}

func (s *Store) SetMillisUpdateTime(ms uint32) error {
	if ms == 0 {
		return ErrZeroSampleInterval
	}
	return s.Update(func(cfg *BackupConfig) error {
		cfg.MillisUpdateFrequency = ms
		return nil
	})
}

func (s *Store) SetTrackingWindowSec(secs uint32) error {
	if secs == 0 {
		return ErrZeroTrackingWindow
	}
	return s.Update(func(cfg *BackupConfig) error {
		cfg.TrackingWindowSec = secs
		return nil
	})
}

func (s *Store) SetTolerance(tolerance uint32) error {
	return s.Update(func(cfg *BackupConfig) error {
		cfg.Tolerance = tolerance
		return nil
	})
}

// SetSource stores the canonical absolute form of path, which must exist
func (s *Store) SetSource(path string) error {
	full, err := canonicalize(path)
	if err != nil {
		return err
	}
	return s.Update(func(cfg *BackupConfig) error {
		cfg.BackupSource = full
		return nil
	})
}

// SetDestination stores the canonical absolute form of path, which must exist
func (s *Store) SetDestination(path string) error {
	full, err := canonicalize(path)
	if err != nil {
		return err
	}
	return s.Update(func(cfg *BackupConfig) error {
		cfg.BackupDestination = full
		return nil
	})
}

// SetExtensionOnly accepts exactly "true" or "false"
func (s *Store) SetExtensionOnly(value string) error {
	if value != "true" && value != "false" {
		return ErrExtensionOnlyValue
	}
	enabled, _ := strconv.ParseBool(value)
	return s.Update(func(cfg *BackupConfig) error {
		cfg.ExtensionOnly = enabled
		return nil
	})
}

// SetExtensionTypes stores the given extensions. Entries may be separated by
// spaces or commas and may carry a leading dot.
func (s *Store) SetExtensionTypes(types []string) error {
	exts := SplitExtensions(types)
	for _, ext := range exts {
		if !extensionPattern.MatchString(ext) {
			return errors.Wrapf(ErrExtensionFormat, "invalid extension %q", ext)
		}
	}
	return s.Update(func(cfg *BackupConfig) error {
		cfg.ExtensionType = exts
		return nil
	})
}

func (s *Store) SetMode(mode string) error {
	m, err := ParseMode(mode)
	if err != nil {
		return err
	}
	return s.Update(func(cfg *BackupConfig) error {
		cfg.Mode = string(m)
		return nil
	})
}

// SplitExtensions flattens comma or space separated extension arguments
func SplitExtensions(args []string) []string {
	var exts []string
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			if ext := strings.TrimPrefix(strings.TrimSpace(field), "."); ext != "" {
				exts = append(exts, ext)
			}
		}
	}
	return exts
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve %s", path)
	}
	full, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve %s", path)
	}
	return full, nil
}

// acquire serializes goroutines of this process with mu and other processes
// with the lock file
func (s *Store) acquire() error {
	if err := s.EnsureDir(); err != nil {
		return err
	}
	s.mu.Lock()
	if err := s.lock.Lock(); err != nil {
		s.mu.Unlock()
		return errors.Wrap(err, "failed to lock settings file")
	}
	return nil
}

func (s *Store) release() {
	_ = s.lock.Unlock()
	s.mu.Unlock()
}

func (s *Store) readOrCreate() (BackupConfig, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		cfg := Default()
		if err := s.write(cfg); err != nil {
			return BackupConfig{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return BackupConfig{}, errors.Wrap(ErrLoadSettings, err.Error())
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return BackupConfig{}, errors.Wrapf(ErrLoadSettings, "failed to parse %s: %v", s.path, err)
	}
	return cfg, nil
}

func (s *Store) write(cfg BackupConfig) error {
	tmp, err := os.CreateTemp(s.dir, fileName+".*")
	if err != nil {
		return errors.Wrapf(ErrApplySettings, "failed to create temporary file: %v", err)
	}
	defer os.Remove(tmp.Name())

	enc := yaml.NewEncoder(tmp)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		tmp.Close()
		return errors.Wrapf(ErrApplySettings, "failed to encode settings: %v", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return errors.Wrapf(ErrApplySettings, "failed to encode settings: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(ErrApplySettings, "failed to close settings file: %v", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrapf(ErrApplySettings, "failed to replace settings file: %v", err)
	}
	return nil
}
