package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/embackup/embackup/internal/backup"
	"github.com/embackup/embackup/internal/config"
	"github.com/embackup/embackup/internal/database"
	"github.com/embackup/embackup/internal/gesture"
	"github.com/embackup/embackup/internal/models"
	"github.com/embackup/embackup/internal/notify"
	"github.com/embackup/embackup/internal/settings"
	"github.com/embackup/embackup/pkg/pointer"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrAlreadyRunning = errors.New("tracker is already running")

// Deps are the collaborators of a Service
type Deps struct {
	Display  pointer.Display
	Sampler  pointer.Sampler
	Backuper gesture.Backuper
	Notifier notify.Notifier
	// CPU is optional
	CPU gesture.CPULogger
	// DisplayServer is reported in the status, e.g. "x11"
	DisplayServer string
}

// Status is a snapshot of the tracker for the CLI and the status API
type Status struct {
	Running        bool                 `json:"running"`
	StartedAt      *time.Time           `json:"started_at,omitempty"`
	DisplayServer  string               `json:"display_server,omitempty"`
	Screen         string               `json:"screen,omitempty"`
	PendingSession string               `json:"pending_session,omitempty"`
	BackupRunning  bool                 `json:"backup_running"`
	LastBackup     *models.BackupRecord `json:"last_backup,omitempty"`
	LastError      string               `json:"last_error,omitempty"`
}

// Service runs the gesture tracking loop and records what happens in it
type Service struct {
	config *config.Config
	repo   *database.Repository
	deps   Deps
	log    logrus.FieldLogger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	primary *gesture.Machine
	backup  settings.BackupConfig
	status  Status
}

func NewService(cfg *config.Config, repo *database.Repository, deps Deps, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		config: cfg,
		repo:   repo,
		deps:   deps,
		log:    log,
	}
}

// StartTracking validates bcfg, queries the primary screen once and runs the
// tracking loop until ctx is cancelled or Stop is called. Configuration
// problems are returned before the loop starts.
func (s *Service) StartTracking(ctx context.Context, bcfg settings.BackupConfig) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.mu.Unlock()

	if err := bcfg.Validate(); err != nil {
		s.storeError("tracker", err)
		return err
	}

	bounds, err := s.deps.Display.PrimaryScreenBounds()
	if err != nil {
		s.storeError("tracker", err)
		return errors.Wrap(err, "failed to query primary screen")
	}

	primary, err := gesture.NewPrimary(gesture.Options{
		Config:         bcfg,
		Bounds:         bounds,
		Sampler:        s.deps.Sampler,
		Backuper:       s.deps.Backuper,
		Listener:       s,
		CPU:            s.deps.CPU,
		CPULogInterval: s.config.Tracker.CPULogInterval,
		Logger:         s.log,
	}, time.Now())
	if err != nil {
		s.storeError("tracker", err)
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	started := time.Now()
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.cancel = cancel
	s.primary = primary
	s.backup = bcfg
	s.status.Running = true
	s.status.StartedAt = &started
	s.status.DisplayServer = s.deps.DisplayServer
	s.status.Screen = bounds.String()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"screen":          bounds.String(),
		"sample_interval": bcfg.SampleInterval(),
		"tracking_window": bcfg.TrackingWindow(),
		"tolerance":       bcfg.Tolerance,
		"mode":            bcfg.Mode,
	}).Info("Mouse tracking started")

	primary.Run(loopCtx)

	s.mu.Lock()
	s.running = false
	s.cancel = nil
	s.primary = nil
	s.status.Running = false
	s.status.StartedAt = nil
	s.status.PendingSession = ""
	s.mu.Unlock()

	s.log.Info("Mouse tracking stopped")
	return ctx.Err()
}

// Stop ends a running tracking loop
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// CancelConfirmation cancels the pending confirmation, if any, and reports
// whether one was cancelled. A backup that has started runs to completion.
func (s *Service) CancelConfirmation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.primary == nil || s.status.PendingSession == "" || s.status.BackupRunning {
		return false
	}
	s.primary.CancelPending()
	return true
}

// Status returns a snapshot of the tracker state
func (s *Service) Status() Status {
	s.mu.Lock()
	st := s.status
	s.mu.Unlock()

	if st.LastBackup == nil && s.repo != nil {
		if latest, err := s.repo.GetLatestBackup(); err == nil {
			st.LastBackup = latest
		}
	}
	return st
}

func (s *Service) FirstCommand(sessionID string) {
	s.mu.Lock()
	s.status.PendingSession = sessionID
	s.mu.Unlock()

	s.notify(s.config.Notify.Summary, s.config.Notify.FirstCommand)
	s.recordEvent(sessionID, models.EventFirstCommand)
}

func (s *Service) SecondCommand(sessionID string) {
	s.mu.Lock()
	s.status.BackupRunning = true
	s.mu.Unlock()

	s.notify(s.config.Notify.Summary, s.config.Notify.SecondCommand)
	s.recordEvent(sessionID, models.EventSecondCommand)
}

func (s *Service) BackupFinished(sessionID string, outcome *backup.Outcome, err error) {
	s.mu.Lock()
	bcfg := s.backup
	s.mu.Unlock()

	record := &models.BackupRecord{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Mode:      bcfg.Mode,
		Source:    bcfg.BackupSource,
	}
	if err != nil {
		record.ErrorMsg = err.Error()
		s.notify(s.config.Notify.ErrorSummary, s.config.Notify.BackupError)
		s.storeError("backup", err)
	} else {
		record.Success = outcome.Success
		record.Mode = string(outcome.Mode)
		record.Destination = outcome.Destination
		record.Bytes = outcome.Bytes
		record.Files = outcome.Files
		record.ElapsedMs = outcome.Elapsed.Milliseconds()
		record.CPUTimeMs = outcome.CPUTime.Milliseconds()
		record.LogWritten = outcome.LogWritten
		s.notify(s.config.Notify.Summary, s.config.Notify.BackupDone)
	}

	if s.repo != nil {
		if dbErr := s.repo.CreateBackup(record); dbErr != nil {
			s.log.WithError(dbErr).Error("Failed to store backup record")
		}
	}

	s.mu.Lock()
	s.status.BackupRunning = false
	s.status.PendingSession = ""
	s.status.LastBackup = record
	s.mu.Unlock()
}

func (s *Service) ConfirmationExpired(sessionID string) {
	s.clearPending(sessionID)
	s.recordEvent(sessionID, models.EventExpired)
}

func (s *Service) ConfirmationCancelled(sessionID string) {
	s.clearPending(sessionID)
	s.recordEvent(sessionID, models.EventCancelled)
}

func (s *Service) clearPending(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.PendingSession == sessionID {
		s.status.PendingSession = ""
	}
}

func (s *Service) notify(summary, body string) {
	if s.deps.Notifier == nil {
		return
	}
	if err := s.deps.Notifier.Notify(summary, body); err != nil {
		s.log.WithError(err).Warn("Failed to send notification")
		s.storeError("notify", err)
	}
}

func (s *Service) recordEvent(sessionID, kind string) {
	if s.repo == nil {
		return
	}
	event := &models.GestureEvent{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Kind:      kind,
	}
	if err := s.repo.CreateGestureEvent(event); err != nil {
		s.log.WithError(err).Warn("Failed to store gesture event")
	}
}

func (s *Service) storeError(component string, err error) {
	s.mu.Lock()
	s.status.LastError = err.Error()
	s.mu.Unlock()

	if s.repo == nil {
		return
	}

	errorLog := &models.ErrorLog{
		Timestamp: time.Now(),
		Component: component,
		ErrorMsg:  err.Error(),
	}

	if dbErr := s.repo.CreateErrorLog(errorLog); dbErr != nil {
		s.log.WithError(dbErr).Errorf("Failed to store error in database (original error: %v)", err)
	} else {
		s.log.WithError(err).Debug("Error logged to database")
	}
}
