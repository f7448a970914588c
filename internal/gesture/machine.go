package gesture

import (
	"context"
	"sync"
	"time"

	"github.com/embackup/embackup/internal/backup"
	"github.com/embackup/embackup/internal/settings"
	"github.com/embackup/embackup/pkg/pointer"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Role distinguishes the long-lived primary machine from the short-lived
// machine spawned to wait for the confirming command
type Role int

const (
	RolePrimary Role = iota
	RoleConfirming
)

func (r Role) String() string {
	if r == RoleConfirming {
		return "confirming"
	}
	return "primary"
}

// Stage is the state of a Machine
type Stage int

const (
	StageIdle Stage = iota
	// StageArmed: the primary saw the first command and a confirming machine is running
	StageArmed
	StageConfirming
	StageTriggered
	StageExpired
	StageCancelled
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageArmed:
		return "armed"
	case StageConfirming:
		return "confirming"
	case StageTriggered:
		return "triggered"
	case StageExpired:
		return "expired"
	case StageCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether a machine in this stage has stopped
func (s Stage) Terminal() bool {
	return s == StageTriggered || s == StageExpired || s == StageCancelled
}

// Backuper runs the backup described by cfg
type Backuper interface {
	Backup(cfg settings.BackupConfig) (*backup.Outcome, error)
}

// Listener receives the one-shot notifications of every machine. The primary
// and confirming machines call it from different goroutines.
type Listener interface {
	FirstCommand(sessionID string)
	SecondCommand(sessionID string)
	BackupFinished(sessionID string, outcome *backup.Outcome, err error)
	ConfirmationExpired(sessionID string)
	ConfirmationCancelled(sessionID string)
}

// CPULogger samples process CPU usage for the diagnostic log
type CPULogger interface {
	LogOnce()
}

// Options configures a primary Machine; confirming machines inherit them
type Options struct {
	Config   settings.BackupConfig
	Bounds   pointer.ScreenBounds
	Sampler  pointer.Sampler
	Backuper Backuper
	Listener Listener

	// CPU is optional. It is invoked when more than CPULogInterval has passed
	// since the previous call.
	CPU            CPULogger
	CPULogInterval time.Duration

	Logger logrus.FieldLogger
}

// Result is reported by a confirming machine to its primary when it stops
type Result struct {
	SessionID string
	Stage     Stage
}

// Machine detects the four-corner mouse command. A primary machine samples
// forever and spawns a confirming machine when it sees the first command; the
// confirming machine runs the backup if the command is repeated within the
// tracking window. Machines share no mutable state: each owns its history and
// timestamps, and a confirming machine reports back only through a channel.
type Machine struct {
	opts    Options
	id      string
	role    Role
	stage   Stage
	history *HistoryBuffer
	log     logrus.FieldLogger

	spawnedAt  time.Time
	lastCPULog time.Time

	// confirming machines only
	report chan<- Result

	// primary only
	inbox         chan Result
	cancelReq     chan struct{}
	pending       string
	cancelPending context.CancelFunc
	spawn         func(ctx context.Context, child *Machine)
	confirming    sync.WaitGroup
}

// NewPrimary validates opts and builds the primary machine
func NewPrimary(opts Options, now time.Time) (*Machine, error) {
	if err := opts.Bounds.Validate(); err != nil {
		return nil, err
	}
	if opts.Config.SampleInterval() <= 0 {
		return nil, settings.ErrZeroSampleInterval
	}
	if opts.Config.TrackingWindow() <= 0 {
		return nil, settings.ErrZeroTrackingWindow
	}
	if opts.Config.HistoryCapacity() < 1 {
		return nil, settings.ErrZeroHistoryCapacity
	}
	if opts.Sampler == nil || opts.Backuper == nil || opts.Listener == nil {
		return nil, errors.New("gesture: sampler, backuper and listener are required")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	m := &Machine{
		opts:       opts,
		id:         uuid.NewString(),
		role:       RolePrimary,
		stage:      StageIdle,
		history:    NewHistoryBuffer(opts.Config.HistoryCapacity()),
		spawnedAt:  now,
		lastCPULog: now,
		inbox:      make(chan Result, 1),
		cancelReq:  make(chan struct{}, 1),
	}
	m.spawn = func(ctx context.Context, child *Machine) {
		m.confirming.Add(1)
		go func() {
			defer m.confirming.Done()
			child.Run(ctx)
		}()
	}
	m.log = opts.Logger.WithFields(logrus.Fields{"session": m.id, "role": m.role})
	return m, nil
}

func (m *Machine) newConfirming(now time.Time) *Machine {
	child := &Machine{
		opts:       m.opts,
		id:         uuid.NewString(),
		role:       RoleConfirming,
		stage:      StageConfirming,
		history:    NewHistoryBuffer(m.history.Cap()),
		spawnedAt:  now,
		lastCPULog: now,
		report:     m.inbox,
	}
	child.log = m.opts.Logger.WithFields(logrus.Fields{"session": child.id, "role": child.role})
	return child
}

func (m *Machine) ID() string {
	return m.id
}

func (m *Machine) Role() Role {
	return m.role
}

// Stage returns the current stage. It must only be called from the goroutine
// running the machine, or after Run has returned.
func (m *Machine) Stage() Stage {
	return m.stage
}

// CancelPending asks the primary to cancel its running confirming machine.
// It is safe to call from any goroutine and is a no-op when nothing is pending.
func (m *Machine) CancelPending() {
	if m.cancelReq == nil {
		return
	}
	select {
	case m.cancelReq <- struct{}{}:
	default:
	}
}

// Run samples at the configured interval until the machine reaches a
// terminal stage or ctx is cancelled. The primary only returns on ctx
// cancellation, and not before its confirming machine has stopped: a backup
// already started is allowed to finish.
func (m *Machine) Run(ctx context.Context) Stage {
	ticker := time.NewTicker(m.opts.Config.SampleInterval())
	defer ticker.Stop()
	defer m.sendReport()

	m.log.Debug("Tracking loop started")
	for {
		if m.Step(ctx, time.Now()) {
			return m.stage
		}
		if !m.wait(ctx, ticker.C) {
			m.stop()
			return m.stage
		}
	}
}

// Step performs one sampling tick at time now and reports whether the machine
// has reached a terminal stage
func (m *Machine) Step(ctx context.Context, now time.Time) bool {
	if m.role == RoleConfirming && now.Sub(m.spawnedAt) > m.opts.Config.TrackingWindow() {
		m.history.Clear()
		m.stage = StageExpired
		m.log.Info("Second command listening finished without confirmation")
		m.opts.Listener.ConfirmationExpired(m.id)
		return true
	}

	pos := m.sample()
	if pos == pointer.Origin || m.history.Contains(pointer.Origin) {
		m.history.Push(pos)

		if touchesCommandCorners(m.history.Snapshot(), m.opts.Bounds, m.opts.Config.Tolerance) {
			m.history.Clear()
			if m.role == RoleConfirming {
				m.trigger()
				return true
			}
			m.arm(ctx, now)
		}
	}

	m.logCPU(now)
	return false
}

func (m *Machine) sample() pointer.Position {
	pos, err := m.opts.Sampler.CurrentPosition()
	if err != nil {
		m.log.WithError(err).Warn("Error detecting mouse position")
		return pointer.Invalid
	}
	return pos
}

func (m *Machine) arm(ctx context.Context, now time.Time) {
	if m.pending != "" {
		m.log.WithField("pending", m.pending).Debug("Mouse command detected while a confirmation is pending, ignoring")
		return
	}

	child := m.newConfirming(now)
	childCtx, cancel := context.WithCancel(ctx)
	m.pending = child.id
	m.cancelPending = cancel
	m.stage = StageArmed

	m.log.WithField("confirming_session", child.id).Info("Mouse command detected: first time scenario, listening for the second one")
	m.opts.Listener.FirstCommand(child.id)
	m.spawn(childCtx, child)
}

func (m *Machine) trigger() {
	m.log.Info("Second mouse command detected, backup starting")
	m.opts.Listener.SecondCommand(m.id)

	outcome, err := m.opts.Backuper.Backup(m.opts.Config)
	if err != nil {
		m.log.WithError(err).Error("An error occurred during the backup")
	} else {
		m.log.WithField("elapsed", outcome.Elapsed).Info("Backup done")
	}
	m.stage = StageTriggered
	m.opts.Listener.BackupFinished(m.id, outcome, err)
}

func (m *Machine) logCPU(now time.Time) {
	if m.opts.CPU == nil || now.Sub(m.lastCPULog) <= m.opts.CPULogInterval {
		return
	}
	m.lastCPULog = now
	m.opts.CPU.LogOnce()
}

// wait blocks until the next tick. The primary also handles confirming
// results and cancel requests while it waits.
func (m *Machine) wait(ctx context.Context, tick <-chan time.Time) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case res := <-m.inbox:
			m.resolve(res)
		case <-m.cancelReq:
			m.cancelConfirmation()
		case <-tick:
			return true
		}
	}
}

// resolve returns the primary to idle once its confirming machine has stopped
func (m *Machine) resolve(res Result) {
	if res.SessionID != m.pending {
		return
	}
	m.log.WithFields(logrus.Fields{"confirming_session": res.SessionID, "stage": res.Stage}).Debug("Confirming session resolved")
	if m.cancelPending != nil {
		m.cancelPending()
	}
	m.pending = ""
	m.cancelPending = nil
	m.stage = StageIdle
}

func (m *Machine) cancelConfirmation() {
	if m.pending == "" || m.cancelPending == nil {
		return
	}
	m.log.WithField("confirming_session", m.pending).Info("Cancelling second command listening")
	m.cancelPending()
}

// stop runs when ctx is cancelled
func (m *Machine) stop() {
	if m.role == RoleConfirming {
		m.stage = StageCancelled
		m.log.Info("Second command listening cancelled")
		m.opts.Listener.ConfirmationCancelled(m.id)
		return
	}
	if m.cancelPending != nil {
		m.cancelPending()
	}
	m.confirming.Wait()
	m.log.Debug("Tracking loop stopped")
}

func (m *Machine) sendReport() {
	if m.report == nil {
		return
	}
	// the channel is buffered and the primary runs at most one confirming machine
	select {
	case m.report <- Result{SessionID: m.id, Stage: m.stage}:
	default:
		m.log.Warn("Primary did not accept confirming result")
	}
}
