package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/embackup/embackup/internal/backup"
	"github.com/embackup/embackup/internal/cpu"
	"github.com/embackup/embackup/internal/daemon"
	"github.com/embackup/embackup/internal/logging"
	"github.com/embackup/embackup/internal/notify"
	"github.com/embackup/embackup/internal/tracker"
	"github.com/embackup/embackup/internal/web"
	"github.com/embackup/embackup/pkg/detector"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type runOptions struct {
	debug      bool
	serve      bool
	port       int
	foreground bool
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&opts.serve, "serve", false, "Expose the status API")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Status API port (default from EMBACKUP_WEB_PORT)")
}

func newStartCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the tracker daemon in the background",
		Args:  cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			dm := daemon.New(a.cfg.Daemon.PIDFile)
			running, pid, err := dm.IsRunning()
			if err != nil {
				return errors.Wrap(err, "failed to check daemon status")
			}

			if daemon.IsChild() {
				return runTracker(a, dm, opts)
			}

			if running {
				return errors.Errorf("daemon is already running (PID: %d)", pid)
			}

			// fail in the terminal rather than in the detached process
			bcfg, err := a.store.Load()
			if err != nil {
				return err
			}
			if err := bcfg.Validate(); err != nil {
				return err
			}

			child, err := daemon.Daemonize("")
			if err != nil {
				return err
			}
			if child == nil {
				return nil
			}

			logDir, _ := a.cfg.ResolveLogDir()
			a.printf("Daemon started successfully (PID: %d)\n", child.Pid)
			if opts.serve {
				a.printf("Status API available at: http://%s:%d\n", a.cfg.Web.Host, apiPort(a, opts))
			}
			a.printf("Logs: %s\n", logDir)
			return nil
		}),
	}
	addRunFlags(cmd, opts)
	return cmd
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{foreground: true}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the tracker in the foreground",
		Args:  cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			dm := daemon.New(a.cfg.Daemon.PIDFile)
			running, pid, err := dm.IsRunning()
			if err != nil {
				return errors.Wrap(err, "failed to check daemon status")
			}
			if running {
				return errors.Errorf("daemon is already running (PID: %d)", pid)
			}
			return runTracker(a, dm, opts)
		}),
	}
	addRunFlags(cmd, opts)
	return cmd
}

func apiPort(a *app, opts *runOptions) int {
	if opts.port > 0 {
		return opts.port
	}
	return a.cfg.Web.Port
}

// runTracker wires every collaborator and blocks until SIGINT or SIGTERM
func runTracker(a *app, dm *daemon.Daemon, opts *runOptions) error {
	logDir, err := a.cfg.ResolveLogDir()
	if err != nil {
		return err
	}

	logOpts := logging.Options{Dir: logDir, Debug: opts.debug}
	if opts.foreground {
		logOpts.Console = os.Stderr
	}
	loggers, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	defer loggers.Close()
	log := loggers.General

	bcfg, err := a.store.Load()
	if err != nil {
		log.WithError(err).Error("Failed to load settings")
		return err
	}

	repo, closeDB, err := a.openRepository()
	if err != nil {
		log.WithError(err).Error("Failed to open history database")
		return err
	}
	defer closeDB()

	backend, err := detector.New()
	if err != nil {
		log.WithError(err).Error("Failed to initialize pointer backend")
		return err
	}
	defer backend.Close()
	log.Infof("Pointer backend initialized: %s", backend.GetDisplayServer())

	source, err := cpu.NewProcessSource()
	if err != nil {
		return err
	}

	if err := dm.WritePID(); err != nil {
		return errors.Wrap(err, "failed to write PID file")
	}
	defer dm.RemovePID()

	if err := a.store.SetActive(true); err != nil {
		log.WithError(err).Warn("Failed to record active flag")
	}
	defer func() {
		if err := a.store.SetActive(false); err != nil {
			log.WithError(err).Warn("Failed to clear active flag")
		}
	}()

	svc := tracker.NewService(a.cfg, repo, tracker.Deps{
		Display:       backend,
		Sampler:       backend,
		Backuper:      backup.NewExecutor(cpu.Clock(source), log),
		Notifier:      notify.New(a.cfg.Notify.Enabled, a.cfg.Notify.AppName, log),
		CPU:           cpu.NewSampler(source, loggers.CPU),
		DisplayServer: backend.GetDisplayServer(),
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.serve {
		server := web.NewServer(a.cfg, repo, svc, opts.port, log)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Status API error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("Error shutting down status API")
			}
		}()
	}

	log.Infof("Starting %s tracker", appName)
	log.Debugf("%s", a.cfg.String())
	log.Debugf("%s", bcfg.String())

	if err := svc.StartTracking(ctx, bcfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("Tracker error")
		return err
	}

	log.Info("Tracker stopped successfully")
	return nil
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the tracker daemon",
		Args:  cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			dm := daemon.New(a.cfg.Daemon.PIDFile)

			running, pid, err := dm.IsRunning()
			if err != nil {
				return errors.Wrap(err, "failed to check daemon status")
			}

			if !running {
				a.printf("Daemon is not running\n")
				return a.store.SetActive(false)
			}

			a.printf("Stopping daemon (PID: %d)...\n", pid)
			if err := dm.Stop(); err != nil {
				return errors.Wrap(err, "failed to stop daemon")
			}
			if err := a.store.SetActive(false); err != nil {
				return err
			}

			a.printf("Daemon stopped successfully\n")
			return nil
		}),
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and the last backup",
		Args:  cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			dm := daemon.New(a.cfg.Daemon.PIDFile)

			running, pid, err := dm.IsRunning()
			if err != nil {
				return errors.Wrap(err, "failed to check daemon status")
			}

			if running {
				a.printf("Status: Running (PID: %d)\n", pid)
			} else {
				a.printf("Status: Not running\n")
			}

			bcfg, err := a.store.Load()
			if err != nil {
				return err
			}
			a.printf("Active: %v\n", bcfg.Active)
			a.printf("Display: %s\n", detector.DetectDisplayServer())

			repo, closeDB, err := a.openRepository()
			if err != nil {
				return err
			}
			defer closeDB()

			latest, err := repo.GetLatestBackup()
			if err != nil {
				return err
			}
			if latest == nil {
				a.printf("Last backup: never\n")
				return nil
			}

			result := "succeeded"
			if !latest.Success {
				result = "failed"
			}
			a.printf("Last backup: %s, %s (%s)\n", humanize.Time(latest.Timestamp), result, humanize.IBytes(uint64(latest.Bytes)))
			return nil
		}),
	}
}
