package main

import (
	"fmt"
	"io"

	"github.com/embackup/embackup/internal/config"
	"github.com/embackup/embackup/internal/database"
	"github.com/embackup/embackup/internal/settings"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// app carries what every command needs
type app struct {
	cfg   *config.Config
	store *settings.Store
	out   io.Writer
}

func newApp(out io.Writer) (*app, error) {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	dir, err := cfg.ResolveConfigDir()
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, store: settings.NewStore(dir), out: out}, nil
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) openRepository() (*database.Repository, func(), error) {
	path, err := a.cfg.ResolveDatabasePath()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Connect(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "failed to initialize database")
	}

	return database.NewRepository(db), func() { db.Close() }, nil
}

// withApp adapts a command body that needs an app to cobra's RunE
func withApp(fn func(a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return fn(a, cmd, args)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Emergency backup triggered by a mouse gesture",
		Long: `embackup watches the mouse pointer and starts an emergency backup when the
four screen corners are touched twice within the tracking window: first the
top-left corner, then the other three in any order.`,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newStartCmd(),
		newRunCmd(),
		newStopCmd(),
		newStatusCmd(),
		newConfigCmd(),
		newHistoryCmd(),
		newReportCmd(),
		newClearCmd(),
	)

	return root
}
