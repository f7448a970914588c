package main

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const restartReminder = "Configuration updated, restart the tracker for the change to take effect\n"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the backup settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current settings",
			Args:  cobra.NoArgs,
			RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
				bcfg, err := a.store.Load()
				if err != nil {
					return err
				}
				a.printf("Settings file: %s\n%s\n", a.store.Path(), bcfg.String())
				return nil
			}),
		},
		uintSetter("set-millis-update-time <ms>", "Set the mouse sampling period in milliseconds", func(a *app, v uint32) error {
			return a.store.SetMillisUpdateTime(v)
		}),
		uintSetter("set-tracking-window-sec <seconds>", "Set the time allowed for the second mouse command", func(a *app, v uint32) error {
			return a.store.SetTrackingWindowSec(v)
		}),
		uintSetter("set-tolerance <pixels>", "Set the corner tolerance in pixels", func(a *app, v uint32) error {
			return a.store.SetTolerance(v)
		}),
		stringSetter("set-source <path>", "Set the file or folder to back up", func(a *app, v string) error {
			return a.store.SetSource(v)
		}),
		stringSetter("set-destination <path>", "Set the folder receiving the backup", func(a *app, v string) error {
			return a.store.SetDestination(v)
		}),
		stringSetter("set-extension-only <true|false>", "Copy only files with the configured extensions", func(a *app, v string) error {
			return a.store.SetExtensionOnly(v)
		}),
		stringSetter("set-mode <file|folder>", "Set the backup mode", func(a *app, v string) error {
			return a.store.SetMode(v)
		}),
		&cobra.Command{
			Use:   "set-extension-type <ext>...",
			Short: "Set the extensions copied when extension-only is enabled, e.g. 'txt pdf png'",
			Args:  cobra.MinimumNArgs(1),
			RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
				if err := a.store.SetExtensionTypes(args); err != nil {
					return err
				}
				a.printf(restartReminder)
				return nil
			}),
		},
	)

	return cmd
}

func uintSetter(use, short string, set func(a *app, v uint32) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return errors.Errorf("invalid value %q, a non-negative integer is required", args[0])
			}
			if err := set(a, uint32(v)); err != nil {
				return err
			}
			a.printf(restartReminder)
			return nil
		}),
	}
}

func stringSetter(use, short string, set func(a *app, v string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			if err := set(a, args[0]); err != nil {
				return err
			}
			a.printf(restartReminder)
			return nil
		}),
	}
}
