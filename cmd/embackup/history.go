package main

import (
	"bufio"
	"strings"

	"github.com/embackup/embackup/internal/reporter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the most recent backups",
		Args:  cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			repo, closeDB, err := a.openRepository()
			if err != nil {
				return err
			}
			defer closeDB()

			records, err := repo.GetRecentBackups(limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				a.printf("No backups recorded yet.\n")
				return nil
			}

			a.printf("%s", reporter.FormatBackupTable(records))
			return nil
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of backups to show")
	return cmd
}

func newReportCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:       "report [day|week|month]",
		Short:     "Summarise backups and mouse commands for a period",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"day", "week", "month"},
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			periodType := "day"
			if len(args) > 0 {
				periodType = args[0]
			}

			repo, closeDB, err := a.openRepository()
			if err != nil {
				return err
			}
			defer closeDB()

			rep := reporter.New(repo)
			report, err := rep.GenerateReport(periodType)
			if err != nil {
				return errors.Wrap(err, "failed to generate report")
			}

			if jsonOutput {
				out, err := rep.FormatReportJSON(report)
				if err != nil {
					return err
				}
				a.printf("%s\n", out)
				return nil
			}

			a.printf("%s\n", rep.FormatReportText(report))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	return cmd
}

func newClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the backup history",
		Args:  cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			if !yes {
				a.printf("This will delete the whole backup history. Are you sure? (yes/no): ")
				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				response = strings.TrimSpace(response)
				if response != "yes" && response != "y" {
					a.printf("Operation cancelled\n")
					return nil
				}
			}

			repo, closeDB, err := a.openRepository()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repo.Clear(); err != nil {
				return errors.Wrap(err, "failed to clear database")
			}

			a.printf("History cleared successfully\n")
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
