package reporter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/embackup/embackup/internal/database"
	"github.com/embackup/embackup/internal/models"
	"github.com/pkg/errors"
)

// Reporter handles report generation
type Reporter struct {
	repo *database.Repository
	now  func() time.Time
}

// New creates a new reporter
func New(repo *database.Repository) *Reporter {
	return &Reporter{
		repo: repo,
		now:  time.Now,
	}
}

// GenerateReport generates a backup report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	// SQL does the SUM, runtime derives the average
	summary, err := r.repo.GetBackupSummarySince(period.Start)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get backup summary")
	}

	backups, err := r.repo.GetBackupsSince(period.Start)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get backups")
	}

	counts, err := r.repo.GetGestureCountsSince(period.Start)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gesture counts")
	}
	gestures := make(map[string]int64, len(counts))
	for _, c := range counts {
		gestures[c.Kind] = c.Count
	}

	report := &models.Report{
		Period:      *period,
		Summary:     *summary,
		Gestures:    gestures,
		Backups:     backups,
		GeneratedAt: r.now(),
	}

	return report, nil
}

// getPeriod calculates the time range for the report
func (r *Reporter) getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := r.now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.Add(24 * time.Hour)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	output := fmt.Sprintf("Backup Report - %s\n", report.Period.Type)
	output += fmt.Sprintf("Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	output += fmt.Sprintf("Mouse commands: %d first, %d expired, %d cancelled\n",
		report.Gestures[models.EventFirstCommand],
		report.Gestures[models.EventExpired],
		report.Gestures[models.EventCancelled])
	output += fmt.Sprintf("Backups: %d (%d succeeded, %d failed), %s copied\n\n",
		report.Summary.TotalBackups,
		report.Summary.Succeeded,
		report.Summary.Failed,
		humanize.IBytes(uint64(report.Summary.TotalBytes)))

	if len(report.Backups) == 0 {
		output += "No backups recorded for this period.\n"
		return output
	}

	output += FormatBackupTable(report.Backups)
	return output
}

// FormatBackupTable renders backup records one per line
func FormatBackupTable(records []*models.BackupRecord) string {
	output := fmt.Sprintf("%-19s %-7s %-8s %10s %10s  %s\n", "Time", "Mode", "Result", "Size", "Elapsed", "Destination")
	output += fmt.Sprintf("%s\n", "--------------------------------------------------------------------------------")

	for _, b := range records {
		result := "ok"
		if !b.Success {
			result = "failed"
		}
		output += fmt.Sprintf("%-19s %-7s %-8s %10s %10s  %s\n",
			b.Timestamp.Format("2006-01-02 15:04:05"),
			b.Mode,
			result,
			humanize.IBytes(uint64(b.Bytes)),
			(time.Duration(b.ElapsedMs) * time.Millisecond).String(),
			truncate(b.Destination, 40))
	}

	return output
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}
	return string(data), nil
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
