package reporter

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/embackup/embackup/internal/database"
	"github.com/embackup/embackup/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReporter(t *testing.T, now time.Time) (*Reporter, *database.Repository) {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	r := New(repo)
	r.now = func() time.Time { return now }
	return r, repo
}

func TestGetPeriod(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 5, 15, 14, 30, 0, 0, time.Local)
	r, _ := newTestReporter(t, now)

	tests := []struct {
		period string
		start  time.Time
		end    time.Time
	}{
		{"day", time.Date(2024, 5, 15, 0, 0, 0, 0, time.Local), time.Date(2024, 5, 16, 0, 0, 0, 0, time.Local)},
		{"week", time.Date(2024, 5, 13, 0, 0, 0, 0, time.Local), time.Date(2024, 5, 20, 0, 0, 0, 0, time.Local)},
		{"month", time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local), time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			p, err := r.getPeriod(tt.period)
			require.NoError(t, err)
			assert.True(t, tt.start.Equal(p.Start), "start %v", p.Start)
			assert.True(t, tt.end.Equal(p.End), "end %v", p.End)
		})
	}

	_, err := r.getPeriod("year")
	assert.Error(t, err)
}

func TestGenerateReport(t *testing.T) {
	now := time.Now()
	r, repo := newTestReporter(t, now)

	require.NoError(t, repo.CreateBackup(&models.BackupRecord{
		Timestamp: now, SessionID: "s1", Mode: "folder", Destination: "/mnt/usb/emergency-backup",
		Success: true, Bytes: 3 * 1024 * 1024, ElapsedMs: 1200,
	}))
	require.NoError(t, repo.CreateBackup(&models.BackupRecord{
		Timestamp: now, SessionID: "s2", Mode: "file", Success: false, ErrorMsg: "file transfer failed",
	}))
	require.NoError(t, repo.CreateGestureEvent(&models.GestureEvent{Timestamp: now, SessionID: "s1", Kind: models.EventFirstCommand}))

	report, err := r.GenerateReport("day")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Summary.TotalBackups)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, int64(1), report.Gestures[models.EventFirstCommand])
	assert.Len(t, report.Backups, 2)

	text := r.FormatReportText(report)
	assert.Contains(t, text, "Backup Report - day")
	assert.Contains(t, text, "Backups: 2 (1 succeeded, 1 failed), 3.0 MiB copied")
	assert.Contains(t, text, "Mouse commands: 1 first, 0 expired, 0 cancelled")
	assert.Contains(t, text, "/mnt/usb/emergency-backup")
	assert.Contains(t, text, "failed")

	out, err := r.FormatReportJSON(report)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "summary")
}

func TestEmptyReport(t *testing.T) {
	r, _ := newTestReporter(t, time.Now())

	report, err := r.GenerateReport("week")
	require.NoError(t, err)

	assert.Contains(t, r.FormatReportText(report), "No backups recorded for this period.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
