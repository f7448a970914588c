package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/embackup/embackup/internal/config"
	"github.com/embackup/embackup/internal/database"
	"github.com/embackup/embackup/internal/models"
	"github.com/embackup/embackup/internal/tracker"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTracker struct {
	status    tracker.Status
	pending   bool
	cancelled int
}

func (f *fakeTracker) Status() tracker.Status {
	return f.status
}

func (f *fakeTracker) CancelConfirmation() bool {
	if !f.pending {
		return false
	}
	f.cancelled++
	f.pending = false
	return true
}

func newTestMux(t *testing.T) (*http.ServeMux, *database.Repository, *fakeTracker) {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	ft := &fakeTracker{}
	logger, _ := test.NewNullLogger()

	mux := http.NewServeMux()
	NewHandler(config.Default(), repo, ft, logger).SetupRoutes(mux)
	return mux, repo, ft
}

func do(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	mux, _, _ := newTestMux(t)

	rec := do(mux, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestBackupsEndpoints(t *testing.T) {
	mux, repo, _ := newTestMux(t)

	rec := do(mux, http.MethodGet, "/api/backups/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateBackup(&models.BackupRecord{
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
			SessionID: string(rune('a' + i)),
			Mode:      "folder",
			Success:   true,
		}))
	}

	rec = do(mux, http.MethodGet, "/api/backups?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []models.BackupRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].SessionID)

	rec = do(mux, http.MethodGet, "/api/backups/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session_id":"c"`)

	rec = do(mux, http.MethodPost, "/api/backups")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReportEndpoint(t *testing.T) {
	mux, _, _ := newTestMux(t)

	rec := do(mux, http.MethodGet, "/api/report?period=week")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"week"`)

	rec = do(mux, http.MethodGet, "/api/report?period=decade")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusEndpoint(t *testing.T) {
	mux, _, ft := newTestMux(t)
	started := time.Now().Add(-time.Hour)
	ft.status = tracker.Status{
		Running:       true,
		StartedAt:     &started,
		DisplayServer: "x11",
		LastBackup:    &models.BackupRecord{Timestamp: started, Bytes: 2048, Success: true},
	}

	rec := do(mux, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	trackerStatus := body["tracker"].(map[string]interface{})
	assert.Equal(t, true, trackerStatus["running"])
	assert.Equal(t, "x11", trackerStatus["display_server"])
	assert.Equal(t, "2m0s", body["cpu_log_interval"])
	assert.Contains(t, body["uptime"], "1 hour")
	lastBackup := body["last_backup"].(map[string]interface{})
	assert.Equal(t, "2.0 KiB", lastBackup["size"])
}

func TestCancelEndpoint(t *testing.T) {
	mux, _, ft := newTestMux(t)

	rec := do(mux, http.MethodPost, "/api/confirmation/cancel")
	assert.Equal(t, http.StatusConflict, rec.Code)

	ft.pending = true
	rec = do(mux, http.MethodPost, "/api/confirmation/cancel")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, ft.cancelled)

	rec = do(mux, http.MethodGet, "/api/confirmation/cancel")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 50, parseLimit("", 50))
	assert.Equal(t, 5, parseLimit("5", 50))
	assert.Equal(t, 50, parseLimit("-1", 50))
	assert.Equal(t, 50, parseLimit("abc", 50))
}
