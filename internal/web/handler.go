package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/embackup/embackup/internal/config"
	"github.com/embackup/embackup/internal/database"
	"github.com/embackup/embackup/internal/reporter"
	"github.com/embackup/embackup/internal/tracker"
	"github.com/sirupsen/logrus"
)

// Tracker is the part of the tracker service exposed over HTTP
type Tracker interface {
	Status() tracker.Status
	CancelConfirmation() bool
}

type Handler struct {
	config   *config.Config
	repo     *database.Repository
	reporter *reporter.Reporter
	tracker  Tracker
	log      logrus.FieldLogger
}

func NewHandler(cfg *config.Config, repo *database.Repository, t Tracker, log logrus.FieldLogger) *Handler {
	return &Handler{
		config:   cfg,
		repo:     repo,
		reporter: reporter.New(repo),
		tracker:  t,
		log:      log,
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/backups", h.handleBackups)
	mux.HandleFunc("/api/backups/latest", h.handleLatestBackup)
	mux.HandleFunc("/api/errors", h.handleErrors)
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/confirmation/cancel", h.handleCancel)

	mux.HandleFunc("/health", h.handleHealth)
}

func (h *Handler) handleBackups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"), 50)
	records, err := h.repo.GetRecentBackups(limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch backups: %v", err), http.StatusInternalServerError)
		return
	}

	h.respondJSON(w, records)
}

func (h *Handler) handleLatestBackup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	record, err := h.repo.GetLatestBackup()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch latest backup: %v", err), http.StatusInternalServerError)
		return
	}

	if record == nil {
		http.Error(w, "No backups found", http.StatusNotFound)
		return
	}

	h.respondJSON(w, record)
}

func (h *Handler) handleErrors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logs, err := h.repo.GetRecentErrors(parseLimit(r.URL.Query().Get("limit"), 50))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch errors: %v", err), http.StatusInternalServerError)
		return
	}

	h.respondJSON(w, logs)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := h.reporter.GenerateReport(periodType)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate report: %v", err), http.StatusBadRequest)
		return
	}

	h.respondJSON(w, report)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	st := h.tracker.Status()

	status := map[string]interface{}{
		"tracker":          st,
		"cpu_log_interval": h.config.Tracker.CPULogInterval.String(),
		"database_path":    h.config.Database.Path,
		"notifications":    h.config.Notify.Enabled,
	}

	if st.StartedAt != nil {
		status["uptime"] = humanize.RelTime(*st.StartedAt, time.Now(), "", "")
	}
	if st.LastBackup != nil {
		status["last_backup"] = map[string]interface{}{
			"when":    humanize.Time(st.LastBackup.Timestamp),
			"size":    humanize.IBytes(uint64(st.LastBackup.Bytes)),
			"success": st.LastBackup.Success,
		}
	}

	h.respondJSON(w, status)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.tracker.CancelConfirmation() {
		http.Error(w, "No confirmation pending", http.StatusConflict)
		return
	}

	h.log.Info("Pending confirmation cancelled through the API")
	h.respondJSON(w, map[string]bool{"cancelled": true})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func parseLimit(s string, def int) int {
	if s == "" {
		return def
	}
	if l, err := strconv.Atoi(s); err == nil && l > 0 {
		return l
	}
	return def
}

func (h *Handler) respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.WithError(err).Error("Error encoding JSON")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
