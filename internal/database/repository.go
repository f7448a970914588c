package database

import (
	"time"

	"github.com/embackup/embackup/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = gorm.ErrRecordNotFound

// Repository handles all database operations for the backup history
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateBackup inserts a backup attempt into the database
func (r *Repository) CreateBackup(record *models.BackupRecord) error {
	result := r.db.Create(record)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert backup record")
	}
	return nil
}

// GetBackupByID retrieves a backup record by its ID
func (r *Repository) GetBackupByID(id uint) (*models.BackupRecord, error) {
	var record models.BackupRecord
	result := r.db.First(&record, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get backup record")
	}
	return &record, nil
}

// GetBackupsSince retrieves all backup records since a given time, oldest first
func (r *Repository) GetBackupsSince(since time.Time) ([]*models.BackupRecord, error) {
	var records []*models.BackupRecord
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC").Find(&records)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query backup records")
	}

	return records, nil
}

// GetRecentBackups returns the latest limit backup records, newest first
func (r *Repository) GetRecentBackups(limit int) ([]*models.BackupRecord, error) {
	var records []*models.BackupRecord
	result := r.db.Order("timestamp DESC").Limit(limit).Find(&records)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query recent backups")
	}
	return records, nil
}

// GetLatestBackup retrieves the most recent backup record, or nil
func (r *Repository) GetLatestBackup() (*models.BackupRecord, error) {
	var record models.BackupRecord
	result := r.db.Order("timestamp DESC").First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest backup")
	}
	return &record, nil
}

// GetBackupSummarySince aggregates backups since a given time
// Uses SQL SUM for efficiency - runtime computes the average
func (r *Repository) GetBackupSummarySince(since time.Time) (*models.BackupSummary, error) {
	var row struct {
		TotalBackups   int
		Succeeded      int
		TotalBytes     int64
		TotalElapsedMs int64
	}

	result := r.db.Model(&models.BackupRecord{}).
		Select("COUNT(*) as total_backups, "+
			"COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) as succeeded, "+
			"COALESCE(SUM(bytes), 0) as total_bytes, "+
			"COALESCE(SUM(elapsed_ms), 0) as total_elapsed_ms").
		Where("timestamp >= ?", since).
		Scan(&row)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query backup summary")
	}

	summary := &models.BackupSummary{
		TotalBackups:   row.TotalBackups,
		Succeeded:      row.Succeeded,
		Failed:         row.TotalBackups - row.Succeeded,
		TotalBytes:     row.TotalBytes,
		TotalElapsedMs: row.TotalElapsedMs,
	}
	if row.TotalBackups > 0 {
		summary.AvgElapsedMs = float64(row.TotalElapsedMs) / float64(row.TotalBackups)
	}
	return summary, nil
}

// CreateGestureEvent inserts a gesture event into the database
func (r *Repository) CreateGestureEvent(event *models.GestureEvent) error {
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert gesture event")
	}
	return nil
}

// GetGestureCountsSince counts gesture events by kind since a given time
func (r *Repository) GetGestureCountsSince(since time.Time) ([]models.GestureCount, error) {
	var counts []models.GestureCount

	result := r.db.Model(&models.GestureEvent{}).
		Select("kind, COUNT(*) as count").
		Where("timestamp >= ?", since).
		Group("kind").
		Order("kind ASC").
		Scan(&counts)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query gesture counts")
	}

	return counts, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// GetRecentErrors returns the latest limit error logs, newest first
func (r *Repository) GetRecentErrors(limit int) ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog
	result := r.db.Order("timestamp DESC").Limit(limit).Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// DeleteOlderThan deletes history older than a specified date (soft delete)
func (r *Repository) DeleteOlderThan(before time.Time) (int64, error) {
	var total int64
	for _, model := range []interface{}{&models.BackupRecord{}, &models.GestureEvent{}, &models.ErrorLog{}} {
		result := r.db.Where("timestamp < ?", before).Delete(model)
		if result.Error != nil {
			return 0, errors.Wrap(result.Error, "failed to delete old history")
		}
		total += result.RowsAffected
	}
	return total, nil
}

// Clear removes all history from the database
func (r *Repository) Clear() error {
	for _, table := range []string{"backup_records", "gesture_events", "error_logs"} {
		result := r.db.Exec("DELETE FROM " + table)
		if result.Error != nil {
			return errors.Wrapf(result.Error, "failed to clear %s", table)
		}
	}
	return nil
}
