package cron

import (
	"context"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/edupoint/thesis-portal-api/model"
)

// CleanupOrphanUploads removes files in the uploads directory that no
// submission row references. Rejected uploads clean up after themselves, but
// a crash between the file write and the row upsert can leave a stray file.
func (m *CronManager) CleanupOrphanUploads() {
	jobName := "cleanup_orphan_uploads"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var paths []string
	if err := m.db.Model(&model.AssignmentSubmission{}).Pluck("file_path", &paths).Error; err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to query submissions: %w", err))
		return
	}

	referenced := make(map[string]bool, len(paths))
	for _, p := range paths {
		referenced[path.Base(p)] = true
	}

	keys, err := m.uploads.ListStaleKeys(time.Hour)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to list uploads: %w", err))
		return
	}

	removed := 0
	for _, key := range keys {
		if referenced[key] {
			continue
		}
		if err := m.uploads.Remove(ctx, key); err != nil {
			log.Printf("[CRON] Failed to remove orphan upload %s: %v", key, err)
			continue
		}
		removed++
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d orphan files (%d on disk, %d referenced)",
		removed, len(keys), len(referenced)))
}

// CleanupOldJobLogs deletes cron job logs older than 30 days.
func (m *CronManager) CleanupOldJobLogs() {
	jobName := "cleanup_job_logs"

	cutoff := time.Now().AddDate(0, 0, -30)
	result := m.db.Unscoped().Where("started_at < ?", cutoff).Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Deleted %d old job logs", result.RowsAffected))
}
