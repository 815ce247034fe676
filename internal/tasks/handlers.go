package tasks

import (
	"context"
	"time"

	"geolens/internal/models"
	"geolens/internal/utils/logger"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// TaskHandler handles task processing with improved error handling and logging
type TaskHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{
		db:     db,
		logger: logger.New("task_handler"),
	}
}

// HandlePurgeExpired removes expired auth transactions and spent password
// reset codes. The scheduler owns the recurrence; handlers never reschedule
// themselves.
func (h *TaskHandler) HandlePurgeExpired(ctx context.Context, t *asynq.Task) error {
	now := time.Now()

	result := h.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.AuthTransaction{})
	if result.Error != nil {
		return h.logger.Error("Failed to purge auth transactions", result.Error)
	}
	purgedAuth := result.RowsAffected

	result = h.db.WithContext(ctx).
		Where("used = ? OR expires_at < ?", true, now).
		Delete(&models.PasswordReset{})
	if result.Error != nil {
		return h.logger.Error("Failed to purge password resets", result.Error)
	}

	h.logger.Success("Purged %d auth transactions, %d password resets", purgedAuth, result.RowsAffected)
	return nil
}

type relationStat struct {
	TenantID string
	Status   models.RelationStatus
	Count    int64
}

// HandleRelationStats logs a per-tenant breakdown of relation statuses. The
// output feeds the ops dashboard via log scraping.
func (h *TaskHandler) HandleRelationStats(ctx context.Context, t *asynq.Task) error {
	var stats []relationStat
	err := h.db.WithContext(ctx).
		Model(&models.Relation{}).
		Select("tenant_id, status, COUNT(*) as count").
		Where("is_deleted = false").
		Group("tenant_id, status").
		Scan(&stats).Error
	if err != nil {
		return h.logger.Error("Failed to compute relation stats", err)
	}

	for _, stat := range stats {
		h.logger.Info("relation_stats tenant=%s status=%s count=%d", stat.TenantID, stat.Status, stat.Count)
	}

	return nil
}
