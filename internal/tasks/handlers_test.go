package tasks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"geolens/internal/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.AuthTransaction{}, &models.PasswordReset{}))
	return db
}

// The purge handler runs on the database alone; recurrence belongs to the
// scheduler, so one completed run must not schedule another.
func TestHandlePurgeExpired(t *testing.T) {
	db := newTestDB(t)
	handler := NewTaskHandler(db)

	now := time.Now()
	userID := uuid.New().String()

	expired := models.AuthTransaction{UserID: userID, Token: "stale", Refresh: "stale", ExpiresAt: now.Add(-time.Hour)}
	live := models.AuthTransaction{UserID: userID, Token: "live", Refresh: "live", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&live).Error)

	used := models.PasswordReset{UserID: userID, Code: "used-code", Used: true, ExpiresAt: now.Add(time.Hour)}
	stale := models.PasswordReset{UserID: userID, Code: "stale-code", ExpiresAt: now.Add(-time.Hour)}
	fresh := models.PasswordReset{UserID: userID, Code: "fresh-code", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, db.Create(&used).Error)
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&fresh).Error)

	err := handler.HandlePurgeExpired(context.Background(), asynq.NewTask(TaskTypePurgeExpired, nil))
	require.NoError(t, err)

	var transactions []models.AuthTransaction
	require.NoError(t, db.Find(&transactions).Error)
	require.Len(t, transactions, 1)
	assert.Equal(t, "live", transactions[0].Token)

	var resets []models.PasswordReset
	require.NoError(t, db.Find(&resets).Error)
	require.Len(t, resets, 1)
	assert.Equal(t, "fresh-code", resets[0].Code)

	// Repeat run with nothing left to purge is a clean no-op.
	require.NoError(t, handler.HandlePurgeExpired(context.Background(), asynq.NewTask(TaskTypePurgeExpired, nil)))
}
