package services

import (
	"fmt"
	"testing"

	"geolens/internal/models"
	"geolens/internal/policy"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory sqlite database per test. Each database
// gets its own name so parallel tests never share state; cache=shared keeps
// the connection pool on one schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Layer{},
		&models.Tenant{},
		&models.ContentItem{},
		&models.MapEvent{},
		&models.Relation{},
	))
	return db
}

func createAnalyst(t *testing.T, db *gorm.DB, email, tenantName string) (models.User, models.Tenant) {
	t.Helper()

	user := models.User{
		Email:    email,
		Password: "not-a-real-hash",
		Role:     models.UserRoleAnalyst,
		PlanTier: models.PlanTierInvited,
	}
	require.NoError(t, db.Create(&user).Error)

	tenant := models.Tenant{
		OwnerUserID: user.ID,
		Name:        tenantName,
		Status:      models.TenantStatusActive,
	}
	require.NoError(t, db.Create(&tenant).Error)
	return user, tenant
}

func createSubscriber(t *testing.T, db *gorm.DB, email string, tier models.PlanTier) models.User {
	t.Helper()

	user := models.User{
		Email:    email,
		Password: "not-a-real-hash",
		Role:     models.UserRoleSubscriber,
		PlanTier: tier,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createLayer(t *testing.T, db *gorm.DB, key string, minTier models.PlanTier) models.Layer {
	t.Helper()

	layer := models.Layer{
		Key:     key,
		Title:   key,
		MinTier: minTier,
		Enabled: true,
	}
	require.NoError(t, db.Create(&layer).Error)
	return layer
}

func subscriberPrincipal(user models.User) policy.Principal {
	return policy.Principal{
		ID:       user.ID,
		Email:    user.Email,
		Role:     user.Role,
		PlanTier: user.PlanTier,
	}
}

func analystPrincipal(user models.User, tenant models.Tenant) policy.Principal {
	return policy.Principal{
		ID:            user.ID,
		Email:         user.Email,
		Role:          user.Role,
		PlanTier:      user.PlanTier,
		OwnedTenantID: tenant.ID,
	}
}
