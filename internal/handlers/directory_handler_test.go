package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"geolens/internal/models"
	"geolens/internal/policy"
	"geolens/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newDirectoryFixture(t *testing.T) (*gorm.DB, *DirectoryHandler) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Tenant{}, &models.Relation{}))

	for _, name := range []string{"Sahel Watch", "Andes Desk"} {
		owner := models.User{
			Email:    fmt.Sprintf("%s@example.com", uuid.New().String()),
			Password: "not-a-real-hash",
			Role:     models.UserRoleAnalyst,
		}
		require.NoError(t, db.Create(&owner).Error)
		require.NoError(t, db.Create(&models.Tenant{
			OwnerUserID: owner.ID,
			Name:        name,
			Status:      models.TenantStatusActive,
		}).Error)
	}

	return db, NewDirectoryHandler(db, services.NewDirectoryService(db))
}

func eligibleRequest(t *testing.T, h *DirectoryHandler, target string) []services.AnalystSummary {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("principal", policy.Principal{
		ID:       uuid.New().String(),
		Role:     models.UserRoleSubscriber,
		PlanTier: models.PlanTierSubscriber,
	})

	require.NoError(t, h.Eligible(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []services.AnalystSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	return summaries
}

func TestEligibleFiltersByQueryParam(t *testing.T) {
	_, h := newDirectoryFixture(t)

	summaries := eligibleRequest(t, h, "/api/v1/analysts?query=sahel")
	require.Len(t, summaries, 1)
	assert.Equal(t, "Sahel Watch", summaries[0].TenantName)
}

func TestEligibleAcceptsSearchAlias(t *testing.T) {
	_, h := newDirectoryFixture(t)

	summaries := eligibleRequest(t, h, "/api/v1/analysts?search=andes")
	require.Len(t, summaries, 1)
	assert.Equal(t, "Andes Desk", summaries[0].TenantName)

	// The documented param wins when both are present.
	summaries = eligibleRequest(t, h, "/api/v1/analysts?query=sahel&search=andes")
	require.Len(t, summaries, 1)
	assert.Equal(t, "Sahel Watch", summaries[0].TenantName)
}

func TestEligibleUnfiltered(t *testing.T) {
	_, h := newDirectoryFixture(t)

	summaries := eligibleRequest(t, h, "/api/v1/analysts")
	assert.Len(t, summaries, 2)
}
