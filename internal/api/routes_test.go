package api

import (
	"fmt"
	"net/http"
	"testing"

	"geolens/internal/config"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newRouteServer(t *testing.T) *Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	s := &Server{
		echo:   echo.New(),
		config: config.LoadTestConfig(),
		db:     db,
	}
	s.registerRoutes()
	return s
}

func routeSet(e *echo.Echo) map[string]bool {
	set := make(map[string]bool)
	for _, r := range e.Routes() {
		set[r.Method+" "+r.Path] = true
	}
	return set
}

func TestRegisteredRoutePaths(t *testing.T) {
	s := newRouteServer(t)
	routes := routeSet(s.echo)

	expected := []string{
		http.MethodGet + " /api/v1/layers",
		http.MethodGet + " /api/v1/content",
		http.MethodGet + " /api/v1/events",
		http.MethodGet + " /api/v1/analysts",
		http.MethodPost + " /api/v1/subscriptions/request",
		http.MethodGet + " /api/v1/subscriptions/mine",
		http.MethodGet + " /api/v1/subscriptions/my-tenants",
		http.MethodPost + " /api/v1/subscriptions/:id/cancel",
		http.MethodGet + " /api/v1/subscriptions/owner/requests",
		http.MethodPost + " /api/v1/subscriptions/:id/decide",
		http.MethodGet + " /api/v1/tenants/me",
		http.MethodPut + " /api/v1/tenants/me",
		http.MethodPost + " /api/v1/auth/register",
		http.MethodPost + " /api/v1/auth/login",
	}
	for _, want := range expected {
		assert.True(t, routes[want], "missing route %s", want)
	}

	// The owner listing is a static segment, not a relation id.
	assert.False(t, routes[http.MethodGet+" /api/v1/subscriptions/owner-requests"])
}
