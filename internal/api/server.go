package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-advanced-admin/admin"
	admingorm "github.com/go-advanced-admin/orm-gorm"
	adminecho "github.com/go-advanced-admin/web-echo"
	"golang.org/x/time/rate"

	"geolens/internal/api/validator"
	"geolens/internal/config"
	"geolens/internal/models"
	"geolens/internal/services"

	console "geolens/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Server struct {
	echo   *echo.Echo
	config *config.Config
	db     *gorm.DB
}

var log = console.New("API-Server")

// NewServer @title GeoLens API
// @version 1.0
// @description Tiered access to geographic analyst content.
// @host localhost:8080
// @BasePath /api/v1
func NewServer(cfg *config.Config, db *gorm.DB) *Server {
	e := echo.New()

	// Create custom validator
	e.Validator = validator.NewValidator()

	// Configure middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentLength},
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	e.Use(middleware.BodyLimit("10M"))

	// Custom error handler
	e.HTTPErrorHandler = customHTTPErrorHandler

	// Create server instance
	s := &Server{
		echo:   e,
		config: cfg,
		db:     db,
	}

	// Seed the layer catalog
	if err := models.SeedLayers(db); err != nil {
		log.Warn("Warning: Failed to seed layers: %v", err)
	} else {
		log.Success("Layer catalog ready")
	}

	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(20))))

	// Create a new GORM integrator
	gormIntegrator := admingorm.NewIntegrator(db)
	// Create a new Echo integrator
	echoIntegrator := adminecho.NewIntegrator(e.Group(""))

	// Define your permission checker function
	permissionChecker := func(
		request admin.PermissionRequest, ctx interface{},
	) (bool, error) {
		// Implement your permission logic here
		return true, nil
	}

	// Layers are administered through the admin panel, not the public API.
	adminPanel, err := admin.NewPanel(
		gormIntegrator, echoIntegrator, permissionChecker, nil,
	)
	if err != nil {
		err := log.Error("Failed to create admin panel", err)
		if err != nil {
			return nil
		}
	}

	_, err = adminPanel.RegisterApp(
		"GeoLens",
		"GeoLens Admin Panel",
		nil,
	)
	if err != nil {
		err := log.Error("Failed to create admin panel", err)
		if err != nil {
			return nil
		}
	}

	// Register routes
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Health check endpoint
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// Custom HTTP error handler. Typed service errors map to their status codes
// here so handlers can return them unwrapped.
func customHTTPErrorHandler(err error, c echo.Context) {
	var (
		code    = http.StatusInternalServerError
		message interface{}
	)

	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var planErr *services.PlanRequiredError
	var subscriptionErr *services.SubscriptionRequiredError
	var forbiddenErr *services.ForbiddenError
	var conflictErr *services.ConflictError

	switch e := err.(type) {
	case *echo.HTTPError:
		code = e.Code
		message = e.Message
	case validator.ValidationErrors:
		code = http.StatusBadRequest
		message = formatValidationErrors(e)
	default:
		switch {
		case errors.As(err, &validationErr):
			code = http.StatusBadRequest
			message = validationErr.Error()
		case errors.As(err, &notFoundErr):
			code = http.StatusNotFound
			message = notFoundErr.Error()
		case errors.As(err, &planErr):
			code = http.StatusForbidden
			message = map[string]interface{}{
				"reason":       "PLAN_REQUIRED",
				"requiredTier": planErr.RequiredTier,
				"userTier":     planErr.UserTier,
			}
		case errors.As(err, &subscriptionErr):
			code = http.StatusForbidden
			message = map[string]interface{}{
				"reason":   "SUBSCRIPTION_REQUIRED",
				"tenantId": subscriptionErr.TenantID,
			}
		case errors.As(err, &forbiddenErr):
			code = http.StatusForbidden
			message = forbiddenErr.Error()
		case errors.As(err, &conflictErr):
			code = http.StatusConflict
			message = map[string]interface{}{
				"reason": conflictErr.Reason,
			}
		default:
			message = http.StatusText(code)
		}
	}

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]interface{}{
				"error": message,
				"code":  code,
				"time":  time.Now().Format(time.RFC3339),
			})
		}
		if err != nil {
			c.Echo().Logger.Error(err)
		}
	}
}

// formatValidationErrors formats validation errors into a map
func formatValidationErrors(errors validator.ValidationErrors) map[string]string {
	errMap := make(map[string]string)
	for _, err := range errors {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		switch tag {
		case "required":
			errMap[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errMap[field] = fmt.Sprintf("%s must be a valid email", field)
		case "min":
			errMap[field] = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			errMap[field] = fmt.Sprintf("%s must be at most %s", field, param)
		case "uuid":
			errMap[field] = fmt.Sprintf("%s must be a valid UUID", field)
		case "oneof":
			errMap[field] = fmt.Sprintf("%s must be one of [%s]", field, param)
		case "required_if":
			errMap[field] = fmt.Sprintf("%s is required when %s", field, param)
		case "user_role":
			errMap[field] = fmt.Sprintf("%s must be either 'ANALYST' or 'SUBSCRIBER'", field)
		case "plan_tier":
			errMap[field] = fmt.Sprintf("%s must be one of: INVITED, SUBSCRIBER, SUBSCRIBER_PLUS", field)
		case "relation_action":
			errMap[field] = fmt.Sprintf("%s must be either 'APPROVE' or 'REJECT'", field)
		case "visibility":
			errMap[field] = fmt.Sprintf("%s must be either 'FREE' or 'PAID'", field)
		case "event_kind":
			errMap[field] = fmt.Sprintf("%s must be either 'POINT' or 'LINE'", field)
		case "iso3":
			errMap[field] = fmt.Sprintf("%s must be a 3-letter uppercase country code", field)
		case "layer_key":
			errMap[field] = fmt.Sprintf("%s must be a lowercase layer key", field)
		default:
			errMap[field] = fmt.Sprintf("%s failed validation: %s", field, tag)
		}
	}
	return errMap
}
