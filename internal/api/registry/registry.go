package registry

import (
	"github.com/labstack/echo/v4"

	"geolens/internal/api/controllers"
	"geolens/internal/models"
	"geolens/internal/services"

	"gorm.io/gorm"
)

// RegisterCRUDRoutes registers generic read routes for reference entities.
// Tenant profiles are readable by any authenticated caller; the subscription
// layer decides what content they unlock.
// @Summary Register read routes for reference entities
// @Description Register read routes for reference entities
// @Accept json
// @Produce json
func RegisterCRUDRoutes(g *echo.Group, db *gorm.DB) {
	// Tenants
	tenantService := services.NewBaseService(db, models.Tenant{})
	tenantController := controllers.NewBaseController(tenantService)
	tenantGroup := g.Group("/tenants")

	// @Summary List tenants
	// @Description Get a paginated list of tenants
	// @Accept json
	// @Produce json
	// @Success 200 {array} models.Tenant
	// @Failure 401 {object} map[string]string "Unauthorized"
	// @Failure 500 {object} map[string]string "Internal server error"
	// @Router /api/v1/tenants [get]
	tenantGroup.GET("", tenantController.List)
	// @Summary Get tenant
	// @Description Get a tenant by ID
	// @Accept json
	// @Produce json
	// @Param id path string true "Tenant ID"
	// @Success 200 {object} models.Tenant
	// @Failure 401 {object} map[string]string "Unauthorized"
	// @Failure 404 {object} map[string]string "Not found"
	// @Failure 500 {object} map[string]string "Internal server error"
	// @Router /api/v1/tenants/{id} [get]
	tenantGroup.GET("/:id", tenantController.Get)

	// Layers (full catalog including disabled rows, for tooling)
	layerService := services.NewBaseService(db, models.Layer{})
	layerController := controllers.NewBaseController(layerService)
	layerGroup := g.Group("/layers/catalog")

	// @Summary List layer catalog
	// @Description Get the full layer catalog including disabled layers
	// @Accept json
	// @Produce json
	// @Success 200 {array} models.Layer
	// @Failure 401 {object} map[string]string "Unauthorized"
	// @Failure 500 {object} map[string]string "Internal server error"
	// @Router /api/v1/layers/catalog [get]
	layerGroup.GET("", layerController.List)
	// @Summary Get layer
	// @Description Get a layer by ID
	// @Accept json
	// @Produce json
	// @Param id path string true "Layer ID"
	// @Success 200 {object} models.Layer
	// @Failure 401 {object} map[string]string "Unauthorized"
	// @Failure 404 {object} map[string]string "Not found"
	// @Failure 500 {object} map[string]string "Internal server error"
	// @Router /api/v1/layers/catalog/{id} [get]
	layerGroup.GET("/:id", layerController.Get)
}
