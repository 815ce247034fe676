package handlers

import (
	"net/http"

	"geolens/internal/api/middleware"
	"geolens/internal/api/validator"
	"geolens/internal/models"
	"geolens/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type TenantHandler struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTenantHandler(db *gorm.DB) *TenantHandler {
	return &TenantHandler{db: db, log: logger.New("TenantHandler")}
}

// GetMine returns the analyst's own tenant.
// @Summary Get own tenant
// @Description Get the authenticated analyst's tenant
// @Tags tenants
// @Produce json
// @Success 200 {object} models.Tenant
// @Failure 404 {object} map[string]string "Tenant not found"
// @Router /tenants/me [get]
func (h *TenantHandler) GetMine(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	tenant, err := models.GetTenantByOwner(principal.ID, h.db)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Tenant not found"})
	}
	return c.JSON(http.StatusOK, tenant)
}

// UpdateMine renames the analyst's own tenant.
// @Summary Update own tenant
// @Description Update the authenticated analyst's tenant
// @Tags tenants
// @Accept json
// @Produce json
// @Param request body validator.TenantUpdateRequest true "Tenant details"
// @Success 200 {object} models.Tenant
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Tenant not found"
// @Router /tenants/me [put]
func (h *TenantHandler) UpdateMine(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	var req validator.TenantUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	tenant, err := models.GetTenantByOwner(principal.ID, h.db)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Tenant not found"})
	}

	tenant.Name = req.Name
	if err := h.db.Save(tenant).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update tenant"})
	}
	return c.JSON(http.StatusOK, tenant)
}
