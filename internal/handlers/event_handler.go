package handlers

import (
	"encoding/json"
	"net/http"

	"geolens/internal/api/middleware"
	"geolens/internal/api/validator"
	"geolens/internal/models"
	"geolens/internal/services"
	"geolens/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type EventHandler struct {
	db      *gorm.DB
	content *services.ContentService
	log     *logger.Logger
}

func NewEventHandler(db *gorm.DB, content *services.ContentService) *EventHandler {
	return &EventHandler{db: db, content: content, log: logger.New("EventHandler")}
}

// Query returns map events as a GeoJSON FeatureCollection. A tenant-scoped
// query (tenantId set) is only served to authenticated callers; the anonymous
// directory map never narrows to one publisher.
// @Summary Query map events
// @Description List map events for a layer as GeoJSON, projected per the caller's access
// @Tags events
// @Produce json
// @Param layer query string true "Layer key"
// @Param iso3 query string false "3-letter country code"
// @Param tenantId query string false "Restrict to one tenant (requires ownership or an active subscription)"
// @Success 200 {object} services.FeatureCollection
// @Failure 401 {object} map[string]string "Tenant-scoped query without authentication"
// @Failure 403 {object} map[string]interface{} "Plan tier too low or no active subscription"
// @Failure 404 {object} map[string]string "Layer not found"
// @Router /events [get]
func (h *EventHandler) Query(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	tenantID := c.QueryParam("tenantId")
	if tenantID != "" && principal.IsAnonymous() {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required for tenant-scoped queries")
	}

	collection, err := h.content.Events(c.Request().Context(), principal,
		c.QueryParam("layer"), c.QueryParam("iso3"), tenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, collection)
}

// ListMine returns the analyst's own map events.
// @Summary List own map events
// @Description List the authenticated analyst's map events
// @Tags events
// @Produce json
// @Success 200 {array} models.MapEvent
// @Router /events/me [get]
func (h *EventHandler) ListMine(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	events, err := h.content.ListMyEvents(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// Create publishes a map event under the analyst's tenant.
// @Summary Create a map event
// @Description Publish a map event under the analyst's own tenant
// @Tags events
// @Accept json
// @Produce json
// @Param request body validator.MapEventRequest true "Map event"
// @Success 201 {object} models.MapEvent
// @Failure 400 {object} map[string]string "Validation error"
// @Router /events/me [post]
func (h *EventHandler) Create(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	var req validator.MapEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	event, err := mapEventFromRequest(&req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid geometry"})
	}

	if err := h.content.CreateEvent(c.Request().Context(), principal, event); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, event)
}

// Update edits a map event owned by the analyst's tenant.
// @Summary Update a map event
// @Description Update a map event owned by the analyst's tenant
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Map event ID"
// @Param request body validator.MapEventRequest true "Map event"
// @Success 200 {object} models.MapEvent
// @Failure 404 {object} map[string]string "Event not found"
// @Router /events/me/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	var req validator.MapEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	updated, err := mapEventFromRequest(&req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid geometry"})
	}

	event, err := h.content.UpdateEvent(c.Request().Context(), principal, c.Param("id"), updated)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// Delete soft-deletes a map event owned by the analyst's tenant.
// @Summary Delete a map event
// @Description Soft-delete a map event owned by the analyst's tenant
// @Tags events
// @Produce json
// @Param id path string true "Map event ID"
// @Success 200 {object} map[string]string "Event deleted"
// @Failure 404 {object} map[string]string "Event not found"
// @Router /events/me/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	if err := h.content.DeleteEvent(c.Request().Context(), principal, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Map event deleted"})
}

func mapEventFromRequest(req *validator.MapEventRequest) (*models.MapEvent, error) {
	geometry, err := json.Marshal(req.Geometry)
	if err != nil {
		return nil, err
	}

	return &models.MapEvent{
		LayerKey:   req.LayerKey,
		ISO3:       req.CountryISO3,
		Kind:       models.EventKind(req.Kind),
		Title:      req.Title,
		Summary:    req.Summary,
		Visibility: models.Visibility(req.Visibility),
		Geometry:   geometry,
	}, nil
}
