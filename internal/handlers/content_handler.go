package handlers

import (
	"net/http"

	"geolens/internal/api/middleware"
	"geolens/internal/api/validator"
	"geolens/internal/models"
	"geolens/internal/services"
	"geolens/internal/utils"
	"geolens/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type ContentHandler struct {
	db      *gorm.DB
	content *services.ContentService
	log     *logger.Logger
}

func NewContentHandler(db *gorm.DB, content *services.ContentService) *ContentHandler {
	return &ContentHandler{db: db, content: content, log: logger.New("ContentHandler")}
}

// Query returns the projected content feed for one country and layer.
// Anonymous viewers get the locked projection; the handler runs behind
// optional auth.
// @Summary Query content for a country and layer
// @Description List content items scoped to a country and layer, projected per the caller's access
// @Tags content
// @Accept json
// @Produce json
// @Param iso3 query string true "3-letter country code"
// @Param layer query string true "Layer key"
// @Success 200 {object} services.ContentPage
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]interface{} "Plan tier too low for layer"
// @Failure 404 {object} map[string]string "Layer not found"
// @Router /content [get]
func (h *ContentHandler) Query(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	page, err := h.content.Query(c.Request().Context(), principal,
		c.QueryParam("iso3"), c.QueryParam("layer"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// ListMine returns the analyst's own content items.
// @Summary List own content items
// @Description List the authenticated analyst's content items
// @Tags content
// @Produce json
// @Success 200 {array} models.ContentItem
// @Router /content/me [get]
func (h *ContentHandler) ListMine(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	items, err := h.content.ListMyItems(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Create publishes a content item under the analyst's tenant.
// @Summary Create a content item
// @Description Publish a content item under the analyst's own tenant
// @Tags content
// @Accept json
// @Produce json
// @Param request body validator.ContentItemRequest true "Content item"
// @Success 201 {object} models.ContentItem
// @Failure 400 {object} map[string]string "Validation error"
// @Router /content/me [post]
func (h *ContentHandler) Create(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	var req validator.ContentItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	item, err := contentItemFromRequest(&req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.content.CreateItem(c.Request().Context(), principal, item); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// Update edits a content item owned by the analyst's tenant.
// @Summary Update a content item
// @Description Update a content item owned by the analyst's tenant
// @Tags content
// @Accept json
// @Produce json
// @Param id path string true "Content item ID"
// @Param request body validator.ContentItemRequest true "Content item"
// @Success 200 {object} models.ContentItem
// @Failure 404 {object} map[string]string "Item not found"
// @Router /content/me/{id} [put]
func (h *ContentHandler) Update(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	var req validator.ContentItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	updated, err := contentItemFromRequest(&req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	item, err := h.content.UpdateItem(c.Request().Context(), principal, c.Param("id"), updated)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Delete soft-deletes a content item owned by the analyst's tenant.
// @Summary Delete a content item
// @Description Soft-delete a content item owned by the analyst's tenant
// @Tags content
// @Produce json
// @Param id path string true "Content item ID"
// @Success 200 {object} map[string]string "Item deleted"
// @Failure 404 {object} map[string]string "Item not found"
// @Router /content/me/{id} [delete]
func (h *ContentHandler) Delete(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	if err := h.content.DeleteItem(c.Request().Context(), principal, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Content item deleted"})
}

func contentItemFromRequest(req *validator.ContentItemRequest) (*models.ContentItem, error) {
	item := &models.ContentItem{
		LayerKey:    req.LayerKey,
		CountryISO3: req.CountryISO3,
		Title:       req.Title,
		Summary:     req.Summary,
		Body:        req.Body,
		Visibility:  models.Visibility(req.Visibility),
	}

	if len(req.Tags) > 0 {
		tags, err := utils.StringsToJSON(req.Tags)
		if err != nil {
			return nil, err
		}
		item.Tags = tags
	}
	if len(req.Media) > 0 {
		media, err := utils.StringsToJSON(req.Media)
		if err != nil {
			return nil, err
		}
		item.Media = media
	}

	return item, nil
}
