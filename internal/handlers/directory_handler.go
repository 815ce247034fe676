package handlers

import (
	"net/http"

	"geolens/internal/api/middleware"
	"geolens/internal/services"
	"geolens/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type DirectoryHandler struct {
	db        *gorm.DB
	directory *services.DirectoryService
	log       *logger.Logger
}

func NewDirectoryHandler(db *gorm.DB, directory *services.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{db: db, directory: directory, log: logger.New("DirectoryHandler")}
}

// Eligible lists analyst tenants the caller can still subscribe to. Tenants
// with an open relation (pending or active) and the caller's own tenant are
// excluded; a terminated relation puts the tenant back on the list.
// @Summary List subscribable analysts
// @Description List analyst tenants the caller can file a subscription request against
// @Tags analysts
// @Produce json
// @Param query query string false "Case-insensitive name filter"
// @Success 200 {array} services.AnalystSummary
// @Router /analysts [get]
func (h *DirectoryHandler) Eligible(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	// "search" is accepted as a legacy alias for the documented "query" param.
	searchText := c.QueryParam("query")
	if searchText == "" {
		searchText = c.QueryParam("search")
	}

	summaries, err := h.directory.EligibleTenants(c.Request().Context(), principal, searchText)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaries)
}
