package handlers

import (
	"net/http"

	"geolens/internal/api/middleware"
	"geolens/internal/models"
	"geolens/internal/policy"
	"geolens/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type LayerHandler struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLayerHandler(db *gorm.DB) *LayerHandler {
	return &LayerHandler{db: db, log: logger.New("LayerHandler")}
}

// LayerView is one layer annotated with whether the caller's plan clears its
// minimum tier. The catalog itself is public; canAccess is what varies.
type LayerView struct {
	Key         string          `json:"key"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	MinTier     models.PlanTier `json:"minTier"`
	SortOrder   int             `json:"sortOrder"`
	CanAccess   bool            `json:"canAccess"`
}

// List returns the enabled layer catalog annotated per the caller's tier.
// @Summary List layers
// @Description List enabled layers with a per-caller access flag
// @Tags layers
// @Produce json
// @Success 200 {array} LayerView
// @Router /layers [get]
func (h *LayerHandler) List(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	var layers []models.Layer
	if err := h.db.Where("enabled = true AND is_deleted = false").
		Order("sort_order ASC, key ASC").
		Find(&layers).Error; err != nil {
		return err
	}

	views := make([]LayerView, 0, len(layers))
	for i := range layers {
		views = append(views, LayerView{
			Key:         layers[i].Key,
			Title:       layers[i].Title,
			Description: layers[i].Description,
			MinTier:     layers[i].MinTier,
			SortOrder:   layers[i].SortOrder,
			CanAccess:   policy.LayerTierOK(principal, &layers[i]),
		})
	}
	return c.JSON(http.StatusOK, views)
}
