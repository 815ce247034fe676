package handlers

import (
	"net/http"

	"geolens/internal/api/middleware"
	"geolens/internal/api/validator"
	"geolens/internal/services"
	"geolens/internal/tasks/rate"
	"geolens/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type SubscriptionHandler struct {
	db        *gorm.DB
	relations *services.RelationService
	limiter   *rate.QueueRateLimiter
	log       *logger.Logger
}

// NewSubscriptionHandler wires the relation lifecycle endpoints. limiter may
// be nil (tests, redis-less deployments); request throttling is then skipped.
func NewSubscriptionHandler(db *gorm.DB, relations *services.RelationService, limiter *rate.QueueRateLimiter) *SubscriptionHandler {
	return &SubscriptionHandler{db: db, relations: relations, limiter: limiter, log: logger.New("SubscriptionHandler")}
}

// Request files (or revives) a subscription request against a tenant.
// Repeating a request while one is already open returns the existing record.
// @Summary Request a subscription
// @Description File a subscription request against a tenant; idempotent while a request is open
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body validator.SubscriptionRequest true "Target tenant"
// @Success 201 {object} models.Relation
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Tenant not found"
// @Failure 409 {object} map[string]string "Cannot subscribe to own tenant"
// @Router /subscriptions/request [post]
func (h *SubscriptionHandler) Request(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	var req validator.SubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(c.Request().Context(), principal.ID)
		if err != nil {
			h.log.Warn("Rate limiter unavailable, allowing request: %v", err)
		} else if !allowed {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many subscription requests")
		}
	}

	relation, err := h.relations.Request(c.Request().Context(), principal, req.TenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, relation)
}

// ListMine returns the caller's subscriptions, optionally filtered by status.
// @Summary List own subscriptions
// @Description List the caller's subscription requests and memberships
// @Tags subscriptions
// @Produce json
// @Param status query string false "Status filter (PENDING, ACTIVE, REJECTED, CANCELED, REVOKED, ALL)"
// @Success 200 {array} services.SubscriptionSummary
// @Router /subscriptions/mine [get]
func (h *SubscriptionHandler) ListMine(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	status := services.ParseStatusFilter(c.QueryParam("status"))
	summaries, err := h.relations.ListMine(c.Request().Context(), principal, status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaries)
}

// MyTenants returns the tenants the caller holds an active subscription with.
// @Summary List subscribed tenants
// @Description List tenants the caller is subscribed to
// @Tags subscriptions
// @Produce json
// @Param status query string false "Status filter, defaults to ACTIVE"
// @Success 200 {array} models.Tenant
// @Router /subscriptions/my-tenants [get]
func (h *SubscriptionHandler) MyTenants(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	status := services.ParseStatusFilter(c.QueryParam("status"))
	tenants, err := h.relations.SubscribedTenants(c.Request().Context(), principal, status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenants)
}

// Cancel ends a relation from either side. Subscribers cancel, owners revoke;
// repeating the call on a terminated relation is a no-op.
// @Summary Cancel or revoke a subscription
// @Description End a relation; subscribers cancel their own, owners revoke active members
// @Tags subscriptions
// @Produce json
// @Param id path string true "Relation ID"
// @Success 200 {object} models.Relation
// @Failure 403 {object} map[string]string "Not a party to the relation"
// @Failure 404 {object} map[string]string "Relation not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Router /subscriptions/{id}/cancel [post]
func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	relation, err := h.relations.Cancel(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, relation)
}

// OwnerRequests returns subscription requests against the analyst's tenant.
// @Summary List incoming subscription requests
// @Description List subscription requests against the analyst's own tenant
// @Tags subscriptions
// @Produce json
// @Param status query string false "Status filter (PENDING, ACTIVE, REJECTED, CANCELED, REVOKED, ALL)"
// @Success 200 {array} services.OwnerRequestSummary
// @Router /subscriptions/owner/requests [get]
func (h *SubscriptionHandler) OwnerRequests(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	status := services.ParseStatusFilter(c.QueryParam("status"))
	summaries, err := h.relations.ListOwnerRequests(c.Request().Context(), principal, status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaries)
}

// Decide approves or rejects a pending request against the analyst's tenant.
// @Summary Decide a subscription request
// @Description Approve or reject a pending request against the analyst's own tenant
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Relation ID"
// @Param request body validator.DecideRequest true "Decision"
// @Success 200 {object} models.Relation
// @Failure 403 {object} map[string]string "Not the tenant owner"
// @Failure 404 {object} map[string]string "Relation not found"
// @Failure 409 {object} map[string]string "Request no longer pending"
// @Router /subscriptions/{id}/decide [post]
func (h *SubscriptionHandler) Decide(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	var req validator.DecideRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	relation, err := h.relations.Decide(c.Request().Context(), principal, c.Param("id"), req.Action == "APPROVE")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, relation)
}
