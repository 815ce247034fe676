package services

import (
	"errors"
	"fmt"

	"geolens/internal/models"
)

// Typed errors returned by the lifecycle, directory and content services. The
// HTTP layer maps them to status codes; nothing here knows about HTTP.

// ValidationError is the caller's fault: malformed input, fixable by
// correcting the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError covers missing layers, tenants, relations and content items.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// PlanRequiredError means the principal's tier does not reach the layer's
// minimum. It carries both tiers so the caller can render an upsell.
type PlanRequiredError struct {
	RequiredTier models.PlanTier
	UserTier     models.PlanTier
}

func (e *PlanRequiredError) Error() string {
	return fmt.Sprintf("plan %s required, current plan is %s", e.RequiredTier, e.UserTier)
}

// SubscriptionRequiredError means no ACTIVE relation exists with the tenant
// that owns the requested content. Distinct from PlanRequiredError; tier is
// checked first.
type SubscriptionRequiredError struct {
	TenantID string
}

func (e *SubscriptionRequiredError) Error() string {
	return "active subscription required for this tenant"
}

// ForbiddenError means the principal acted on a relation or tenant it is not
// party to. It deliberately carries no detail about the protected resource.
type ForbiddenError struct{}

func (e *ForbiddenError) Error() string {
	return "forbidden"
}

// ConflictError covers self-subscription attempts and transitions that the
// state machine does not permit. Safe to retry after a fresh read.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// Conflict reasons used across the lifecycle service.
const (
	ReasonOwnTenant       = "CANNOT_SUBSCRIBE_OWN_TENANT"
	ReasonAlreadyCanceled = "ALREADY_CANCELED"
	ReasonBadTransition   = "INVALID_TRANSITION"
)

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
