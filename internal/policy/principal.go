package policy

import (
	"geolens/internal/models"
)

// Principal is the authenticated or anonymous actor behind a request. It is
// built once per request from verified claims and passed explicitly; nothing
// in the core reads ambient request state.
type Principal struct {
	ID            string
	Email         string
	Role          models.UserRole
	PlanTier      models.PlanTier
	OwnedTenantID string
}

// Anonymous returns the principal used when no (valid) credentials are
// presented. It ranks as INVITED everywhere.
func Anonymous() Principal {
	return Principal{PlanTier: models.PlanTierInvited}
}

func (p Principal) IsAnonymous() bool {
	return p.ID == ""
}

func (p Principal) IsAnalyst() bool {
	return p.Role == models.UserRoleAnalyst
}

// EffectiveTier normalizes the principal's tier, treating unknown or unset
// values as INVITED (fail closed).
func (p Principal) EffectiveTier() models.PlanTier {
	switch p.PlanTier {
	case models.PlanTierInvited, models.PlanTierSubscriber, models.PlanTierSubscriberPlus:
		return p.PlanTier
	default:
		return models.PlanTierInvited
	}
}

// OwnsTenant reports whether the principal is the analyst owner of the tenant.
func (p Principal) OwnsTenant(tenantID string) bool {
	return p.IsAnalyst() && p.OwnedTenantID != "" && p.OwnedTenantID == tenantID
}
