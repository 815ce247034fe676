package policy

import (
	"geolens/internal/models"
)

// Access is the per-item outcome of the evaluator.
type Access string

const (
	AccessFull   Access = "full"
	AccessLocked Access = "locked"
)

// LockReason tells the UI why an item came back locked.
type LockReason string

const (
	ReasonPlanRequired         LockReason = "PLAN_REQUIRED"
	ReasonSubscriptionRequired LockReason = "SUBSCRIPTION_REQUIRED"
)

// Decision is the result of evaluating one item for one principal.
type Decision struct {
	Access Access
	Reason LockReason // set only when Access == AccessLocked
}

func full() Decision               { return Decision{Access: AccessFull} }
func locked(r LockReason) Decision { return Decision{Access: AccessLocked, Reason: r} }

// LayerTierOK is the request-level gate: the principal's tier must satisfy the
// layer's MinTier before any per-item evaluation happens. Callers turn a false
// result into a PlanRequired error for the whole request.
func LayerTierOK(p Principal, layer *models.Layer) bool {
	return HasTierAccess(p.EffectiveTier(), layer.MinTier)
}

// AllowPaid reports whether PAID items may appear in the principal's result set
// at all. INVITED viewers never see PAID items, not even locked; the filter
// runs at the query stage, before the evaluator.
func AllowPaid(p Principal) bool {
	return p.EffectiveTier() != models.PlanTierInvited
}

// Evaluate decides full-vs-locked access for a single item. relation is the
// principal's relation with the item's tenant, nil when none exists. The
// caller has already checked LayerTierOK and filtered PAID items for INVITED
// viewers; Evaluate re-checks the tier so it stays safe when called directly.
//
// Order of the short-circuit:
//  1. owner of the item's tenant sees everything
//  2. an INVITED layer is open to everyone who passed the layer gate
//  3. otherwise: subscriber role + sufficient tier + ACTIVE relation
func Evaluate(p Principal, layer *models.Layer, itemTenantID string, relation *models.Relation) Decision {
	if p.OwnsTenant(itemTenantID) {
		return full()
	}

	if layer.MinTier == models.PlanTierInvited {
		return full()
	}

	if !HasTierAccess(p.EffectiveTier(), layer.MinTier) {
		return locked(ReasonPlanRequired)
	}

	if p.Role != models.UserRoleSubscriber {
		return locked(ReasonSubscriptionRequired)
	}

	if relation == nil || relation.Status != models.RelationStatusActive || relation.TenantID != itemTenantID {
		return locked(ReasonSubscriptionRequired)
	}

	return full()
}
