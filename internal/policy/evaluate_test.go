package policy

import (
	"testing"

	"geolens/internal/models"

	"github.com/stretchr/testify/assert"
)

func invitedLayer() *models.Layer {
	return &models.Layer{Key: "briefs", MinTier: models.PlanTierInvited}
}

func subscriberLayer() *models.Layer {
	return &models.Layer{Key: "field_reports", MinTier: models.PlanTierSubscriber}
}

func plusLayer() *models.Layer {
	return &models.Layer{Key: "deep_dives", MinTier: models.PlanTierSubscriberPlus}
}

func subscriber(tier models.PlanTier) Principal {
	return Principal{ID: "user-1", Role: models.UserRoleSubscriber, PlanTier: tier}
}

func activeRelation(tenantID string) *models.Relation {
	return &models.Relation{TenantID: tenantID, SubscriberUserID: "user-1", Status: models.RelationStatusActive}
}

func TestEvaluateInvitedLayerOpenToEveryone(t *testing.T) {
	d := Evaluate(Anonymous(), invitedLayer(), "tenant-1", nil)
	assert.Equal(t, AccessFull, d.Access)

	d = Evaluate(subscriber(models.PlanTierSubscriber), invitedLayer(), "tenant-1", nil)
	assert.Equal(t, AccessFull, d.Access)
}

func TestEvaluateAnonymousLockedOnHigherLayers(t *testing.T) {
	d := Evaluate(Anonymous(), subscriberLayer(), "tenant-1", nil)
	assert.Equal(t, AccessLocked, d.Access)
	assert.Equal(t, ReasonPlanRequired, d.Reason)
}

func TestEvaluateOwnerBypass(t *testing.T) {
	owner := Principal{
		ID:            "analyst-1",
		Role:          models.UserRoleAnalyst,
		PlanTier:      models.PlanTierInvited,
		OwnedTenantID: "tenant-1",
	}

	// The owner sees their own items in full regardless of tier or relation.
	d := Evaluate(owner, plusLayer(), "tenant-1", nil)
	assert.Equal(t, AccessFull, d.Access)

	// But gets no bypass on another tenant's items.
	d = Evaluate(owner, plusLayer(), "tenant-2", nil)
	assert.Equal(t, AccessLocked, d.Access)
	assert.Equal(t, ReasonPlanRequired, d.Reason)
}

func TestEvaluateInsufficientTier(t *testing.T) {
	d := Evaluate(subscriber(models.PlanTierSubscriber), plusLayer(), "tenant-1", activeRelation("tenant-1"))
	assert.Equal(t, AccessLocked, d.Access)
	assert.Equal(t, ReasonPlanRequired, d.Reason)
}

func TestEvaluateNoRelation(t *testing.T) {
	d := Evaluate(subscriber(models.PlanTierSubscriber), subscriberLayer(), "tenant-1", nil)
	assert.Equal(t, AccessLocked, d.Access)
	assert.Equal(t, ReasonSubscriptionRequired, d.Reason)
}

func TestEvaluatePendingRelationStillLocked(t *testing.T) {
	rel := &models.Relation{TenantID: "tenant-1", SubscriberUserID: "user-1", Status: models.RelationStatusPending}
	d := Evaluate(subscriber(models.PlanTierSubscriber), subscriberLayer(), "tenant-1", rel)
	assert.Equal(t, AccessLocked, d.Access)
	assert.Equal(t, ReasonSubscriptionRequired, d.Reason)
}

func TestEvaluateRelationTenantMismatch(t *testing.T) {
	d := Evaluate(subscriber(models.PlanTierSubscriber), subscriberLayer(), "tenant-1", activeRelation("tenant-2"))
	assert.Equal(t, AccessLocked, d.Access)
	assert.Equal(t, ReasonSubscriptionRequired, d.Reason)
}

func TestEvaluateActiveRelationGrantsFull(t *testing.T) {
	d := Evaluate(subscriber(models.PlanTierSubscriber), subscriberLayer(), "tenant-1", activeRelation("tenant-1"))
	assert.Equal(t, AccessFull, d.Access)

	d = Evaluate(subscriber(models.PlanTierSubscriberPlus), plusLayer(), "tenant-1", activeRelation("tenant-1"))
	assert.Equal(t, AccessFull, d.Access)
}

func TestEvaluateAnalystCannotUseRelations(t *testing.T) {
	analyst := Principal{
		ID:            "analyst-2",
		Role:          models.UserRoleAnalyst,
		PlanTier:      models.PlanTierSubscriberPlus,
		OwnedTenantID: "tenant-9",
	}

	d := Evaluate(analyst, subscriberLayer(), "tenant-1", activeRelation("tenant-1"))
	assert.Equal(t, AccessLocked, d.Access)
	assert.Equal(t, ReasonSubscriptionRequired, d.Reason)
}

func TestAllowPaid(t *testing.T) {
	assert.False(t, AllowPaid(Anonymous()))
	assert.False(t, AllowPaid(subscriber(models.PlanTierInvited)))
	assert.False(t, AllowPaid(subscriber(models.PlanTier("BOGUS"))))
	assert.True(t, AllowPaid(subscriber(models.PlanTierSubscriber)))
	assert.True(t, AllowPaid(subscriber(models.PlanTierSubscriberPlus)))
}

func TestLayerTierOK(t *testing.T) {
	assert.True(t, LayerTierOK(Anonymous(), invitedLayer()))
	assert.False(t, LayerTierOK(Anonymous(), subscriberLayer()))
	assert.True(t, LayerTierOK(subscriber(models.PlanTierSubscriber), subscriberLayer()))
	assert.False(t, LayerTierOK(subscriber(models.PlanTierSubscriber), plusLayer()))
	assert.True(t, LayerTierOK(subscriber(models.PlanTierSubscriberPlus), plusLayer()))
}
