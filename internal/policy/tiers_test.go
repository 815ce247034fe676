package policy

import (
	"testing"

	"geolens/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTierRankOrdering(t *testing.T) {
	assert.Less(t, TierRank(models.PlanTierInvited), TierRank(models.PlanTierSubscriber))
	assert.Less(t, TierRank(models.PlanTierSubscriber), TierRank(models.PlanTierSubscriberPlus))
}

func TestTierRankUnknownIsInvited(t *testing.T) {
	assert.Equal(t, TierRank(models.PlanTierInvited), TierRank(models.PlanTier("GOLD")))
	assert.Equal(t, TierRank(models.PlanTierInvited), TierRank(models.PlanTier("")))
}

func TestHasTierAccess(t *testing.T) {
	tiers := []models.PlanTier{
		models.PlanTierInvited,
		models.PlanTierSubscriber,
		models.PlanTierSubscriberPlus,
	}

	for i, user := range tiers {
		for j, required := range tiers {
			got := HasTierAccess(user, required)
			assert.Equal(t, i >= j, got, "user=%s required=%s", user, required)
		}
	}
}

func TestEffectiveTierFailsClosed(t *testing.T) {
	p := Principal{PlanTier: models.PlanTier("PLATINUM")}
	assert.Equal(t, models.PlanTierInvited, p.EffectiveTier())

	p = Principal{}
	assert.Equal(t, models.PlanTierInvited, p.EffectiveTier())
}

func TestAnonymousPrincipal(t *testing.T) {
	p := Anonymous()
	assert.True(t, p.IsAnonymous())
	assert.False(t, p.IsAnalyst())
	assert.Equal(t, models.PlanTierInvited, p.EffectiveTier())
	assert.False(t, p.OwnsTenant("any"))
}
