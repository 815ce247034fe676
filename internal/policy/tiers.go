package policy

import (
	"geolens/internal/models"
)

// tierRanks is the total order over plan tiers. Anything not listed ranks as
// INVITED.
var tierRanks = map[models.PlanTier]int{
	models.PlanTierInvited:        0,
	models.PlanTierSubscriber:     1,
	models.PlanTierSubscriberPlus: 2,
}

// TierRank returns the numeric rank of a tier, 0 for unknown values.
func TierRank(tier models.PlanTier) int {
	return tierRanks[tier]
}

// HasTierAccess reports whether userTier satisfies requiredTier.
func HasTierAccess(userTier, requiredTier models.PlanTier) bool {
	return TierRank(userTier) >= TierRank(requiredTier)
}
