package models

import (
	console "geolens/internal/utils/logger"

	"gorm.io/gorm"
)

var log = console.New("SEEDER")

// Default layers. MinTier follows the product ladder: open discovery layers for
// invited users, analysis layers behind a subscription.
var defaultLayers = []Layer{
	{Key: "geopolitics", Title: "Geopolitics", Description: "Country-level geopolitical briefs", MinTier: PlanTierInvited, Enabled: true, SortOrder: 10},
	{Key: "conflicts", Title: "Conflicts", Description: "Armed conflict tracking", MinTier: PlanTierSubscriber, Enabled: true, SortOrder: 20},
	{Key: "energy", Title: "Energy", Description: "Energy infrastructure and supply routes", MinTier: PlanTierSubscriber, Enabled: true, SortOrder: 30},
	{Key: "intel_plus", Title: "Intel+", Description: "Long-form analyst intelligence", MinTier: PlanTierSubscriberPlus, Enabled: true, SortOrder: 40},
}

// SeedLayers inserts the default layer set if the table is empty. Layer
// administration afterwards happens through the admin panel, not the API.
func SeedLayers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Layer{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Layers already seeded (%d), skipping", count)
		return nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	for _, layer := range defaultLayers {
		l := layer
		if err := tx.Create(&l).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	log.Success("Seeded %d default layers", len(defaultLayers))
	return nil
}
