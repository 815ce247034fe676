package models

import (
	"geolens/internal/events"

	"gorm.io/gorm"
)

func (r *Relation) AfterCreate(tx *gorm.DB) error {
	events.Emit("relation.requested", r)
	return nil
}

func (r *Relation) AfterUpdate(tx *gorm.DB) error {
	events.Emit("relation.transitioned", r)
	return nil
}
