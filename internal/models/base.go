package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	DeletedAt time.Time `gorm:"index;default:NULL" json:"-" validate:"omitempty"`
	IsDeleted bool      `json:"isDeleted" default:"false"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

type UserRole string

const (
	UserRoleAnalyst    UserRole = "ANALYST"
	UserRoleSubscriber UserRole = "SUBSCRIBER"
)

// PlanTier is the ranked subscription level of a user
type PlanTier string

const (
	PlanTierInvited        PlanTier = "INVITED"
	PlanTierSubscriber     PlanTier = "SUBSCRIBER"
	PlanTierSubscriberPlus PlanTier = "SUBSCRIBER_PLUS"
)

type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// RelationStatus covers both the subscription and the access-grant flavor of the
// subscriber-to-tenant relation. REVOKED is the grant-side spelling of an
// owner-terminated ACTIVE relation.
type RelationStatus string

const (
	RelationStatusPending  RelationStatus = "PENDING"
	RelationStatusActive   RelationStatus = "ACTIVE"
	RelationStatusRejected RelationStatus = "REJECTED"
	RelationStatusCanceled RelationStatus = "CANCELED"
	RelationStatusRevoked  RelationStatus = "REVOKED"
)

type Visibility string

const (
	VisibilityFree Visibility = "FREE"
	VisibilityPaid Visibility = "PAID"
)

type EventKind string

const (
	EventKindPoint EventKind = "POINT"
	EventKindLine  EventKind = "LINE"
)

// IsValidUserRole checks if a given role is valid
func IsValidUserRole(role UserRole) bool {
	switch role {
	case UserRoleAnalyst, UserRoleSubscriber:
		return true
	default:
		return false
	}
}
