package models

import (
	"time"

	"geolens/internal/events"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Tenant is a publishing channel owned by exactly one analyst. The unique index
// on OwnerUserID keeps it one tenant per owner.
type Tenant struct {
	Base
	OwnerUserID string       `gorm:"type:uuid;uniqueIndex;not null" json:"ownerUserId" validate:"required,uuid"`
	Owner       *User        `gorm:"foreignKey:OwnerUserID" json:"owner,omitempty"`
	Name        string       `gorm:"not null" json:"name" validate:"required,min=2"`
	Status      TenantStatus `gorm:"not null;default:'active'" json:"status" validate:"omitempty,oneof=active suspended"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = TenantStatusActive
	}
	return nil
}

func (t *Tenant) AfterCreate(tx *gorm.DB) error {
	events.Emit("tenant.created", t)
	return nil
}

// Layer is a named content category with its own minimum plan tier. Layers are
// administered out of band (seeder + admin panel) and read-only to the API.
type Layer struct {
	Base
	Key         string   `gorm:"uniqueIndex;not null" json:"key" validate:"required,layer_key"`
	Title       string   `gorm:"not null" json:"title" validate:"required"`
	Description string   `json:"description"`
	MinTier     PlanTier `gorm:"not null;default:'INVITED'" json:"minTier" validate:"required,plan_tier"`
	Enabled     bool     `gorm:"not null;default:true" json:"enabled"`
	SortOrder   int      `gorm:"not null;default:100" json:"sortOrder"`
}

// ContentItem is an analyst-authored post scoped to a country and a layer.
// Visibility gates the item independently of the layer's MinTier.
type ContentItem struct {
	Base
	TenantID     string         `gorm:"type:uuid;not null;index:idx_content_tenant_published" json:"tenantId" validate:"required,uuid"`
	Tenant       *Tenant        `json:"tenant,omitempty"`
	AuthorUserID string         `gorm:"type:uuid;not null" json:"authorUserId" validate:"required,uuid"`
	LayerKey     string         `gorm:"not null;index:idx_content_lookup" json:"layerKey" validate:"required"`
	CountryISO3  string         `gorm:"index:idx_content_lookup" json:"iso3" validate:"omitempty,iso3"`
	Title        string         `gorm:"not null" json:"title" validate:"required"`
	Summary      string         `json:"summary"`
	Body         string         `json:"body,omitempty"`
	Visibility   Visibility     `gorm:"not null;default:'FREE';index" json:"visibility" validate:"omitempty,visibility"`
	Tags         datatypes.JSON `gorm:"type:jsonb" json:"tags,omitempty"`
	Media        datatypes.JSON `gorm:"type:jsonb" json:"media,omitempty"`
	PublishedAt  time.Time      `gorm:"index:idx_content_tenant_published" json:"publishedAt"`
	IsActive     bool           `gorm:"not null;default:true;index" json:"isActive"`
}

func (c *ContentItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.PublishedAt.IsZero() {
		c.PublishedAt = time.Now()
	}
	return nil
}

func (c *ContentItem) AfterCreate(tx *gorm.DB) error {
	events.Emit("content.created", c)
	return nil
}

// MapEvent is a geolocated item (point or line) drawn on the map. Geometry is
// GeoJSON kept as-is in a jsonb column.
type MapEvent struct {
	Base
	TenantID     string         `gorm:"type:uuid;not null;index" json:"tenantId" validate:"required,uuid"`
	AuthorUserID string         `gorm:"type:uuid;not null" json:"authorUserId" validate:"required,uuid"`
	LayerKey     string         `gorm:"not null;index:idx_event_lookup" json:"layerKey" validate:"required"`
	Kind         EventKind      `gorm:"not null;index:idx_event_lookup" json:"kind" validate:"required,oneof=POINT LINE"`
	ISO3         string         `gorm:"index:idx_event_lookup" json:"iso3" validate:"omitempty,iso3"`
	Title        string         `gorm:"not null" json:"title" validate:"required"`
	Summary      string         `json:"summary"`
	Visibility   Visibility     `gorm:"not null;default:'FREE';index" json:"visibility" validate:"omitempty,visibility"`
	Geometry     datatypes.JSON `gorm:"type:jsonb;not null" json:"geometry" validate:"required"`
	Tags         datatypes.JSON `gorm:"type:jsonb" json:"tags,omitempty"`
	IsActive     bool           `gorm:"not null;default:true;index" json:"isActive"`
}

func (m *MapEvent) AfterCreate(tx *gorm.DB) error {
	events.Emit("map_event.created", m)
	return nil
}

// AllowedLayersAll is the sentinel stored in Relation.AllowedLayerIDs when the
// relation does not restrict layers.
const AllowedLayersAll = `"ALL"`

// Relation is the lifecycle-managed link between a subscriber and a tenant.
// The composite unique index enforces the one-record-per-pair invariant at the
// storage layer, so a concurrent duplicate request loses on the index rather
// than creating a second row.
type Relation struct {
	Base
	TenantID            string         `gorm:"type:uuid;not null;uniqueIndex:idx_relation_pair;index:idx_relation_tenant_status" json:"tenantId" validate:"required,uuid"`
	Tenant              *Tenant        `json:"tenant,omitempty"`
	SubscriberUserID    string         `gorm:"type:uuid;not null;uniqueIndex:idx_relation_pair;index:idx_relation_subscriber_status" json:"subscriberUserId" validate:"required,uuid"`
	Subscriber          *User          `gorm:"foreignKey:SubscriberUserID" json:"subscriber,omitempty"`
	Status              RelationStatus `gorm:"not null;default:'PENDING';index:idx_relation_tenant_status;index:idx_relation_subscriber_status" json:"status" validate:"omitempty,relation_status"`
	DecidedAt           *time.Time     `json:"decidedAt"`
	CanceledAt          *time.Time     `json:"canceledAt"`
	CanSuggestContent   bool           `gorm:"not null;default:false" json:"canSuggestContent"`
	CanSuggestRelations bool           `gorm:"not null;default:false" json:"canSuggestRelations"`
	AllowedLayerIDs     datatypes.JSON `gorm:"type:jsonb" json:"allowedLayerIds,omitempty"`
}

func (r *Relation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = RelationStatusPending
	}
	if len(r.AllowedLayerIDs) == 0 {
		r.AllowedLayerIDs = datatypes.JSON(AllowedLayersAll)
	}
	return nil
}

// IsOpen reports whether the relation still occupies the pair slot for
// discovery purposes (a tenant disappears from the directory while a request
// is outstanding or approved).
func (r *Relation) IsOpen() bool {
	return r.Status == RelationStatusPending || r.Status == RelationStatusActive
}

// IsTerminated reports whether the relation was ended by either party.
func (r *Relation) IsTerminated() bool {
	return r.Status == RelationStatusRejected ||
		r.Status == RelationStatusCanceled ||
		r.Status == RelationStatusRevoked
}
