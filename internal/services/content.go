package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"geolens/internal/models"
	"geolens/internal/policy"
	"geolens/internal/utils/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	contentPageSize = 50
	eventPageSize   = 1000
)

// ContentItemDTO is the projected view of one content item. Body and Media are
// omitted entirely (not nulled) unless Access is full, so nothing leaks
// through present-but-empty fields.
type ContentItemDTO struct {
	ID          string            `json:"id"`
	TenantID    string            `json:"tenantId"`
	Title       string            `json:"title"`
	Summary     string            `json:"summary"`
	Visibility  models.Visibility `json:"visibility"`
	Tags        datatypes.JSON    `json:"tags,omitempty"`
	PublishedAt time.Time         `json:"publishedAt"`
	Access      policy.Access     `json:"access"`
	LockReason  policy.LockReason `json:"lockReason,omitempty"`
	Body        string            `json:"body,omitempty"`
	Media       datatypes.JSON    `json:"media,omitempty"`
}

// TenantGroup is a per-publisher slice of the result set, item order
// preserved (most recent first).
type TenantGroup struct {
	TenantID   string           `json:"tenantId"`
	TenantName string           `json:"tenantName"`
	Items      []ContentItemDTO `json:"items"`
}

// ContentPage is the full response of a content query.
type ContentPage struct {
	ISO3     string           `json:"iso3"`
	LayerKey string           `json:"layerKey"`
	UserTier models.PlanTier  `json:"userTier"`
	Items    []ContentItemDTO `json:"items"`
	Groups   []TenantGroup    `json:"groups"`
}

// GeoFeature is one map event as a GeoJSON feature. Geometry is omitted on
// locked features.
type GeoFeature struct {
	Type       string                 `json:"type"`
	Geometry   datatypes.JSON         `json:"geometry,omitempty"`
	Properties map[string]interface{} `json:"properties"`
}

// FeatureCollection is the GeoJSON response of an events query.
type FeatureCollection struct {
	Type     string       `json:"type"`
	Features []GeoFeature `json:"features"`
}

// ContentService runs the read pipeline (filter, evaluate, project) and the
// analyst-side writes for content items and map events.
type ContentService struct {
	db        *gorm.DB
	relations *RelationService
	log       *logger.Logger
}

func NewContentService(db *gorm.DB, relations *RelationService) *ContentService {
	return &ContentService{db: db, relations: relations, log: logger.New("content")}
}

func (s *ContentService) loadLayer(ctx context.Context, layerKey string) (*models.Layer, error) {
	if layerKey == "" {
		return nil, &ValidationError{Field: "layer", Reason: "layer key is required"}
	}
	layer, err := models.GetLayerByKey(layerKey, s.db.WithContext(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "layer", ID: layerKey}
		}
		return nil, err
	}
	return layer, nil
}

// checkLayerTier is the once-per-request plan gate of the pipeline.
func checkLayerTier(p policy.Principal, layer *models.Layer) error {
	if !policy.LayerTierOK(p, layer) {
		return &PlanRequiredError{RequiredTier: layer.MinTier, UserTier: p.EffectiveTier()}
	}
	return nil
}

// visibilityScope restricts a query for viewers who may not see PAID items.
// An ACTIVE relation (or ownership) waives the visibility gate for that
// tenant's items, so those tenant ids are carved out of the FREE-only clause.
// The relation waiver only applies to subscriber-role principals, mirroring
// the evaluator's relation step.
func visibilityScope(query *gorm.DB, p policy.Principal, rels map[string]*models.Relation) *gorm.DB {
	if policy.AllowPaid(p) {
		return query
	}
	waived := make([]string, 0, len(rels)+1)
	if p.Role == models.UserRoleSubscriber {
		for tenantID := range rels {
			waived = append(waived, tenantID)
		}
	}
	if p.OwnedTenantID != "" {
		waived = append(waived, p.OwnedTenantID)
	}
	if len(waived) == 0 {
		return query.Where("visibility = ?", models.VisibilityFree)
	}
	return query.Where("visibility = ? OR tenant_id IN ?", models.VisibilityFree, waived)
}

// Query runs the read pipeline for country+layer scoped content: layer gate,
// tier gate, visibility filter, per-item evaluation, projection, grouping.
func (s *ContentService) Query(ctx context.Context, p policy.Principal, iso3, layerKey string) (*ContentPage, error) {
	iso3 = strings.ToUpper(strings.TrimSpace(iso3))
	if len(iso3) != 3 {
		return nil, &ValidationError{Field: "iso3", Reason: "must be a 3-letter country code"}
	}

	layer, err := s.loadLayer(ctx, layerKey)
	if err != nil {
		return nil, err
	}
	if err := checkLayerTier(p, layer); err != nil {
		return nil, err
	}

	rels, err := s.relations.ActiveRelationsByTenant(ctx, p)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("country_iso3 = ? AND layer_key = ? AND is_active = true AND is_deleted = false", iso3, layerKey)
	query = visibilityScope(query, p, rels)

	var items []models.ContentItem
	if err := query.Order("published_at DESC").Limit(contentPageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	dtos := make([]ContentItemDTO, 0, len(items))
	for i := range items {
		decision := policy.Evaluate(p, layer, items[i].TenantID, rels[items[i].TenantID])
		dtos = append(dtos, projectItem(&items[i], decision))
	}

	groups, err := s.groupByTenant(ctx, dtos)
	if err != nil {
		return nil, err
	}

	return &ContentPage{
		ISO3:     iso3,
		LayerKey: layerKey,
		UserTier: p.EffectiveTier(),
		Items:    dtos,
		Groups:   groups,
	}, nil
}

// projectItem shapes one item according to its decision. This is where the
// full-vs-locked contract is enforced; callers never get a body they are not
// allowed to see.
func projectItem(item *models.ContentItem, decision policy.Decision) ContentItemDTO {
	dto := ContentItemDTO{
		ID:          item.ID,
		TenantID:    item.TenantID,
		Title:       item.Title,
		Summary:     item.Summary,
		Visibility:  item.Visibility,
		Tags:        item.Tags,
		PublishedAt: item.PublishedAt,
		Access:      decision.Access,
		LockReason:  decision.Reason,
	}
	if decision.Access == policy.AccessFull {
		dto.Body = item.Body
		dto.Media = item.Media
	}
	return dto
}

// groupByTenant buckets projected items by publisher, keeping the incoming
// (most recent first) order inside each bucket.
func (s *ContentService) groupByTenant(ctx context.Context, dtos []ContentItemDTO) ([]TenantGroup, error) {
	order := make([]string, 0, 4)
	byTenant := make(map[string][]ContentItemDTO)
	for _, dto := range dtos {
		if _, seen := byTenant[dto.TenantID]; !seen {
			order = append(order, dto.TenantID)
		}
		byTenant[dto.TenantID] = append(byTenant[dto.TenantID], dto)
	}

	groups := make([]TenantGroup, 0, len(order))
	for _, tenantID := range order {
		group := TenantGroup{TenantID: tenantID, Items: byTenant[tenantID]}
		if tenant, err := models.GetTenantByID(tenantID, s.db.WithContext(ctx)); err == nil {
			group.TenantName = tenant.Name
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// Events returns map events as a GeoJSON FeatureCollection. A tenant-scoped
// query requires ownership or an ACTIVE relation with that tenant; the
// anonymous case is rejected by the HTTP layer before we get here.
func (s *ContentService) Events(ctx context.Context, p policy.Principal, layerKey, iso3, tenantID string) (*FeatureCollection, error) {
	layer, err := s.loadLayer(ctx, layerKey)
	if err != nil {
		return nil, err
	}
	if err := checkLayerTier(p, layer); err != nil {
		return nil, err
	}

	rels, err := s.relations.ActiveRelationsByTenant(ctx, p)
	if err != nil {
		return nil, err
	}

	if tenantID != "" && !p.OwnsTenant(tenantID) {
		if rels[tenantID] == nil {
			return nil, &SubscriptionRequiredError{TenantID: tenantID}
		}
	}

	query := s.db.WithContext(ctx).
		Where("layer_key = ? AND is_active = true AND is_deleted = false", layerKey)
	iso3 = strings.ToUpper(strings.TrimSpace(iso3))
	if len(iso3) == 3 {
		query = query.Where("iso3 = ?", iso3)
	}
	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}
	query = visibilityScope(query, p, rels)

	var events []models.MapEvent
	if err := query.Order("created_at DESC").Limit(eventPageSize).Find(&events).Error; err != nil {
		return nil, err
	}

	features := make([]GeoFeature, 0, len(events))
	for i := range events {
		decision := policy.Evaluate(p, layer, events[i].TenantID, rels[events[i].TenantID])
		features = append(features, projectEvent(&events[i], decision))
	}

	return &FeatureCollection{Type: "FeatureCollection", Features: features}, nil
}

// projectEvent shapes one map event as a GeoJSON feature. Locked events keep
// their descriptive properties but lose the geometry.
func projectEvent(event *models.MapEvent, decision policy.Decision) GeoFeature {
	feature := GeoFeature{
		Type: "Feature",
		Properties: map[string]interface{}{
			"id":         event.ID,
			"tenantId":   event.TenantID,
			"kind":       event.Kind,
			"title":      event.Title,
			"summary":    event.Summary,
			"visibility": event.Visibility,
			"iso3":       event.ISO3,
			"createdAt":  event.CreatedAt,
			"access":     decision.Access,
		},
	}
	if len(event.Tags) > 0 {
		feature.Properties["tags"] = event.Tags
	}
	if decision.Access == policy.AccessFull {
		feature.Geometry = event.Geometry
	} else {
		feature.Properties["lockReason"] = decision.Reason
	}
	return feature
}

// ListMyItems returns the analyst's own active content items, newest first.
func (s *ContentService) ListMyItems(ctx context.Context, p policy.Principal) ([]models.ContentItem, error) {
	var items []models.ContentItem
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = true AND is_deleted = false", p.OwnedTenantID).
		Order("published_at DESC").
		Limit(500).
		Find(&items).Error
	return items, err
}

// CreateItem publishes a content item under the analyst's tenant.
func (s *ContentService) CreateItem(ctx context.Context, p policy.Principal, item *models.ContentItem) error {
	item.TenantID = p.OwnedTenantID
	item.AuthorUserID = p.ID
	item.IsActive = true
	if item.Visibility == "" {
		item.Visibility = models.VisibilityFree
	}
	return s.db.WithContext(ctx).Create(item).Error
}

// UpdateItem edits an item owned by the analyst's tenant.
func (s *ContentService) UpdateItem(ctx context.Context, p policy.Principal, id string, updated *models.ContentItem) (*models.ContentItem, error) {
	item, err := s.ownedItem(ctx, p, id)
	if err != nil {
		return nil, err
	}

	item.LayerKey = updated.LayerKey
	item.CountryISO3 = strings.ToUpper(strings.TrimSpace(updated.CountryISO3))
	item.Title = updated.Title
	item.Summary = updated.Summary
	item.Body = updated.Body
	if updated.Visibility != "" {
		item.Visibility = updated.Visibility
	}
	if updated.Tags != nil {
		item.Tags = updated.Tags
	}
	if updated.Media != nil {
		item.Media = updated.Media
	}

	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem soft-deletes an item owned by the analyst's tenant. Once
// inactive it never reappears in any result set.
func (s *ContentService) DeleteItem(ctx context.Context, p policy.Principal, id string) error {
	item, err := s.ownedItem(ctx, p, id)
	if err != nil {
		return err
	}
	item.IsActive = false
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *ContentService) ownedItem(ctx context.Context, p policy.Principal, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND is_active = true AND is_deleted = false", id, p.OwnedTenantID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "content item", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListMyEvents returns the analyst's own active map events, newest first.
func (s *ContentService) ListMyEvents(ctx context.Context, p policy.Principal) ([]models.MapEvent, error) {
	var events []models.MapEvent
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = true AND is_deleted = false", p.OwnedTenantID).
		Order("created_at DESC").
		Limit(500).
		Find(&events).Error
	return events, err
}

// CreateEvent publishes a map event under the analyst's tenant.
func (s *ContentService) CreateEvent(ctx context.Context, p policy.Principal, event *models.MapEvent) error {
	event.TenantID = p.OwnedTenantID
	event.AuthorUserID = p.ID
	event.ISO3 = strings.ToUpper(strings.TrimSpace(event.ISO3))
	event.IsActive = true
	if event.Visibility == "" {
		event.Visibility = models.VisibilityFree
	}
	return s.db.WithContext(ctx).Create(event).Error
}

// UpdateEvent edits a map event owned by the analyst's tenant.
func (s *ContentService) UpdateEvent(ctx context.Context, p policy.Principal, id string, updated *models.MapEvent) (*models.MapEvent, error) {
	event, err := s.ownedEvent(ctx, p, id)
	if err != nil {
		return nil, err
	}

	event.LayerKey = updated.LayerKey
	event.Kind = updated.Kind
	event.ISO3 = strings.ToUpper(strings.TrimSpace(updated.ISO3))
	event.Title = updated.Title
	event.Summary = updated.Summary
	event.Geometry = updated.Geometry
	if updated.Visibility != "" {
		event.Visibility = updated.Visibility
	}
	if updated.Tags != nil {
		event.Tags = updated.Tags
	}

	if err := s.db.WithContext(ctx).Save(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// DeleteEvent soft-deletes a map event owned by the analyst's tenant.
func (s *ContentService) DeleteEvent(ctx context.Context, p policy.Principal, id string) error {
	event, err := s.ownedEvent(ctx, p, id)
	if err != nil {
		return err
	}
	event.IsActive = false
	return s.db.WithContext(ctx).Save(event).Error
}

func (s *ContentService) ownedEvent(ctx context.Context, p policy.Principal, id string) (*models.MapEvent, error) {
	var event models.MapEvent
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND is_active = true AND is_deleted = false", id, p.OwnedTenantID).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "map event", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}
