package services

import (
	"context"
	"testing"
	"time"

	"geolens/internal/models"
	"geolens/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newContentService(db *gorm.DB) *ContentService {
	return NewContentService(db, NewRelationService(db))
}

func createItem(t *testing.T, db *gorm.DB, tenant models.Tenant, layerKey, iso3, title string, vis models.Visibility, publishedAt time.Time) models.ContentItem {
	t.Helper()

	item := models.ContentItem{
		TenantID:     tenant.ID,
		AuthorUserID: tenant.OwnerUserID,
		LayerKey:     layerKey,
		CountryISO3:  iso3,
		Title:        title,
		Summary:      "summary of " + title,
		Body:         "body of " + title,
		Visibility:   vis,
		Media:        datatypes.JSON(`["media/cover.png"]`),
		PublishedAt:  publishedAt,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func createEvent(t *testing.T, db *gorm.DB, tenant models.Tenant, layerKey, iso3, title string, vis models.Visibility) models.MapEvent {
	t.Helper()

	event := models.MapEvent{
		TenantID:     tenant.ID,
		AuthorUserID: tenant.OwnerUserID,
		LayerKey:     layerKey,
		Kind:         models.EventKindPoint,
		ISO3:         iso3,
		Title:        title,
		Visibility:   vis,
		Geometry:     datatypes.JSON(`{"type":"Point","coordinates":[13.19,32.89]}`),
		IsActive:     true,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func approveRelation(t *testing.T, db *gorm.DB, rels *RelationService, owner models.User, tenant models.Tenant, sub policy.Principal) *models.Relation {
	t.Helper()

	ctx := context.Background()
	rel, err := rels.Request(ctx, sub, tenant.ID)
	require.NoError(t, err)
	rel, err = rels.Decide(ctx, analystPrincipal(owner, tenant), rel.ID, true)
	require.NoError(t, err)
	return rel
}

func TestQueryRejectsBadISO3(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)

	_, err := svc.Query(context.Background(), policy.Anonymous(), "LBYA", "briefs")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "iso3", validation.Field)
}

func TestQueryUnknownLayer(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)

	_, err := svc.Query(context.Background(), policy.Anonymous(), "LBY", "nope")
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestQueryLayerTierGate(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	createLayer(t, db, "deep_dives", models.PlanTierSubscriberPlus)

	sub := createSubscriber(t, db, "sub@example.com", models.PlanTierSubscriber)
	_, err := svc.Query(context.Background(), subscriberPrincipal(sub), "LBY", "deep_dives")

	var planErr *PlanRequiredError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, models.PlanTierSubscriberPlus, planErr.RequiredTier)
	assert.Equal(t, models.PlanTierSubscriber, planErr.UserTier)
}

func TestQueryInvitedViewerNeverSeesPaidItems(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	createLayer(t, db, "briefs", models.PlanTierInvited)

	_, tenant := createAnalyst(t, db, "owner@example.com", "Sahel Watch")
	createItem(t, db, tenant, "briefs", "LBY", "free brief", models.VisibilityFree, time.Now())
	createItem(t, db, tenant, "briefs", "LBY", "paid brief", models.VisibilityPaid, time.Now())

	page, err := svc.Query(context.Background(), policy.Anonymous(), "lby", "briefs")
	require.NoError(t, err)

	// The PAID item is filtered out at the query stage, not returned locked.
	require.Len(t, page.Items, 1)
	assert.Equal(t, "free brief", page.Items[0].Title)
	assert.Equal(t, policy.AccessFull, page.Items[0].Access)
	assert.Equal(t, "body of free brief", page.Items[0].Body)
	assert.Equal(t, "LBY", page.ISO3)
	assert.Equal(t, models.PlanTierInvited, page.UserTier)
}

func TestQueryLockedProjectionOmitsBodyAndMedia(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	createLayer(t, db, "field_reports", models.PlanTierSubscriber)

	_, tenant := createAnalyst(t, db, "owner@example.com", "Sahel Watch")
	createItem(t, db, tenant, "field_reports", "LBY", "report", models.VisibilityPaid, time.Now())

	sub := createSubscriber(t, db, "sub@example.com", models.PlanTierSubscriber)
	page, err := svc.Query(context.Background(), subscriberPrincipal(sub), "LBY", "field_reports")
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	item := page.Items[0]
	assert.Equal(t, policy.AccessLocked, item.Access)
	assert.Equal(t, policy.ReasonSubscriptionRequired, item.LockReason)
	assert.Empty(t, item.Body)
	assert.Nil(t, item.Media)
	// Teaser fields stay visible.
	assert.Equal(t, "report", item.Title)
	assert.Equal(t, "summary of report", item.Summary)
}

func TestQueryActiveRelationUnlocks(t *testing.T) {
	db := newTestDB(t)
	rels := NewRelationService(db)
	svc := NewContentService(db, rels)
	createLayer(t, db, "field_reports", models.PlanTierSubscriber)

	owner, tenant := createAnalyst(t, db, "owner@example.com", "Sahel Watch")
	createItem(t, db, tenant, "field_reports", "LBY", "report", models.VisibilityPaid, time.Now())

	sub := createSubscriber(t, db, "sub@example.com", models.PlanTierSubscriber)
	p := subscriberPrincipal(sub)
	approveRelation(t, db, rels, owner, tenant, p)

	page, err := svc.Query(context.Background(), p, "LBY", "field_reports")
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	item := page.Items[0]
	assert.Equal(t, policy.AccessFull, item.Access)
	assert.Equal(t, "body of report", item.Body)
	assert.NotNil(t, item.Media)
}

func TestQueryOwnerSeesOwnPaidItems(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	createLayer(t, db, "briefs", models.PlanTierInvited)

	analyst, tenant := createAnalyst(t, db, "owner@example.com", "Sahel Watch")
	createItem(t, db, tenant, "briefs", "LBY", "paid brief", models.VisibilityPaid, time.Now())

	// Analysts rank INVITED but still see their own tenant's PAID items.
	page, err := svc.Query(context.Background(), analystPrincipal(analyst, tenant), "LBY", "briefs")
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, policy.AccessFull, page.Items[0].Access)
	assert.Equal(t, "body of paid brief", page.Items[0].Body)
}

func TestQueryGroupsByTenantPreservingOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	createLayer(t, db, "briefs", models.PlanTierInvited)

	_, tenantA := createAnalyst(t, db, "a@example.com", "Sahel Watch")
	_, tenantB := createAnalyst(t, db, "b@example.com", "Andes Desk")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createItem(t, db, tenantA, "briefs", "LBY", "oldest", models.VisibilityFree, base)
	createItem(t, db, tenantB, "briefs", "LBY", "middle", models.VisibilityFree, base.Add(time.Hour))
	createItem(t, db, tenantA, "briefs", "LBY", "newest", models.VisibilityFree, base.Add(2*time.Hour))

	page, err := svc.Query(context.Background(), policy.Anonymous(), "LBY", "briefs")
	require.NoError(t, err)

	require.Len(t, page.Items, 3)
	assert.Equal(t, "newest", page.Items[0].Title)
	assert.Equal(t, "middle", page.Items[1].Title)
	assert.Equal(t, "oldest", page.Items[2].Title)

	// Tenants appear in first-seen order, items newest-first inside each group.
	require.Len(t, page.Groups, 2)
	assert.Equal(t, tenantA.ID, page.Groups[0].TenantID)
	assert.Equal(t, "Sahel Watch", page.Groups[0].TenantName)
	require.Len(t, page.Groups[0].Items, 2)
	assert.Equal(t, "newest", page.Groups[0].Items[0].Title)
	assert.Equal(t, "oldest", page.Groups[0].Items[1].Title)
	assert.Equal(t, tenantB.ID, page.Groups[1].TenantID)
}

func TestQuerySkipsInactiveItems(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	createLayer(t, db, "briefs", models.PlanTierInvited)

	analyst, tenant := createAnalyst(t, db, "owner@example.com", "Sahel Watch")
	item := createItem(t, db, tenant, "briefs", "LBY", "gone", models.VisibilityFree, time.Now())

	require.NoError(t, svc.DeleteItem(context.Background(), analystPrincipal(analyst, tenant), item.ID))

	page, err := svc.Query(context.Background(), policy.Anonymous(), "LBY", "briefs")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestEventsTenantScopeRequiresRelation(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	createLayer(t, db, "incidents", models.PlanTierInvited)

	_, tenant := createAnalyst(t, db, "owner@example.com", "Sahel Watch")
	sub := createSubscriber(t, db, "sub@example.com", models.PlanTierSubscriber)

	_, err := svc.Events(context.Background(), subscriberPrincipal(sub), "incidents", "", tenant.ID)
	var subErr *SubscriptionRequiredError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, tenant.ID, subErr.TenantID)
}

func TestEventsTenantScopeOwnerAllowed(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	createLayer(t, db, "incidents", models.PlanTierInvited)

	analyst, tenant := createAnalyst(t, db, "owner@example.com", "Sahel Watch")
	createEvent(t, db, tenant, "incidents", "LBY", "checkpoint", models.VisibilityFree)

	fc, err := svc.Events(context.Background(), analystPrincipal(analyst, tenant), "incidents", "", tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 1)
}

func TestEventsLockedFeatureLosesGeometry(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	createLayer(t, db, "incidents", models.PlanTierSubscriber)

	_, tenant := createAnalyst(t, db, "owner@example.com", "Sahel Watch")
	createEvent(t, db, tenant, "incidents", "LBY", "checkpoint", models.VisibilityFree)

	sub := createSubscriber(t, db, "sub@example.com", models.PlanTierSubscriber)
	fc, err := svc.Events(context.Background(), subscriberPrincipal(sub), "incidents", "LBY", "")
	require.NoError(t, err)

	require.Len(t, fc.Features, 1)
	feature := fc.Features[0]
	assert.Equal(t, "Feature", feature.Type)
	assert.Nil(t, feature.Geometry)
	assert.Equal(t, policy.AccessLocked, feature.Properties["access"])
	assert.Equal(t, policy.ReasonSubscriptionRequired, feature.Properties["lockReason"])
	assert.Equal(t, "checkpoint", feature.Properties["title"])
}

func TestEventsFullFeatureKeepsGeometry(t *testing.T) {
	db := newTestDB(t)
	rels := NewRelationService(db)
	svc := NewContentService(db, rels)
	createLayer(t, db, "incidents", models.PlanTierSubscriber)

	owner, tenant := createAnalyst(t, db, "owner@example.com", "Sahel Watch")
	createEvent(t, db, tenant, "incidents", "LBY", "checkpoint", models.VisibilityFree)

	sub := createSubscriber(t, db, "sub@example.com", models.PlanTierSubscriber)
	p := subscriberPrincipal(sub)
	approveRelation(t, db, rels, owner, tenant, p)

	fc, err := svc.Events(context.Background(), p, "incidents", "", "")
	require.NoError(t, err)

	require.Len(t, fc.Features, 1)
	feature := fc.Features[0]
	assert.NotNil(t, feature.Geometry)
	assert.Equal(t, policy.AccessFull, feature.Properties["access"])
	assert.NotContains(t, feature.Properties, "lockReason")
}

func TestEventsISO3Filter(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	createLayer(t, db, "incidents", models.PlanTierInvited)

	_, tenant := createAnalyst(t, db, "owner@example.com", "Sahel Watch")
	createEvent(t, db, tenant, "incidents", "LBY", "in libya", models.VisibilityFree)
	createEvent(t, db, tenant, "incidents", "TCD", "in chad", models.VisibilityFree)

	fc, err := svc.Events(context.Background(), policy.Anonymous(), "incidents", "lby", "")
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "in libya", fc.Features[0].Properties["title"])
}

func TestAnalystItemCRUDIsTenantScoped(t *testing.T) {
	db := newTestDB(t)
	svc := newContentService(db)
	ctx := context.Background()
	createLayer(t, db, "briefs", models.PlanTierInvited)

	analystA, tenantA := createAnalyst(t, db, "a@example.com", "Sahel Watch")
	analystB, tenantB := createAnalyst(t, db, "b@example.com", "Andes Desk")
	pA := analystPrincipal(analystA, tenantA)
	pB := analystPrincipal(analystB, tenantB)

	item := &models.ContentItem{
		LayerKey:    "briefs",
		CountryISO3: "LBY",
		Title:       "draft",
		Summary:     "short",
	}
	require.NoError(t, svc.CreateItem(ctx, pA, item))
	assert.Equal(t, tenantA.ID, item.TenantID)
	assert.Equal(t, analystA.ID, item.AuthorUserID)
	assert.Equal(t, models.VisibilityFree, item.Visibility)

	// Another analyst cannot touch it.
	_, err := svc.UpdateItem(ctx, pB, item.ID, &models.ContentItem{Title: "hijacked"})
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.ErrorAs(t, svc.DeleteItem(ctx, pB, item.ID), &notFound)

	updated, err := svc.UpdateItem(ctx, pA, item.ID, &models.ContentItem{
		LayerKey:    "briefs",
		CountryISO3: "lby",
		Title:       "final",
		Summary:     "short",
		Visibility:  models.VisibilityPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "LBY", updated.CountryISO3)
	assert.Equal(t, models.VisibilityPaid, updated.Visibility)

	mine, err := svc.ListMyItems(ctx, pA)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	require.NoError(t, svc.DeleteItem(ctx, pA, item.ID))
	mine, err = svc.ListMyItems(ctx, pA)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
