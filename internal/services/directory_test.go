package services

import (
	"context"
	"fmt"
	"testing"

	"geolens/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenantIDs(summaries []AnalystSummary) []string {
	ids := make([]string, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.TenantID)
	}
	return ids
}

func TestEligibleTenantsExcludesOpenRelations(t *testing.T) {
	db := newTestDB(t)
	dir := NewDirectoryService(db)
	rels := NewRelationService(db)
	ctx := context.Background()

	_, tenantA := createAnalyst(t, db, "a@example.com", "Sahel Watch")
	ownerB, tenantB := createAnalyst(t, db, "b@example.com", "Andes Desk")
	_, tenantC := createAnalyst(t, db, "c@example.com", "Mekong Brief")
	sub := createSubscriber(t, db, "sub@example.com", models.PlanTierSubscriber)
	p := subscriberPrincipal(sub)

	// PENDING against A, ACTIVE against B, nothing against C.
	_, err := rels.Request(ctx, p, tenantA.ID)
	require.NoError(t, err)
	relB, err := rels.Request(ctx, p, tenantB.ID)
	require.NoError(t, err)
	_, err = rels.Decide(ctx, analystPrincipal(ownerB, tenantB), relB.ID, true)
	require.NoError(t, err)

	eligible, err := dir.EligibleTenants(ctx, p, "")
	require.NoError(t, err)
	assert.Equal(t, []string{tenantC.ID}, tenantIDs(eligible))
	assert.Equal(t, "Mekong Brief", eligible[0].TenantName)
	assert.Equal(t, "c@example.com", eligible[0].OwnerEmail)
}

func TestEligibleTenantsReincludesAfterTermination(t *testing.T) {
	db := newTestDB(t)
	dir := NewDirectoryService(db)
	rels := NewRelationService(db)
	ctx := context.Background()

	_, tenant := createAnalyst(t, db, "owner@example.com", "Sahel Watch")
	sub := createSubscriber(t, db, "sub@example.com", models.PlanTierSubscriber)
	p := subscriberPrincipal(sub)

	rel, err := rels.Request(ctx, p, tenant.ID)
	require.NoError(t, err)

	eligible, err := dir.EligibleTenants(ctx, p, "")
	require.NoError(t, err)
	assert.Empty(t, eligible)

	_, err = rels.Cancel(ctx, p, rel.ID)
	require.NoError(t, err)

	eligible, err = dir.EligibleTenants(ctx, p, "")
	require.NoError(t, err)
	assert.Equal(t, []string{tenant.ID}, tenantIDs(eligible))
}

func TestEligibleTenantsExcludesOwnTenant(t *testing.T) {
	db := newTestDB(t)
	dir := NewDirectoryService(db)
	ctx := context.Background()

	analyst, own := createAnalyst(t, db, "me@example.com", "My Desk")
	_, other := createAnalyst(t, db, "other@example.com", "Other Desk")

	eligible, err := dir.EligibleTenants(ctx, analystPrincipal(analyst, own), "")
	require.NoError(t, err)
	assert.Equal(t, []string{other.ID}, tenantIDs(eligible))
}

func TestEligibleTenantsSearchIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	dir := NewDirectoryService(db)
	ctx := context.Background()

	createAnalyst(t, db, "a@example.com", "Sahel Watch")
	createAnalyst(t, db, "b@example.com", "Andes Desk")
	sub := createSubscriber(t, db, "sub@example.com", models.PlanTierSubscriber)
	p := subscriberPrincipal(sub)

	eligible, err := dir.EligibleTenants(ctx, p, "saHEL")
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "Sahel Watch", eligible[0].TenantName)
}

func TestEligibleTenantsSkipsInactive(t *testing.T) {
	db := newTestDB(t)
	dir := NewDirectoryService(db)
	ctx := context.Background()

	_, suspended := createAnalyst(t, db, "a@example.com", "Suspended Desk")
	require.NoError(t, db.Model(&models.Tenant{}).Where("id = ?", suspended.ID).
		Update("status", models.TenantStatusSuspended).Error)
	_, active := createAnalyst(t, db, "b@example.com", "Active Desk")

	sub := createSubscriber(t, db, "sub@example.com", models.PlanTierSubscriber)
	eligible, err := dir.EligibleTenants(ctx, subscriberPrincipal(sub), "")
	require.NoError(t, err)
	assert.Equal(t, []string{active.ID}, tenantIDs(eligible))
}

func TestEligibleTenantsCapped(t *testing.T) {
	db := newTestDB(t)
	dir := NewDirectoryService(db)
	ctx := context.Background()

	for i := 0; i < directoryPageSize+5; i++ {
		createAnalyst(t, db,
			fmt.Sprintf("analyst%d@example.com", i),
			fmt.Sprintf("Desk %d", i))
	}

	sub := createSubscriber(t, db, "sub@example.com", models.PlanTierSubscriber)
	eligible, err := dir.EligibleTenants(ctx, subscriberPrincipal(sub), "")
	require.NoError(t, err)
	assert.Len(t, eligible, directoryPageSize)
}
