package services

import (
	"context"
	"errors"
	"strings"

	"geolens/internal/models"
	"geolens/internal/policy"
	"geolens/internal/utils/logger"

	"gorm.io/gorm"
)

// directoryPageSize caps every directory listing; no unbounded scan result is
// ever returned.
const directoryPageSize = 50

// AnalystSummary is one row of the subscribable-tenants directory.
type AnalystSummary struct {
	TenantID      string          `json:"tenantId"`
	TenantName    string          `json:"tenantName"`
	OwnerUserID   string          `json:"ownerUserId"`
	OwnerEmail    string          `json:"ownerEmail,omitempty"`
	OwnerPlanTier models.PlanTier `json:"ownerPlanTier,omitempty"`
}

// DirectoryService computes the set of tenants a principal may still request a
// subscription with.
type DirectoryService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{db: db, log: logger.New("directory")}
}

// EligibleTenants returns active tenants matching searchText, excluding the
// principal's own tenant and every tenant it holds an open (PENDING or ACTIVE)
// relation with. A tenant reappears the moment its relation is rejected,
// canceled or revoked. Most recently updated first, capped page.
func (s *DirectoryService) EligibleTenants(ctx context.Context, p policy.Principal, searchText string) ([]AnalystSummary, error) {
	excluded := make([]string, 0, 8)

	var openRels []models.Relation
	err := s.db.WithContext(ctx).
		Select("tenant_id").
		Where("subscriber_user_id = ? AND status IN ?",
			p.ID, []models.RelationStatus{models.RelationStatusPending, models.RelationStatusActive}).
		Find(&openRels).Error
	if err != nil {
		return nil, err
	}
	for _, rel := range openRels {
		excluded = append(excluded, rel.TenantID)
	}

	if own, err := models.GetTenantByOwner(p.ID, s.db.WithContext(ctx)); err == nil {
		excluded = append(excluded, own.ID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("status = ? AND is_deleted = false", models.TenantStatusActive)

	if q := strings.TrimSpace(searchText); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if len(excluded) > 0 {
		query = query.Where("id NOT IN ?", excluded)
	}

	var tenants []models.Tenant
	err = query.Order("updated_at DESC").Limit(directoryPageSize).Find(&tenants).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]AnalystSummary, 0, len(tenants))
	for _, tenant := range tenants {
		summary := AnalystSummary{
			TenantID:    tenant.ID,
			TenantName:  tenant.Name,
			OwnerUserID: tenant.OwnerUserID,
		}
		if owner, err := models.GetUserByID(tenant.OwnerUserID, s.db.WithContext(ctx)); err == nil {
			summary.OwnerEmail = owner.Email
			summary.OwnerPlanTier = owner.PlanTier
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
