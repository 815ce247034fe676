package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"geolens/internal/models"
	"geolens/internal/policy"
	"geolens/internal/utils/logger"

	"gorm.io/gorm"
)

// RelationService owns the subscription/grant lifecycle. All transitions go
// through it; the evaluator only ever reads the resulting state.
type RelationService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db, log: logger.New("relations")}
}

// StatusFilter is a validated status query parameter, "ALL" meaning no filter.
type StatusFilter string

const StatusFilterAll StatusFilter = "ALL"

// ParseStatusFilter normalizes a raw status query value, falling back to ALL
// for anything unknown.
func ParseStatusFilter(raw string) StatusFilter {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch models.RelationStatus(v) {
	case models.RelationStatusPending, models.RelationStatusActive,
		models.RelationStatusRejected, models.RelationStatusCanceled,
		models.RelationStatusRevoked:
		return StatusFilter(v)
	default:
		return StatusFilterAll
	}
}

// OwnerInfo is the public slice of a user attached to directory and
// subscription listings.
type OwnerInfo struct {
	ID       string          `json:"id"`
	Email    string          `json:"email"`
	PlanTier models.PlanTier `json:"planTier"`
}

// TenantInfo is the tenant summary embedded in subscription listings.
type TenantInfo struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Owner  *OwnerInfo `json:"owner,omitempty"`
	Status string     `json:"status,omitempty"`
}

// SubscriptionSummary is the subscriber-side view of a relation.
type SubscriptionSummary struct {
	SubscriptionID string                `json:"subscriptionId"`
	Status         models.RelationStatus `json:"status"`
	Tenant         TenantInfo            `json:"tenant"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// OwnerRequestSummary is the tenant-owner view of a relation.
type OwnerRequestSummary struct {
	ID         string                `json:"id"`
	Status     models.RelationStatus `json:"status"`
	Tenant     TenantInfo            `json:"tenant"`
	Subscriber *OwnerInfo            `json:"subscriber,omitempty"`
	CreatedAt  time.Time             `json:"createdAt"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

// Request creates or revives the relation between the principal and a tenant.
// The pair's unique index makes concurrent duplicate requests collapse onto
// one row; the loser of the race gets the winner's record back as success.
func (s *RelationService) Request(ctx context.Context, p policy.Principal, tenantID string) (*models.Relation, error) {
	var tenant models.Tenant
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ? AND is_deleted = false", tenantID, models.TenantStatusActive).
		First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "tenant", ID: tenantID}
		}
		return nil, err
	}

	if tenant.OwnerUserID == p.ID {
		return nil, &ConflictError{Reason: ReasonOwnTenant}
	}

	var existing models.Relation
	err = s.db.WithContext(ctx).
		Where("tenant_id = ? AND subscriber_user_id = ?", tenantID, p.ID).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		created := models.Relation{
			TenantID:         tenantID,
			SubscriberUserID: p.ID,
			Status:           models.RelationStatusPending,
		}
		if err := s.db.WithContext(ctx).Create(&created).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost the race; the pair row exists now. Same end state.
				return s.findByPair(ctx, tenantID, p.ID)
			}
			return nil, err
		}
		return &created, nil
	}
	if err != nil {
		return nil, err
	}

	// Idempotent: an open relation is returned unchanged.
	if existing.IsOpen() {
		return &existing, nil
	}

	// Re-request after rejection/cancellation revives the same record.
	existing.Status = models.RelationStatusPending
	existing.DecidedAt = nil
	existing.CanceledAt = nil
	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	s.log.Info("Relation %s re-requested by %s", existing.ID, p.ID)
	return &existing, nil
}

func (s *RelationService) findByPair(ctx context.Context, tenantID, subscriberID string) (*models.Relation, error) {
	var rel models.Relation
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND subscriber_user_id = ?", tenantID, subscriberID).
		First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// Decide lets the tenant owner approve or reject a PENDING relation. A
// relation already moved to CANCELED stays canceled; only a fresh request can
// revive it.
func (s *RelationService) Decide(ctx context.Context, p policy.Principal, relationID string, approve bool) (*models.Relation, error) {
	rel, tenant, err := s.loadRelationWithTenant(ctx, relationID)
	if err != nil {
		return nil, err
	}

	if tenant.OwnerUserID != p.ID {
		return nil, &ForbiddenError{}
	}

	if rel.Status == models.RelationStatusCanceled {
		return nil, &ConflictError{Reason: ReasonAlreadyCanceled}
	}
	if rel.Status != models.RelationStatusPending {
		return nil, &ConflictError{Reason: ReasonBadTransition}
	}

	now := time.Now()
	if approve {
		rel.Status = models.RelationStatusActive
	} else {
		rel.Status = models.RelationStatusRejected
	}
	rel.DecidedAt = &now

	if err := s.db.WithContext(ctx).Save(rel).Error; err != nil {
		return nil, err
	}
	s.log.Info("Relation %s decided (%s) by owner %s", rel.ID, rel.Status, p.ID)
	return rel, nil
}

// Cancel ends a relation. The subscriber may cancel a PENDING or ACTIVE
// relation; the owner may revoke an ACTIVE one. An already-terminated relation
// is a no-op for either party.
func (s *RelationService) Cancel(ctx context.Context, p policy.Principal, relationID string) (*models.Relation, error) {
	rel, tenant, err := s.loadRelationWithTenant(ctx, relationID)
	if err != nil {
		return nil, err
	}

	isSubscriber := rel.SubscriberUserID == p.ID
	isOwner := tenant.OwnerUserID == p.ID
	if !isSubscriber && !isOwner {
		return nil, &ForbiddenError{}
	}

	if rel.IsTerminated() {
		return rel, nil
	}

	switch rel.Status {
	case models.RelationStatusPending:
		if !isSubscriber {
			// Owners decide pending requests, they do not cancel them.
			return nil, &ConflictError{Reason: ReasonBadTransition}
		}
		rel.Status = models.RelationStatusCanceled
	case models.RelationStatusActive:
		if isOwner {
			rel.Status = models.RelationStatusRevoked
		} else {
			rel.Status = models.RelationStatusCanceled
		}
	default:
		return nil, &ConflictError{Reason: ReasonBadTransition}
	}

	now := time.Now()
	rel.CanceledAt = &now

	if err := s.db.WithContext(ctx).Save(rel).Error; err != nil {
		return nil, err
	}
	s.log.Info("Relation %s terminated (%s) by %s", rel.ID, rel.Status, p.ID)
	return rel, nil
}

func (s *RelationService) loadRelationWithTenant(ctx context.Context, relationID string) (*models.Relation, *models.Tenant, error) {
	var rel models.Relation
	err := s.db.WithContext(ctx).Where("id = ?", relationID).First(&rel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NotFoundError{Resource: "relation", ID: relationID}
		}
		return nil, nil, err
	}

	var tenant models.Tenant
	err = s.db.WithContext(ctx).Where("id = ? AND is_deleted = false", rel.TenantID).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NotFoundError{Resource: "tenant", ID: rel.TenantID}
		}
		return nil, nil, err
	}
	return &rel, &tenant, nil
}

// ListMine returns the principal's relations, newest first, with tenant and
// owner display info attached.
func (s *RelationService) ListMine(ctx context.Context, p policy.Principal, status StatusFilter) ([]SubscriptionSummary, error) {
	query := s.db.WithContext(ctx).
		Where("subscriber_user_id = ?", p.ID).
		Order("updated_at DESC")
	if status != StatusFilterAll {
		query = query.Where("status = ?", string(status))
	}

	var rels []models.Relation
	if err := query.Find(&rels).Error; err != nil {
		return nil, err
	}

	summaries := make([]SubscriptionSummary, 0, len(rels))
	for _, rel := range rels {
		tenant, err := models.GetTenantByID(rel.TenantID, s.db.WithContext(ctx))
		if err != nil {
			continue
		}
		info := TenantInfo{ID: tenant.ID, Name: tenant.Name}
		if owner, err := models.GetUserByID(tenant.OwnerUserID, s.db.WithContext(ctx)); err == nil {
			info.Owner = &OwnerInfo{ID: owner.ID, Email: owner.Email, PlanTier: owner.PlanTier}
		}
		summaries = append(summaries, SubscriptionSummary{
			SubscriptionID: rel.ID,
			Status:         rel.Status,
			Tenant:         info,
			CreatedAt:      rel.CreatedAt,
			UpdatedAt:      rel.UpdatedAt,
		})
	}
	return summaries, nil
}

// SubscribedTenants returns the active tenants the principal holds a relation
// with, defaulting to ACTIVE relations (the map view).
func (s *RelationService) SubscribedTenants(ctx context.Context, p policy.Principal, status StatusFilter) ([]models.Tenant, error) {
	effective := status
	if effective == StatusFilterAll {
		effective = StatusFilter(models.RelationStatusActive)
	}

	var rels []models.Relation
	err := s.db.WithContext(ctx).
		Where("subscriber_user_id = ? AND status = ?", p.ID, string(effective)).
		Find(&rels).Error
	if err != nil {
		return nil, err
	}

	tenantIDs := make([]string, 0, len(rels))
	for _, rel := range rels {
		tenantIDs = append(tenantIDs, rel.TenantID)
	}
	if len(tenantIDs) == 0 {
		return []models.Tenant{}, nil
	}

	var tenants []models.Tenant
	err = s.db.WithContext(ctx).
		Where("id IN ? AND status = ? AND is_deleted = false", tenantIDs, models.TenantStatusActive).
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

// ListOwnerRequests returns relations against the owner's tenant, newest
// first, with subscriber display info attached.
func (s *RelationService) ListOwnerRequests(ctx context.Context, p policy.Principal, status StatusFilter) ([]OwnerRequestSummary, error) {
	tenant, err := models.GetTenantByOwner(p.ID, s.db.WithContext(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []OwnerRequestSummary{}, nil
		}
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenant.ID).
		Order("updated_at DESC")
	if status != StatusFilterAll {
		query = query.Where("status = ?", string(status))
	}

	var rels []models.Relation
	if err := query.Find(&rels).Error; err != nil {
		return nil, err
	}

	info := TenantInfo{ID: tenant.ID, Name: tenant.Name}
	summaries := make([]OwnerRequestSummary, 0, len(rels))
	for _, rel := range rels {
		summary := OwnerRequestSummary{
			ID:        rel.ID,
			Status:    rel.Status,
			Tenant:    info,
			CreatedAt: rel.CreatedAt,
			UpdatedAt: rel.UpdatedAt,
		}
		if sub, err := models.GetUserByID(rel.SubscriberUserID, s.db.WithContext(ctx)); err == nil {
			summary.Subscriber = &OwnerInfo{ID: sub.ID, Email: sub.Email, PlanTier: sub.PlanTier}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ActiveRelation returns the principal's ACTIVE relation with a tenant, nil
// when none exists. Read by the evaluator path, never mutated there.
func (s *RelationService) ActiveRelation(ctx context.Context, p policy.Principal, tenantID string) (*models.Relation, error) {
	if p.IsAnonymous() {
		return nil, nil
	}
	var rel models.Relation
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND subscriber_user_id = ? AND status = ?",
			tenantID, p.ID, models.RelationStatusActive).
		First(&rel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// ActiveRelationsByTenant returns the principal's ACTIVE relations keyed by
// tenant id, for batch evaluation of mixed-tenant result sets.
func (s *RelationService) ActiveRelationsByTenant(ctx context.Context, p policy.Principal) (map[string]*models.Relation, error) {
	out := make(map[string]*models.Relation)
	if p.IsAnonymous() {
		return out, nil
	}
	var rels []models.Relation
	err := s.db.WithContext(ctx).
		Where("subscriber_user_id = ? AND status = ?", p.ID, models.RelationStatusActive).
		Find(&rels).Error
	if err != nil {
		return nil, err
	}
	for i := range rels {
		out[rels[i].TenantID] = &rels[i]
	}
	return out, nil
}
