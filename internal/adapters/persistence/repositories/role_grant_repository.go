package repositories

import (
	"context"
	"time"

	"lendflow-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// roleGrantRepository implements RoleGrantRepository interface
type roleGrantRepository struct {
	db *gorm.DB
}

// NewRoleGrantRepository creates a new role grant repository
func NewRoleGrantRepository(db *gorm.DB) RoleGrantRepository {
	return &roleGrantRepository{db: db}
}

// Create creates a new role grant
func (r *roleGrantRepository) Create(ctx context.Context, grant *models.RoleGrant) error {
	return r.db.WithContext(ctx).Create(grant).Error
}

// GetByID gets a role grant by ID
func (r *roleGrantRepository) GetByID(ctx context.Context, id uint) (*models.RoleGrant, error) {
	var grant models.RoleGrant
	err := r.db.WithContext(ctx).First(&grant, id).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// GetByEmailAndRole gets the grant row for an email/role pair
func (r *roleGrantRepository) GetByEmailAndRole(ctx context.Context, email, role string) (*models.RoleGrant, error) {
	var grant models.RoleGrant
	err := r.db.WithContext(ctx).
		Where("email = ? AND role = ?", email, role).
		First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// ListByRole lists grants for a role with pagination, newest first
func (r *roleGrantRepository) ListByRole(ctx context.Context, role string, offset, limit int) ([]*models.RoleGrant, int64, error) {
	var grants []*models.RoleGrant
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.RoleGrant{}).
		Where("role = ?", role).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&grants).Error

	return grants, total, err
}

// UpdateStatus transitions a grant out of PENDING. The WHERE clause
// keeps the update conditional so two concurrent superadmin decisions
// cannot both apply. The opposite decision timestamp is always nulled.
func (r *roleGrantRepository) UpdateStatus(ctx context.Context, id uint, status string, approvedBy uint, at time.Time) (int64, error) {
	patch := map[string]interface{}{
		"status":      status,
		"approved_by": approvedBy,
	}
	switch status {
	case models.GrantStatusApproved:
		patch["approved_at"] = at
		patch["rejected_at"] = nil
	case models.GrantStatusRejected:
		patch["rejected_at"] = at
		patch["approved_at"] = nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.RoleGrant{}).
		Where("id = ? AND status = ?", id, models.GrantStatusPending).
		Updates(patch)

	return result.RowsAffected, result.Error
}

// CountByStatus counts grants for a role by status
func (r *roleGrantRepository) CountByStatus(ctx context.Context, role, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RoleGrant{}).
		Where("role = ? AND status = ?", role, status).
		Count(&count).Error
	return count, err
}
