package repositories

import (
	"context"
	"time"

	"lendflow-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan application repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create creates a new loan application
func (r *loanRepository) Create(ctx context.Context, loan *models.LoanApplication) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan application by ID with relations
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.LoanApplication, error) {
	var loan models.LoanApplication
	err := r.db.WithContext(ctx).
		Preload("Applicant").
		Preload("Approver").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ListByUser lists a user's own applications, newest first
func (r *loanRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.LoanApplication, int64, error) {
	var loans []*models.LoanApplication
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// List lists all applications with pagination, newest first
func (r *loanRepository) List(ctx context.Context, offset, limit int) ([]*models.LoanApplication, int64, error) {
	var loans []*models.LoanApplication
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Applicant").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// Transition moves an application out of PENDING. The conditional
// WHERE makes concurrent admin decisions safe: only one update can
// match, the loser sees 0 rows affected. The opposite decision
// timestamp is always nulled.
func (r *loanRepository) Transition(ctx context.Context, id uint, status string, actorID uint, at time.Time) (int64, error) {
	patch := map[string]interface{}{
		"status":      status,
		"approved_by": actorID,
	}
	switch status {
	case models.LoanStatusApproved:
		patch["approved_at"] = at
		patch["rejected_at"] = nil
	case models.LoanStatusRejected:
		patch["rejected_at"] = at
		patch["approved_at"] = nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("id = ? AND status = ?", id, models.LoanStatusPending).
		Updates(patch)

	return result.RowsAffected, result.Error
}

// CountByStatus counts applications by status
func (r *loanRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// SumAmountByStatus sums application amounts by status
func (r *loanRepository) SumAmountByStatus(ctx context.Context, status string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("status = ? AND deleted_at IS NULL", status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// Recent returns the most recently created applications
func (r *loanRepository) Recent(ctx context.Context, limit int) ([]*models.LoanApplication, error) {
	var loans []*models.LoanApplication
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&loans).Error
	return loans, err
}
