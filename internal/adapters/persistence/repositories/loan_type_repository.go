package repositories

import (
	"context"

	"lendflow-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanTypeRepository implements LoanTypeRepository interface
type loanTypeRepository struct {
	db *gorm.DB
}

// NewLoanTypeRepository creates a new loan type repository
func NewLoanTypeRepository(db *gorm.DB) LoanTypeRepository {
	return &loanTypeRepository{db: db}
}

// Create creates a new loan type
func (r *loanTypeRepository) Create(ctx context.Context, loanType *models.LoanType) error {
	return r.db.WithContext(ctx).Create(loanType).Error
}

// GetByCode gets an active loan type by code
func (r *loanTypeRepository) GetByCode(ctx context.Context, code string) (*models.LoanType, error) {
	var loanType models.LoanType
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", code, true).
		First(&loanType).Error
	if err != nil {
		return nil, err
	}
	return &loanType, nil
}

// List lists all active loan types
func (r *loanTypeRepository) List(ctx context.Context) ([]*models.LoanType, error) {
	var loanTypes []*models.LoanType
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&loanTypes).Error
	return loanTypes, err
}

// Count counts all loan types
func (r *loanTypeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LoanType{}).Count(&count).Error
	return count, err
}
