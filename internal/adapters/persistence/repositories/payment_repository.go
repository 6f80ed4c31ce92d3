package repositories

import (
	"context"
	"time"

	"lendflow-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// paymentRepository implements PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment record repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment record
func (r *paymentRepository) Create(ctx context.Context, payment *models.PaymentRecord) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByID gets a payment record by ID with relations
func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*models.PaymentRecord, error) {
	var payment models.PaymentRecord
	err := r.db.WithContext(ctx).
		Preload("Payer").
		Preload("Processor").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListByUser lists a user's own payments, newest first
func (r *paymentRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.PaymentRecord, int64, error) {
	var payments []*models.PaymentRecord
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.PaymentRecord{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error

	return payments, total, err
}

// List lists all payments with pagination, newest first
func (r *paymentRepository) List(ctx context.Context, offset, limit int) ([]*models.PaymentRecord, int64, error) {
	var payments []*models.PaymentRecord
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.PaymentRecord{}).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Payer").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error

	return payments, total, err
}

// Transition moves a payment out of PENDING with a conditional
// update; the loser of a concurrent decision sees 0 rows affected.
func (r *paymentRepository) Transition(ctx context.Context, id uint, status string, actorID uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentRecord{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"processed_by": actorID,
			"processed_at": at,
		})

	return result.RowsAffected, result.Error
}

// CountByStatus counts payments by status
func (r *paymentRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentRecord{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// paymentMethodRepository implements PaymentMethodRepository interface
type paymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository creates a new payment method repository
func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

// Create creates a new payment method
func (r *paymentMethodRepository) Create(ctx context.Context, method *models.PaymentMethod) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if method.IsDefault {
			if err := tx.Model(&models.PaymentMethod{}).
				Where("user_id = ?", method.UserID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(method).Error
	})
}

// GetByID gets a payment method by ID
func (r *paymentMethodRepository) GetByID(ctx context.Context, id uint) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.db.WithContext(ctx).First(&method, id).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// ListByUser lists a user's payment methods, default first
func (r *paymentMethodRepository) ListByUser(ctx context.Context, userID uint) ([]*models.PaymentMethod, error) {
	var methods []*models.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&methods).Error
	return methods, err
}

// SetDefault marks one method default and clears the rest inside a
// transaction, so at most one default per user survives.
func (r *paymentMethodRepository) SetDefault(ctx context.Context, userID, methodID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PaymentMethod{}).
			Where("user_id = ? AND id <> ?", userID, methodID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		result := tx.Model(&models.PaymentMethod{}).
			Where("id = ? AND user_id = ?", methodID, userID).
			Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Delete soft deletes a payment method
func (r *paymentMethodRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.PaymentMethod{}, id).Error
}
