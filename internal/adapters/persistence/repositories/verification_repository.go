package repositories

import (
	"context"
	"time"

	"lendflow-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// verificationCodeRepository implements VerificationCodeRepository interface
type verificationCodeRepository struct {
	db *gorm.DB
}

// NewVerificationCodeRepository creates a new verification code repository
func NewVerificationCodeRepository(db *gorm.DB) VerificationCodeRepository {
	return &verificationCodeRepository{db: db}
}

// Create creates a new verification code
func (r *verificationCodeRepository) Create(ctx context.Context, code *models.VerificationCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// GetActiveByUser gets the newest unverified code for a user.
// Expiry is checked by the caller so an expired row can still
// trigger a reissue.
func (r *verificationCodeRepository) GetActiveByUser(ctx context.Context, userID uint) (*models.VerificationCode, error) {
	var code models.VerificationCode
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND verified = ?", userID, false).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// MarkVerified flips verified from false to true. The conditional
// WHERE makes the code single-use: a second call affects 0 rows.
func (r *verificationCodeRepository) MarkVerified(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("id = ? AND verified = ?", id, false).
		Update("verified", true)
	return result.RowsAffected, result.Error
}

// IncrementAttempts bumps the failed-attempt counter
func (r *verificationCodeRepository) IncrementAttempts(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}

// ExpireActiveByUser kills every live code of a user so a superseded
// code can never validate again
func (r *verificationCodeRepository) ExpireActiveByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("user_id = ? AND verified = ? AND expires_at > ?", userID, false, time.Now()).
		Update("expires_at", time.Now()).Error
}

// HasVerified reports whether the user completed verification
func (r *verificationCodeRepository) HasVerified(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("user_id = ? AND verified = ?", userID, true).
		Count(&count).Error
	return count > 0, err
}

// DeleteExpired removes stale unverified codes (cleanup job)
func (r *verificationCodeRepository) DeleteExpired(ctx context.Context, before time.Time) error {
	return r.db.WithContext(ctx).
		Where("expires_at < ? AND verified = ?", before, false).
		Delete(&models.VerificationCode{}).Error
}
