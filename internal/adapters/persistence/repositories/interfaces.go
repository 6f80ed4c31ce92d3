package repositories

import (
	"context"
	"time"

	"lendflow-api/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// RoleGrantRepository defines role grant repository interface
type RoleGrantRepository interface {
	Create(ctx context.Context, grant *models.RoleGrant) error
	GetByID(ctx context.Context, id uint) (*models.RoleGrant, error)
	GetByEmailAndRole(ctx context.Context, email, role string) (*models.RoleGrant, error)
	ListByRole(ctx context.Context, role string, offset, limit int) ([]*models.RoleGrant, int64, error)
	// UpdateStatus transitions a grant out of PENDING and returns the
	// number of rows affected (0 means the precondition failed).
	UpdateStatus(ctx context.Context, id uint, status string, approvedBy uint, at time.Time) (int64, error)
	CountByStatus(ctx context.Context, role, status string) (int64, error)
}

// LoanRepository defines loan application repository interface
type LoanRepository interface {
	Create(ctx context.Context, loan *models.LoanApplication) error
	GetByID(ctx context.Context, id uint) (*models.LoanApplication, error)
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.LoanApplication, int64, error)
	List(ctx context.Context, offset, limit int) ([]*models.LoanApplication, int64, error)
	// Transition performs a conditional status update: the row is
	// touched only while still PENDING. Returns rows affected.
	Transition(ctx context.Context, id uint, status string, actorID uint, at time.Time) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	SumAmountByStatus(ctx context.Context, status string) (float64, error)
	Recent(ctx context.Context, limit int) ([]*models.LoanApplication, error)
}

// PaymentRepository defines payment record repository interface
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.PaymentRecord) error
	GetByID(ctx context.Context, id uint) (*models.PaymentRecord, error)
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.PaymentRecord, int64, error)
	List(ctx context.Context, offset, limit int) ([]*models.PaymentRecord, int64, error)
	// Transition performs a conditional PENDING-only status update.
	Transition(ctx context.Context, id uint, status string, actorID uint, at time.Time) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// PaymentMethodRepository defines payment method repository interface
type PaymentMethodRepository interface {
	Create(ctx context.Context, method *models.PaymentMethod) error
	GetByID(ctx context.Context, id uint) (*models.PaymentMethod, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.PaymentMethod, error)
	// SetDefault marks one method default and clears every other
	// default of the same user in a single transaction.
	SetDefault(ctx context.Context, userID, methodID uint) error
	Delete(ctx context.Context, id uint) error
}

// VerificationCodeRepository defines verification code repository interface
type VerificationCodeRepository interface {
	Create(ctx context.Context, code *models.VerificationCode) error
	GetActiveByUser(ctx context.Context, userID uint) (*models.VerificationCode, error)
	// MarkVerified flips verified=false to true. Returns rows
	// affected so a second attempt on the same code reports 0.
	MarkVerified(ctx context.Context, id uint) (int64, error)
	IncrementAttempts(ctx context.Context, id uint) error
	// ExpireActiveByUser invalidates every live code of a user
	// (supersession on resend/reissue).
	ExpireActiveByUser(ctx context.Context, userID uint) error
	HasVerified(ctx context.Context, userID uint) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) error
}

// LoanTypeRepository defines loan type master repository interface
type LoanTypeRepository interface {
	Create(ctx context.Context, loanType *models.LoanType) error
	GetByCode(ctx context.Context, code string) (*models.LoanType, error)
	List(ctx context.Context) ([]*models.LoanType, error)
	Count(ctx context.Context) (int64, error)
}
