package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"lendflow-api/internal/adapters/persistence/models"
	"lendflow-api/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Verification errors
var (
	ErrCodeNotFound    = errors.New("no active verification code")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrCodeMismatch    = errors.New("verification code does not match")
	ErrCodeUsed        = errors.New("verification code already used")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrResendTooSoon   = errors.New("verification code requested too recently")
	ErrAlreadyVerified = errors.New("email already verified")
)

// Verification code policy
const (
	codeLength     = 6
	codeTTL        = 5 * time.Minute
	resendCooldown = 60 * time.Second
	maxAttempts    = 5
)

// VerificationService manages single-use email verification codes.
// Issuing a new code kills every earlier live code for the user.
type VerificationService struct {
	codeRepo     repositories.VerificationCodeRepository
	notification *NotificationService
}

// NewVerificationService creates a new verification service
func NewVerificationService(codeRepo repositories.VerificationCodeRepository, notification *NotificationService) *VerificationService {
	return &VerificationService{codeRepo: codeRepo, notification: notification}
}

// Issue generates a fresh code for the user, supersedes any live one,
// and sends it to the given email.
func (s *VerificationService) Issue(ctx context.Context, userID uint, email string) (*models.VerificationCode, error) {
	verified, err := s.codeRepo.HasVerified(ctx, userID)
	if err != nil {
		return nil, err
	}
	if verified {
		return nil, ErrAlreadyVerified
	}

	// Supersede: only the newest code may validate
	if err := s.codeRepo.ExpireActiveByUser(ctx, userID); err != nil {
		return nil, err
	}

	code, err := generateCode(codeLength)
	if err != nil {
		return nil, err
	}

	record := &models.VerificationCode{
		UserID:    userID,
		Code:      code,
		ExpiresAt: time.Now().Add(codeTTL),
	}

	if err := s.codeRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	if s.notification != nil {
		if err := s.notification.SendVerificationCode(ctx, email, code); err != nil {
			log.Printf("⚠️ Failed to send verification code to %s: %v", email, err)
		}
	}

	log.Printf("✅ Verification code issued for user %d", userID)
	return record, nil
}

// Verify checks the submitted code against the user's active code.
// An expired code is rejected even on a match and a replacement is
// issued to the given email. A correct match flips the code to
// verified exactly once; the flip is conditional so a raced duplicate
// submit reports the code as used.
func (s *VerificationService) Verify(ctx context.Context, userID uint, email, submitted string) error {
	record, err := s.codeRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verified, verr := s.codeRepo.HasVerified(ctx, userID)
			if verr == nil && verified {
				return ErrAlreadyVerified
			}
			return ErrCodeNotFound
		}
		return err
	}

	if record.IsExpired() {
		if _, err := s.Issue(ctx, userID, email); err != nil {
			log.Printf("⚠️ Failed to reissue verification code for user %d: %v", userID, err)
		}
		return ErrCodeExpired
	}

	if record.Attempts >= maxAttempts {
		return ErrTooManyAttempts
	}

	if record.Code != submitted {
		if err := s.codeRepo.IncrementAttempts(ctx, record.ID); err != nil {
			log.Printf("⚠️ Failed to record verification attempt: %v", err)
		}
		return ErrCodeMismatch
	}

	affected, err := s.codeRepo.MarkVerified(ctx, record.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCodeUsed
	}

	log.Printf("✅ Email verified for user %d", userID)
	return nil
}

// Resend issues a new code, enforcing a cooldown against the newest
// live code so the endpoint cannot be used to spam a mailbox.
func (s *VerificationService) Resend(ctx context.Context, userID uint, email string) (*models.VerificationCode, error) {
	record, err := s.codeRepo.GetActiveByUser(ctx, userID)
	if err == nil && !record.IsExpired() {
		issuedAgo := time.Since(record.CreatedAt)
		if issuedAgo < resendCooldown {
			return nil, ErrResendTooSoon
		}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.Issue(ctx, userID, email)
}

// IsVerified reports whether the user has completed email verification
func (s *VerificationService) IsVerified(ctx context.Context, userID uint) (bool, error) {
	return s.codeRepo.HasVerified(ctx, userID)
}

// PurgeExpired deletes expired, unverified codes older than the cutoff
func (s *VerificationService) PurgeExpired(ctx context.Context, olderThan time.Duration) error {
	return s.codeRepo.DeleteExpired(ctx, time.Now().Add(-olderThan))
}

// generateCode returns a zero-padded numeric code of the given length
// using crypto/rand.
func generateCode(length int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
