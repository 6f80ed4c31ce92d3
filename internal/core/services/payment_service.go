package services

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"lendflow-api/internal/adapters/persistence/models"
	"lendflow-api/internal/adapters/persistence/repositories"
	"lendflow-api/internal/core/domain"
	"lendflow-api/internal/pkg/card"
	"lendflow-api/internal/pkg/password"

	"gorm.io/gorm"
)

// Payment errors
var (
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrPaymentInvalid        = errors.New("invalid payment")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrCardInvalid           = errors.New("invalid card number")
	ErrExpiryInvalid         = errors.New("invalid expiry date")
	ErrPinInvalid            = errors.New("payment pin must be 4-6 digits")
	ErrCVVInvalid            = errors.New("cvv must be 3-4 digits")
	ErrEmailNotVerified      = errors.New("email not verified")
)

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2,4}$`)
	pinPattern    = regexp.MustCompile(`^\d{4,6}$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

// PaymentService owns payment records and stored payment methods.
// Full card numbers never reach the persistence layer: they are
// masked here, and PIN/CVV leave this service only as bcrypt hashes.
type PaymentService struct {
	paymentRepo  repositories.PaymentRepository
	methodRepo   repositories.PaymentMethodRepository
	verification *VerificationService
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	methodRepo repositories.PaymentMethodRepository,
	verification *VerificationService,
) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		methodRepo:   methodRepo,
		verification: verification,
	}
}

// PaymentInput represents a payment submission
type PaymentInput struct {
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	CardholderName string  `json:"cardholder_name" validate:"required,min=2"`
	CardNumber     string  `json:"card_number" validate:"required"`
	PaymentType    string  `json:"payment_type" validate:"required,oneof=loan deposit fee"`
}

// PaymentMethodInput represents a stored payment method submission
type PaymentMethodInput struct {
	CardholderName string `json:"cardholder_name" validate:"required,min=2"`
	CardNumber     string `json:"card_number" validate:"required"`
	ExpiryDate     string `json:"expiry_date" validate:"required"`
	CVV            string `json:"cvv" validate:"required"`
	PaymentPin     string `json:"payment_pin" validate:"required"`
	IsDefault      bool   `json:"is_default"`
}

// Submit records a payment for the caller. The card number is masked
// before the row is created and the status is forced to PENDING.
func (s *PaymentService) Submit(ctx context.Context, caller domain.CallerIdentity, input *PaymentInput) (*models.PaymentRecord, error) {
	if input.Amount <= 0 || strings.TrimSpace(input.CardholderName) == "" {
		return nil, ErrPaymentInvalid
	}

	switch input.PaymentType {
	case models.PaymentTypeLoan, models.PaymentTypeDeposit, models.PaymentTypeFee:
	default:
		return nil, ErrPaymentInvalid
	}

	number := card.Normalize(input.CardNumber)
	if !card.IsValidNumber(number) {
		return nil, ErrCardInvalid
	}

	payment := &models.PaymentRecord{
		UserID:           caller.UserID,
		Amount:           input.Amount,
		CardholderName:   strings.TrimSpace(input.CardholderName),
		MaskedCardNumber: card.Mask(number),
		PaymentType:      input.PaymentType,
		Status:           models.PaymentStatusPending,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	log.Printf("✅ Payment %d submitted by user %d (%.2f %s)", payment.ID, caller.UserID, payment.Amount, payment.PaymentType)
	return payment, nil
}

// GetByID returns a payment record, scoped to the owner unless the
// caller is an admin
func (s *PaymentService) GetByID(ctx context.Context, caller domain.CallerIdentity, isAdmin bool, paymentID uint) (*models.PaymentRecord, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if !isAdmin && payment.UserID != caller.UserID {
		return nil, ErrPaymentNotFound
	}

	return payment, nil
}

// ListMine lists the caller's own payments
func (s *PaymentService) ListMine(ctx context.Context, caller domain.CallerIdentity, offset, limit int) ([]*models.PaymentRecord, int64, error) {
	return s.paymentRepo.ListByUser(ctx, caller.UserID, offset, limit)
}

// ListAll lists every payment (admin console)
func (s *PaymentService) ListAll(ctx context.Context, offset, limit int) ([]*models.PaymentRecord, int64, error) {
	return s.paymentRepo.List(ctx, offset, limit)
}

// decide performs a PENDING-only status transition with the same
// idempotency rule as loan decisions.
func (s *PaymentService) decide(ctx context.Context, paymentID uint, status string, actorID uint) (*models.PaymentRecord, error) {
	affected, err := s.paymentRepo.Transition(ctx, paymentID, status, actorID, time.Now())
	if err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if affected == 0 {
		if payment.Status == status {
			return payment, nil
		}
		return nil, domain.ErrStatusConflict
	}

	log.Printf("✅ Payment %d → %s by admin %d", paymentID, status, actorID)
	return payment, nil
}

// Complete marks a pending payment as completed
func (s *PaymentService) Complete(ctx context.Context, paymentID uint, adminID uint) (*models.PaymentRecord, error) {
	return s.decide(ctx, paymentID, models.PaymentStatusCompleted, adminID)
}

// Fail marks a pending payment as failed
func (s *PaymentService) Fail(ctx context.Context, paymentID uint, adminID uint) (*models.PaymentRecord, error) {
	return s.decide(ctx, paymentID, models.PaymentStatusFailed, adminID)
}

// AddMethod stores a payment method for the caller. Requires a
// verified email. CVV and PIN are bcrypt-hashed before storage.
func (s *PaymentService) AddMethod(ctx context.Context, caller domain.CallerIdentity, input *PaymentMethodInput) (*models.PaymentMethod, error) {
	if s.verification != nil {
		verified, err := s.verification.IsVerified(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, ErrEmailNotVerified
		}
	}

	number := card.Normalize(input.CardNumber)
	if !card.IsValidNumber(number) {
		return nil, ErrCardInvalid
	}
	if !expiryPattern.MatchString(input.ExpiryDate) {
		return nil, ErrExpiryInvalid
	}
	if !cvvPattern.MatchString(input.CVV) {
		return nil, ErrCVVInvalid
	}
	if !pinPattern.MatchString(input.PaymentPin) {
		return nil, ErrPinInvalid
	}

	cvvHash, err := password.Hash(input.CVV)
	if err != nil {
		return nil, err
	}
	pinHash, err := password.Hash(input.PaymentPin)
	if err != nil {
		return nil, err
	}

	method := &models.PaymentMethod{
		UserID:           caller.UserID,
		CardholderName:   strings.TrimSpace(input.CardholderName),
		MaskedCardNumber: card.Mask(number),
		LastFour:         card.LastFour(number),
		ExpiryDate:       input.ExpiryDate,
		CVVHash:          cvvHash,
		PaymentPinHash:   pinHash,
		IsDefault:        input.IsDefault,
	}

	if err := s.methodRepo.Create(ctx, method); err != nil {
		return nil, err
	}

	log.Printf("✅ Payment method %d added for user %d (****%s)", method.ID, caller.UserID, method.LastFour)
	return method, nil
}

// ListMethods lists the caller's stored payment methods
func (s *PaymentService) ListMethods(ctx context.Context, caller domain.CallerIdentity) ([]*models.PaymentMethod, error) {
	return s.methodRepo.ListByUser(ctx, caller.UserID)
}

// SetDefaultMethod marks one of the caller's methods as default
func (s *PaymentService) SetDefaultMethod(ctx context.Context, caller domain.CallerIdentity, methodID uint) error {
	method, err := s.methodRepo.GetByID(ctx, methodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentMethodNotFound
		}
		return err
	}
	if method.UserID != caller.UserID {
		return ErrPaymentMethodNotFound
	}

	return s.methodRepo.SetDefault(ctx, caller.UserID, methodID)
}

// DeleteMethod removes one of the caller's stored payment methods
func (s *PaymentService) DeleteMethod(ctx context.Context, caller domain.CallerIdentity, methodID uint) error {
	method, err := s.methodRepo.GetByID(ctx, methodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentMethodNotFound
		}
		return err
	}
	if method.UserID != caller.UserID {
		return ErrPaymentMethodNotFound
	}

	return s.methodRepo.Delete(ctx, methodID)
}
