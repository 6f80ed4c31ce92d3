package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"lendflow-api/internal/adapters/persistence/models"
	"lendflow-api/internal/adapters/persistence/repositories"
	"lendflow-api/internal/core/domain"

	"gorm.io/gorm"
)

// Loan errors
var (
	ErrLoanNotFound    = errors.New("loan application not found")
	ErrLoanInvalid     = errors.New("invalid loan application")
	ErrLoanTypeUnknown = errors.New("unknown loan type")
	ErrLoanAmountRange = errors.New("amount outside loan type range")
	ErrLoanForbidden   = errors.New("loan application belongs to another user")
)

// Loan term bounds in months
const (
	minTermMonths = 1
	maxTermMonths = 60
)

// LoanService owns the loan application lifecycle. Submissions always
// enter as PENDING regardless of what the client sends; decisions are
// conditional updates so two admins cannot both win.
type LoanService struct {
	loanRepo     repositories.LoanRepository
	loanTypeRepo repositories.LoanTypeRepository
	notification *NotificationService
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repositories.LoanRepository,
	loanTypeRepo repositories.LoanTypeRepository,
	notification *NotificationService,
) *LoanService {
	return &LoanService{
		loanRepo:     loanRepo,
		loanTypeRepo: loanTypeRepo,
		notification: notification,
	}
}

// LoanInput represents a loan application submission
type LoanInput struct {
	LoanType   string  `json:"loan_type" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	TermMonths int     `json:"term_months" validate:"required,min=1,max=60"`
	FullName   string  `json:"full_name" validate:"required,min=2"`
	Email      string  `json:"email" validate:"required,email"`
	Phone      string  `json:"phone" validate:"required"`
	Address    string  `json:"address" validate:"required"`
	Employment string  `json:"employment" validate:"required"`
	Income     float64 `json:"income" validate:"required,gt=0"`
	Purpose    string  `json:"purpose,omitempty"`
}

// Submit validates and creates a loan application for the caller.
// Status is forced to PENDING and the owner is taken from the caller
// identity, never from the payload.
func (s *LoanService) Submit(ctx context.Context, caller domain.CallerIdentity, input *LoanInput) (*models.LoanApplication, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	loan := &models.LoanApplication{
		UserID:     caller.UserID,
		LoanType:   strings.ToUpper(strings.TrimSpace(input.LoanType)),
		Amount:     input.Amount,
		TermMonths: input.TermMonths,
		FullName:   strings.TrimSpace(input.FullName),
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:      strings.TrimSpace(input.Phone),
		Address:    strings.TrimSpace(input.Address),
		Employment: strings.TrimSpace(input.Employment),
		Income:     input.Income,
		Purpose:    strings.TrimSpace(input.Purpose),
		Status:     models.LoanStatusPending,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	log.Printf("✅ Loan application %d submitted by user %d (%s %.2f)", loan.ID, caller.UserID, loan.LoanType, loan.Amount)
	return loan, nil
}

// validate runs the server-side rules: the loan type must exist in the
// catalog and the amount must sit inside its configured range.
func (s *LoanService) validate(ctx context.Context, input *LoanInput) error {
	if input.Amount <= 0 || input.Income <= 0 {
		return ErrLoanInvalid
	}
	if input.TermMonths < minTermMonths || input.TermMonths > maxTermMonths {
		return ErrLoanInvalid
	}
	if len(strings.TrimSpace(input.FullName)) < 2 ||
		strings.TrimSpace(input.Email) == "" ||
		countDigits(input.Phone) < 7 ||
		len(strings.TrimSpace(input.Address)) < 5 ||
		strings.TrimSpace(input.Employment) == "" {
		return ErrLoanInvalid
	}

	code := strings.ToUpper(strings.TrimSpace(input.LoanType))
	loanType, err := s.loanTypeRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLoanTypeUnknown
		}
		return err
	}

	if input.Amount < loanType.MinAmount || input.Amount > loanType.MaxAmount {
		return ErrLoanAmountRange
	}

	return nil
}

func countDigits(s string) int {
	var n int
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// GetByID returns a loan application. Non-admin callers only see
// their own rows.
func (s *LoanService) GetByID(ctx context.Context, caller domain.CallerIdentity, isAdmin bool, loanID uint) (*models.LoanApplication, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}

	if !isAdmin && loan.UserID != caller.UserID {
		// Do not reveal that the row exists
		return nil, ErrLoanNotFound
	}

	return loan, nil
}

// ListMine lists the caller's own loan applications
func (s *LoanService) ListMine(ctx context.Context, caller domain.CallerIdentity, offset, limit int) ([]*models.LoanApplication, int64, error) {
	return s.loanRepo.ListByUser(ctx, caller.UserID, offset, limit)
}

// ListAll lists every loan application (admin console)
func (s *LoanService) ListAll(ctx context.Context, offset, limit int) ([]*models.LoanApplication, int64, error) {
	return s.loanRepo.List(ctx, offset, limit)
}

// decide performs a PENDING-only transition. When the row already left
// PENDING: re-applying the same terminal status succeeds idempotently,
// applying the opposite one is a conflict.
func (s *LoanService) decide(ctx context.Context, loanID uint, status string, actorID uint) (*models.LoanApplication, error) {
	affected, err := s.loanRepo.Transition(ctx, loanID, status, actorID, time.Now())
	if err != nil {
		return nil, err
	}

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}

	if affected == 0 {
		if loan.Status == status {
			return loan, nil
		}
		return nil, domain.ErrStatusConflict
	}

	if s.notification != nil {
		if err := s.notification.SendLoanDecision(ctx, loan.Email, loan.ID, status); err != nil {
			log.Printf("⚠️ Failed to notify applicant of loan %d: %v", loan.ID, err)
		}
	}

	log.Printf("✅ Loan %d → %s by admin %d", loanID, status, actorID)
	return loan, nil
}

// Approve approves a pending loan application
func (s *LoanService) Approve(ctx context.Context, loanID uint, adminID uint) (*models.LoanApplication, error) {
	return s.decide(ctx, loanID, models.LoanStatusApproved, adminID)
}

// Reject rejects a pending loan application
func (s *LoanService) Reject(ctx context.Context, loanID uint, adminID uint) (*models.LoanApplication, error) {
	return s.decide(ctx, loanID, models.LoanStatusRejected, adminID)
}

// ListLoanTypes returns the active loan product catalog
func (s *LoanService) ListLoanTypes(ctx context.Context) ([]*models.LoanType, error) {
	return s.loanTypeRepo.List(ctx)
}
