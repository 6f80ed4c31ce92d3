package services

import (
	"context"

	"lendflow-api/internal/adapters/persistence/models"
	"lendflow-api/internal/adapters/persistence/repositories"
	"lendflow-api/internal/core/domain"
)

// DashboardService aggregates counts for the role-specific consoles.
// Figures are computed per request; no caching layer sits in front.
type DashboardService struct {
	loanRepo     repositories.LoanRepository
	paymentRepo  repositories.PaymentRepository
	userRepo     repositories.UserRepository
	grantRepo    repositories.RoleGrantRepository
	verification *VerificationService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	loanRepo repositories.LoanRepository,
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserRepository,
	grantRepo repositories.RoleGrantRepository,
	verification *VerificationService,
) *DashboardService {
	return &DashboardService{
		loanRepo:     loanRepo,
		paymentRepo:  paymentRepo,
		userRepo:     userRepo,
		grantRepo:    grantRepo,
		verification: verification,
	}
}

// UserDashboard is the signed-in user's own summary
type UserDashboard struct {
	EmailVerified bool                      `json:"email_verified"`
	Loans         []*models.LoanApplication `json:"loans"`
	Payments      []*models.PaymentRecord   `json:"payments"`
}

// AdminDashboard is the admin console summary
type AdminDashboard struct {
	PendingLoans      int64                     `json:"pending_loans"`
	ApprovedLoans     int64                     `json:"approved_loans"`
	RejectedLoans     int64                     `json:"rejected_loans"`
	ApprovedAmount    float64                   `json:"approved_amount"`
	PendingPayments   int64                     `json:"pending_payments"`
	CompletedPayments int64                     `json:"completed_payments"`
	RecentLoans       []*models.LoanApplication `json:"recent_loans"`
}

// SuperadminDashboard extends the admin view with identity figures
type SuperadminDashboard struct {
	AdminDashboard
	TotalUsers     int64 `json:"total_users"`
	PendingGrants  int64 `json:"pending_grants"`
	ApprovedGrants int64 `json:"approved_grants"`
}

// ForUser returns the caller's own recent loans and payments
func (s *DashboardService) ForUser(ctx context.Context, caller domain.CallerIdentity) (*UserDashboard, error) {
	loans, _, err := s.loanRepo.ListByUser(ctx, caller.UserID, 0, 10)
	if err != nil {
		return nil, err
	}

	payments, _, err := s.paymentRepo.ListByUser(ctx, caller.UserID, 0, 10)
	if err != nil {
		return nil, err
	}

	verified, err := s.verification.IsVerified(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	return &UserDashboard{EmailVerified: verified, Loans: loans, Payments: payments}, nil
}

// ForAdmin returns the lifecycle aggregates for the admin console
func (s *DashboardService) ForAdmin(ctx context.Context) (*AdminDashboard, error) {
	dash := &AdminDashboard{}
	var err error

	if dash.PendingLoans, err = s.loanRepo.CountByStatus(ctx, models.LoanStatusPending); err != nil {
		return nil, err
	}
	if dash.ApprovedLoans, err = s.loanRepo.CountByStatus(ctx, models.LoanStatusApproved); err != nil {
		return nil, err
	}
	if dash.RejectedLoans, err = s.loanRepo.CountByStatus(ctx, models.LoanStatusRejected); err != nil {
		return nil, err
	}
	if dash.ApprovedAmount, err = s.loanRepo.SumAmountByStatus(ctx, models.LoanStatusApproved); err != nil {
		return nil, err
	}
	if dash.PendingPayments, err = s.paymentRepo.CountByStatus(ctx, models.PaymentStatusPending); err != nil {
		return nil, err
	}
	if dash.CompletedPayments, err = s.paymentRepo.CountByStatus(ctx, models.PaymentStatusCompleted); err != nil {
		return nil, err
	}
	if dash.RecentLoans, err = s.loanRepo.Recent(ctx, 10); err != nil {
		return nil, err
	}

	return dash, nil
}

// ForSuperadmin returns the admin aggregates plus identity figures
func (s *DashboardService) ForSuperadmin(ctx context.Context) (*SuperadminDashboard, error) {
	admin, err := s.ForAdmin(ctx)
	if err != nil {
		return nil, err
	}

	dash := &SuperadminDashboard{AdminDashboard: *admin}

	if dash.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, err
	}
	if dash.PendingGrants, err = s.grantRepo.CountByStatus(ctx, models.RoleAdmin, models.GrantStatusPending); err != nil {
		return nil, err
	}
	if dash.ApprovedGrants, err = s.grantRepo.CountByStatus(ctx, models.RoleAdmin, models.GrantStatusApproved); err != nil {
		return nil, err
	}

	return dash, nil
}
