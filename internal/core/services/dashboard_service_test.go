package services

import (
	"context"
	"testing"

	"lendflow-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboardFixture(t *testing.T) (*DashboardService, *LoanService, *PaymentService, *RoleService) {
	t.Helper()

	loanRepo := newFakeLoanRepo()
	paymentRepo := newFakePaymentRepo()
	userRepo := newFakeUserRepo()
	grantRepo := newFakeGrantRepo()
	verification := NewVerificationService(newFakeVerificationRepo(), NewNotificationService(""))

	dashboard := NewDashboardService(loanRepo, paymentRepo, userRepo, grantRepo, verification)
	loans := NewLoanService(loanRepo, newFakeLoanTypeRepo(), NewNotificationService(""))
	payments := NewPaymentService(paymentRepo, newFakePaymentMethodRepo(), nil)
	roles := NewRoleService(grantRepo, userRepo)

	return dashboard, loans, payments, roles
}

func TestUserDashboardShowsOwnRowsOnly(t *testing.T) {
	dashboard, loans, payments, _ := newDashboardFixture(t)
	alice := domain.CallerIdentity{UserID: 7, Email: "alice@example.com"}
	bob := domain.CallerIdentity{UserID: 8, Email: "bob@example.com"}

	_, err := loans.Submit(context.Background(), alice, validLoanInput())
	require.NoError(t, err)
	_, err = loans.Submit(context.Background(), bob, validLoanInput())
	require.NoError(t, err)
	_, err = payments.Submit(context.Background(), alice, validPaymentInput())
	require.NoError(t, err)

	dash, err := dashboard.ForUser(context.Background(), alice)
	require.NoError(t, err)

	assert.False(t, dash.EmailVerified)
	assert.Len(t, dash.Loans, 1)
	assert.Len(t, dash.Payments, 1)
	assert.Equal(t, alice.UserID, dash.Loans[0].UserID)
}

func TestAdminDashboardAggregates(t *testing.T) {
	dashboard, loans, payments, _ := newDashboardFixture(t)
	caller := domain.CallerIdentity{UserID: 7, Email: "alice@example.com"}

	first, err := loans.Submit(context.Background(), caller, validLoanInput())
	require.NoError(t, err)
	_, err = loans.Submit(context.Background(), caller, validLoanInput())
	require.NoError(t, err)

	_, err = loans.Approve(context.Background(), first.ID, 99)
	require.NoError(t, err)

	payment, err := payments.Submit(context.Background(), caller, validPaymentInput())
	require.NoError(t, err)
	_, err = payments.Complete(context.Background(), payment.ID, 99)
	require.NoError(t, err)

	dash, err := dashboard.ForAdmin(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), dash.PendingLoans)
	assert.Equal(t, int64(1), dash.ApprovedLoans)
	assert.Equal(t, int64(0), dash.RejectedLoans)
	assert.Equal(t, first.Amount, dash.ApprovedAmount)
	assert.Equal(t, int64(0), dash.PendingPayments)
	assert.Equal(t, int64(1), dash.CompletedPayments)
	assert.Len(t, dash.RecentLoans, 2)
}

func TestSuperadminDashboardGrantCounts(t *testing.T) {
	dashboard, _, _, roles := newDashboardFixture(t)

	alice := domain.CallerIdentity{UserID: 1, Email: "alice@example.com"}
	bob := domain.CallerIdentity{UserID: 2, Email: "bob@example.com"}
	input := &AdminAccessInput{FirstName: "A", LastName: "B"}

	granted, err := roles.RequestAdminAccess(context.Background(), alice, input)
	require.NoError(t, err)
	_, err = roles.RequestAdminAccess(context.Background(), bob, input)
	require.NoError(t, err)

	_, err = roles.ApproveGrant(context.Background(), granted.ID, 99)
	require.NoError(t, err)

	dash, err := dashboard.ForSuperadmin(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), dash.PendingGrants)
	assert.Equal(t, int64(1), dash.ApprovedGrants)
}
