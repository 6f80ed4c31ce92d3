package services

import (
	"context"
	"testing"

	"lendflow-api/internal/adapters/persistence/models"
	"lendflow-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoanService() (*LoanService, *fakeLoanRepo) {
	loanRepo := newFakeLoanRepo()
	svc := NewLoanService(loanRepo, newFakeLoanTypeRepo(), NewNotificationService(""))
	return svc, loanRepo
}

func validLoanInput() *LoanInput {
	return &LoanInput{
		LoanType:   "PERSONAL",
		Amount:     5000,
		TermMonths: 24,
		FullName:   "Alice Example",
		Email:      "alice@example.com",
		Phone:      "555-0100",
		Address:    "1 Main St",
		Employment: "Engineer",
		Income:     60000,
		Purpose:    "Debt consolidation",
	}
}

func TestSubmitStartsPending(t *testing.T) {
	svc, repo := newLoanService()
	caller := domain.CallerIdentity{UserID: 7, Email: "alice@example.com"}

	loan, err := svc.Submit(context.Background(), caller, validLoanInput())
	require.NoError(t, err)

	assert.Equal(t, models.LoanStatusPending, loan.Status)
	assert.Equal(t, uint(7), loan.UserID)

	stored, err := repo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusPending, stored.Status)
}

func TestSubmitRejectsUnknownLoanType(t *testing.T) {
	svc, _ := newLoanService()
	caller := domain.CallerIdentity{UserID: 7}

	input := validLoanInput()
	input.LoanType = "YACHT"

	_, err := svc.Submit(context.Background(), caller, input)
	assert.ErrorIs(t, err, ErrLoanTypeUnknown)
}

func TestSubmitRejectsAmountOutsideRange(t *testing.T) {
	svc, _ := newLoanService()
	caller := domain.CallerIdentity{UserID: 7}

	input := validLoanInput()
	input.Amount = 999 // PERSONAL min is 1000

	_, err := svc.Submit(context.Background(), caller, input)
	assert.ErrorIs(t, err, ErrLoanAmountRange)

	input.Amount = 50001 // PERSONAL max is 50000
	_, err = svc.Submit(context.Background(), caller, input)
	assert.ErrorIs(t, err, ErrLoanAmountRange)
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	svc, _ := newLoanService()
	caller := domain.CallerIdentity{UserID: 7}

	input := validLoanInput()
	input.Address = "   "

	_, err := svc.Submit(context.Background(), caller, input)
	assert.ErrorIs(t, err, ErrLoanInvalid)
}

func TestSubmitRejectsBadTerm(t *testing.T) {
	svc, _ := newLoanService()
	caller := domain.CallerIdentity{UserID: 7}

	input := validLoanInput()
	input.TermMonths = 0

	_, err := svc.Submit(context.Background(), caller, input)
	assert.ErrorIs(t, err, ErrLoanInvalid)

	input.TermMonths = 61
	_, err = svc.Submit(context.Background(), caller, input)
	assert.ErrorIs(t, err, ErrLoanInvalid)
}

func TestApproveSetsTerminalState(t *testing.T) {
	svc, _ := newLoanService()
	caller := domain.CallerIdentity{UserID: 7}

	loan, err := svc.Submit(context.Background(), caller, validLoanInput())
	require.NoError(t, err)

	decided, err := svc.Approve(context.Background(), loan.ID, 99)
	require.NoError(t, err)

	assert.Equal(t, models.LoanStatusApproved, decided.Status)
	require.NotNil(t, decided.ApprovedBy)
	assert.Equal(t, uint(99), *decided.ApprovedBy)
	assert.NotNil(t, decided.ApprovedAt)
	assert.Nil(t, decided.RejectedAt)
}

func TestRejectNullsApprovalTimestamp(t *testing.T) {
	svc, _ := newLoanService()
	caller := domain.CallerIdentity{UserID: 7}

	loan, err := svc.Submit(context.Background(), caller, validLoanInput())
	require.NoError(t, err)

	decided, err := svc.Reject(context.Background(), loan.ID, 99)
	require.NoError(t, err)

	assert.Equal(t, models.LoanStatusRejected, decided.Status)
	assert.NotNil(t, decided.RejectedAt)
	assert.Nil(t, decided.ApprovedAt)
}

func TestApproveIsIdempotent(t *testing.T) {
	svc, _ := newLoanService()
	caller := domain.CallerIdentity{UserID: 7}

	loan, err := svc.Submit(context.Background(), caller, validLoanInput())
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), loan.ID, 99)
	require.NoError(t, err)

	// Second approve of an approved loan succeeds without change
	decided, err := svc.Approve(context.Background(), loan.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusApproved, decided.Status)
	assert.Equal(t, uint(99), *decided.ApprovedBy) // first decision stands
}

func TestOppositeDecisionConflicts(t *testing.T) {
	svc, _ := newLoanService()
	caller := domain.CallerIdentity{UserID: 7}

	loan, err := svc.Submit(context.Background(), caller, validLoanInput())
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), loan.ID, 99)
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), loan.ID, 100)
	assert.ErrorIs(t, err, domain.ErrStatusConflict)

	// The row is unchanged by the losing decision
	decided, err := svc.GetByID(context.Background(), caller, true, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusApproved, decided.Status)
}

func TestDecideMissingLoan(t *testing.T) {
	svc, _ := newLoanService()

	_, err := svc.Approve(context.Background(), 12345, 99)
	assert.ErrorIs(t, err, ErrLoanNotFound)
}

func TestGetByIDScopedToOwner(t *testing.T) {
	svc, _ := newLoanService()
	owner := domain.CallerIdentity{UserID: 7}
	stranger := domain.CallerIdentity{UserID: 8}

	loan, err := svc.Submit(context.Background(), owner, validLoanInput())
	require.NoError(t, err)

	// Owner sees it
	_, err = svc.GetByID(context.Background(), owner, false, loan.ID)
	assert.NoError(t, err)

	// Another user gets not-found, not forbidden
	_, err = svc.GetByID(context.Background(), stranger, false, loan.ID)
	assert.ErrorIs(t, err, ErrLoanNotFound)

	// Admin sees everything
	_, err = svc.GetByID(context.Background(), stranger, true, loan.ID)
	assert.NoError(t, err)
}

func TestListMineOnlyReturnsOwnRows(t *testing.T) {
	svc, _ := newLoanService()
	alice := domain.CallerIdentity{UserID: 7}
	bob := domain.CallerIdentity{UserID: 8}

	_, err := svc.Submit(context.Background(), alice, validLoanInput())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), bob, validLoanInput())
	require.NoError(t, err)

	loans, total, err := svc.ListMine(context.Background(), alice, 0, 20)
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	for _, loan := range loans {
		assert.Equal(t, uint(7), loan.UserID)
	}
}
