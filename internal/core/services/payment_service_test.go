package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"lendflow-api/internal/adapters/persistence/models"
	"lendflow-api/internal/core/domain"
	"lendflow-api/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentService(t *testing.T, verified bool) (*PaymentService, *fakePaymentRepo, *fakePaymentMethodRepo) {
	t.Helper()

	paymentRepo := newFakePaymentRepo()
	methodRepo := newFakePaymentMethodRepo()

	codeRepo := newFakeVerificationRepo()
	if verified {
		require.NoError(t, codeRepo.Create(context.Background(), &models.VerificationCode{
			UserID: 7, Code: "123456", Verified: true, ExpiresAt: time.Now().Add(time.Minute),
		}))
	}
	verification := NewVerificationService(codeRepo, NewNotificationService(""))

	return NewPaymentService(paymentRepo, methodRepo, verification), paymentRepo, methodRepo
}

func validPaymentInput() *PaymentInput {
	return &PaymentInput{
		Amount:         250.00,
		CardholderName: "Alice Example",
		CardNumber:     "4111 1111 1111 1234",
		PaymentType:    models.PaymentTypeLoan,
	}
}

func validMethodInput() *PaymentMethodInput {
	return &PaymentMethodInput{
		CardholderName: "Alice Example",
		CardNumber:     "4111 1111 1111 1234",
		ExpiryDate:     "12/27",
		CVV:            "123",
		PaymentPin:     "4321",
		IsDefault:      true,
	}
}

func TestSubmitPaymentMasksCardNumber(t *testing.T) {
	svc, repo, _ := newPaymentService(t, true)
	caller := domain.CallerIdentity{UserID: 7}

	payment, err := svc.Submit(context.Background(), caller, validPaymentInput())
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, "4111********1234", payment.MaskedCardNumber)

	// The stored row never holds the full number
	stored, err := repo.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.MaskedCardNumber, "1111 1111")
	assert.Len(t, stored.MaskedCardNumber, 16)
}

func TestSubmitPaymentRejectsBadCard(t *testing.T) {
	svc, _, _ := newPaymentService(t, true)
	caller := domain.CallerIdentity{UserID: 7}

	input := validPaymentInput()
	input.CardNumber = "4111-oops-1111"

	_, err := svc.Submit(context.Background(), caller, input)
	assert.ErrorIs(t, err, ErrCardInvalid)
}

func TestSubmitPaymentRejectsBadType(t *testing.T) {
	svc, _, _ := newPaymentService(t, true)
	caller := domain.CallerIdentity{UserID: 7}

	input := validPaymentInput()
	input.PaymentType = "crypto"

	_, err := svc.Submit(context.Background(), caller, input)
	assert.ErrorIs(t, err, ErrPaymentInvalid)
}

func TestCompletePaymentIdempotency(t *testing.T) {
	svc, _, _ := newPaymentService(t, true)
	caller := domain.CallerIdentity{UserID: 7}

	payment, err := svc.Submit(context.Background(), caller, validPaymentInput())
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), payment.ID, 99)
	require.NoError(t, err)

	// Re-completing is fine, flipping to failed is a conflict
	_, err = svc.Complete(context.Background(), payment.ID, 100)
	assert.NoError(t, err)

	_, err = svc.Fail(context.Background(), payment.ID, 100)
	assert.ErrorIs(t, err, domain.ErrStatusConflict)
}

func TestPaymentVisibilityScopedToOwner(t *testing.T) {
	svc, _, _ := newPaymentService(t, true)
	owner := domain.CallerIdentity{UserID: 7}
	stranger := domain.CallerIdentity{UserID: 8}

	payment, err := svc.Submit(context.Background(), owner, validPaymentInput())
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), stranger, false, payment.ID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	_, err = svc.GetByID(context.Background(), stranger, true, payment.ID)
	assert.NoError(t, err)
}

func TestAddMethodRequiresVerifiedEmail(t *testing.T) {
	svc, _, _ := newPaymentService(t, false)
	caller := domain.CallerIdentity{UserID: 7}

	_, err := svc.AddMethod(context.Background(), caller, validMethodInput())
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestAddMethodStoresOnlyHashes(t *testing.T) {
	svc, _, repo := newPaymentService(t, true)
	caller := domain.CallerIdentity{UserID: 7}

	method, err := svc.AddMethod(context.Background(), caller, validMethodInput())
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), method.ID)
	require.NoError(t, err)

	// Masked card, never the raw number
	assert.Equal(t, "4111********1234", stored.MaskedCardNumber)
	assert.Equal(t, "1234", stored.LastFour)

	// PIN and CVV are bcrypt hashes, not plaintext
	assert.NotEqual(t, "4321", stored.PaymentPinHash)
	assert.NotEqual(t, "123", stored.CVVHash)
	assert.True(t, strings.HasPrefix(stored.PaymentPinHash, "$2"))
	assert.True(t, password.Verify("4321", stored.PaymentPinHash))
	assert.True(t, password.Verify("123", stored.CVVHash))
}

func TestAddMethodValidation(t *testing.T) {
	svc, _, _ := newPaymentService(t, true)
	caller := domain.CallerIdentity{UserID: 7}

	input := validMethodInput()
	input.ExpiryDate = "13/27"
	_, err := svc.AddMethod(context.Background(), caller, input)
	assert.ErrorIs(t, err, ErrExpiryInvalid)

	input = validMethodInput()
	input.CVV = "12"
	_, err = svc.AddMethod(context.Background(), caller, input)
	assert.ErrorIs(t, err, ErrCVVInvalid)

	input = validMethodInput()
	input.PaymentPin = "12"
	_, err = svc.AddMethod(context.Background(), caller, input)
	assert.ErrorIs(t, err, ErrPinInvalid)
}

func TestSingleDefaultMethod(t *testing.T) {
	svc, _, repo := newPaymentService(t, true)
	caller := domain.CallerIdentity{UserID: 7}

	first, err := svc.AddMethod(context.Background(), caller, validMethodInput())
	require.NoError(t, err)

	second, err := svc.AddMethod(context.Background(), caller, validMethodInput())
	require.NoError(t, err)

	methods, err := repo.ListByUser(context.Background(), caller.UserID)
	require.NoError(t, err)

	var defaults int
	for _, m := range methods {
		if m.IsDefault {
			defaults++
			assert.Equal(t, second.ID, m.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	// Switch back to the first one
	require.NoError(t, svc.SetDefaultMethod(context.Background(), caller, first.ID))

	updated, err := repo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
}

func TestDeleteMethodScopedToOwner(t *testing.T) {
	svc, _, _ := newPaymentService(t, true)
	owner := domain.CallerIdentity{UserID: 7}
	stranger := domain.CallerIdentity{UserID: 8}

	method, err := svc.AddMethod(context.Background(), owner, validMethodInput())
	require.NoError(t, err)

	err = svc.DeleteMethod(context.Background(), stranger, method.ID)
	assert.ErrorIs(t, err, ErrPaymentMethodNotFound)

	err = svc.DeleteMethod(context.Background(), owner, method.ID)
	assert.NoError(t, err)
}
