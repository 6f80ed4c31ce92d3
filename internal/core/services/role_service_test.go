package services

import (
	"context"
	"testing"
	"time"

	"lendflow-api/internal/adapters/persistence/models"
	"lendflow-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoleService() (*RoleService, *fakeGrantRepo) {
	grantRepo := newFakeGrantRepo()
	return NewRoleService(grantRepo, newFakeUserRepo()), grantRepo
}

func TestResolveDefaultsToUser(t *testing.T) {
	svc, _ := newRoleService()

	role, err := svc.Resolve(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role)
}

func TestResolvePendingGrantIsNotAdmin(t *testing.T) {
	svc, repo := newRoleService()

	require.NoError(t, repo.Create(context.Background(), &models.RoleGrant{
		UserID: 1, Email: "alice@example.com", Role: models.RoleAdmin,
		Status: models.GrantStatusPending,
	}))

	role, err := svc.Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role)
}

func TestResolveApprovedGrant(t *testing.T) {
	svc, repo := newRoleService()
	now := time.Now()

	require.NoError(t, repo.Create(context.Background(), &models.RoleGrant{
		UserID: 1, Email: "alice@example.com", Role: models.RoleAdmin,
		Status: models.GrantStatusApproved, ApprovedAt: &now,
	}))

	role, err := svc.Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)
}

func TestResolveSuperadminWinsOverAdmin(t *testing.T) {
	svc, repo := newRoleService()
	now := time.Now()

	for _, role := range []string{models.RoleAdmin, models.RoleSuperadmin} {
		require.NoError(t, repo.Create(context.Background(), &models.RoleGrant{
			UserID: 1, Email: "root@example.com", Role: role,
			Status: models.GrantStatusApproved, ApprovedAt: &now,
		}))
	}

	role, err := svc.Resolve(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperadmin, role)
}

func TestCheckRoleStatusErrors(t *testing.T) {
	svc, repo := newRoleService()

	require.NoError(t, repo.Create(context.Background(), &models.RoleGrant{
		UserID: 1, Email: "pending@example.com", Role: models.RoleAdmin,
		Status: models.GrantStatusPending,
	}))
	require.NoError(t, repo.Create(context.Background(), &models.RoleGrant{
		UserID: 2, Email: "rejected@example.com", Role: models.RoleAdmin,
		Status: models.GrantStatusRejected,
	}))

	assert.ErrorIs(t, svc.CheckRole(context.Background(), "pending@example.com", models.RoleAdmin), ErrGrantPending)
	assert.ErrorIs(t, svc.CheckRole(context.Background(), "rejected@example.com", models.RoleAdmin), ErrGrantRejected)
	assert.ErrorIs(t, svc.CheckRole(context.Background(), "nobody@example.com", models.RoleAdmin), ErrNotAuthorized)
}

func TestRequestAdminAccessCreatesPendingGrant(t *testing.T) {
	svc, _ := newRoleService()
	caller := domain.CallerIdentity{UserID: 1, Email: "Alice@Example.com"}

	grant, err := svc.RequestAdminAccess(context.Background(), caller, &AdminAccessInput{
		FirstName: "Alice", LastName: "Example",
	})
	require.NoError(t, err)

	assert.Equal(t, models.GrantStatusPending, grant.Status)
	assert.Equal(t, "alice@example.com", grant.Email) // normalized
	assert.Equal(t, models.RoleAdmin, grant.Role)
}

func TestRequestAdminAccessDuplicate(t *testing.T) {
	svc, _ := newRoleService()
	caller := domain.CallerIdentity{UserID: 1, Email: "alice@example.com"}
	input := &AdminAccessInput{FirstName: "Alice", LastName: "Example"}

	_, err := svc.RequestAdminAccess(context.Background(), caller, input)
	require.NoError(t, err)

	existing, err := svc.RequestAdminAccess(context.Background(), caller, input)
	assert.ErrorIs(t, err, ErrGrantAlreadyExists)
	require.NotNil(t, existing)
	assert.Equal(t, models.GrantStatusPending, existing.Status)
}

func TestApproveGrant(t *testing.T) {
	svc, _ := newRoleService()
	caller := domain.CallerIdentity{UserID: 1, Email: "alice@example.com"}

	grant, err := svc.RequestAdminAccess(context.Background(), caller, &AdminAccessInput{
		FirstName: "Alice", LastName: "Example",
	})
	require.NoError(t, err)

	decided, err := svc.ApproveGrant(context.Background(), grant.ID, 99)
	require.NoError(t, err)
	assert.Equal(t, models.GrantStatusApproved, decided.Status)

	// Resolution now grants admin
	role, err := svc.Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)
}

func TestGrantDecisionIdempotentAndConflicting(t *testing.T) {
	svc, _ := newRoleService()
	caller := domain.CallerIdentity{UserID: 1, Email: "alice@example.com"}

	grant, err := svc.RequestAdminAccess(context.Background(), caller, &AdminAccessInput{
		FirstName: "Alice", LastName: "Example",
	})
	require.NoError(t, err)

	_, err = svc.RejectGrant(context.Background(), grant.ID, 99)
	require.NoError(t, err)

	// Same decision again: fine
	decided, err := svc.RejectGrant(context.Background(), grant.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, models.GrantStatusRejected, decided.Status)

	// Opposite decision: conflict
	_, err = svc.ApproveGrant(context.Background(), grant.ID, 100)
	assert.ErrorIs(t, err, domain.ErrStatusConflict)
}

func TestDecideMissingGrant(t *testing.T) {
	svc, _ := newRoleService()

	_, err := svc.ApproveGrant(context.Background(), 12345, 99)
	assert.ErrorIs(t, err, ErrGrantNotFound)
}
