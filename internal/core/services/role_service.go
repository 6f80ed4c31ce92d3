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

// Role errors
var (
	ErrGrantNotFound      = errors.New("role grant not found")
	ErrGrantPending       = errors.New("role grant pending approval")
	ErrGrantRejected      = errors.New("role grant rejected")
	ErrGrantAlreadyExists = errors.New("role grant already requested")
	ErrNotAuthorized      = errors.New("not authorized")
)

// RoleService resolves the caller's role and owns the admin approval
// workflow. Resolution is read-only and runs fresh on every protected
// request; a lookup failure is never treated as a grant.
type RoleService struct {
	grantRepo repositories.RoleGrantRepository
	userRepo  repositories.UserRepository
}

// NewRoleService creates a new role service
func NewRoleService(grantRepo repositories.RoleGrantRepository, userRepo repositories.UserRepository) *RoleService {
	return &RoleService{grantRepo: grantRepo, userRepo: userRepo}
}

// Resolve returns the strongest role held by the given email:
// SUPERADMIN > ADMIN > USER. Only APPROVED grants count.
func (s *RoleService) Resolve(ctx context.Context, email string) (string, error) {
	for _, role := range []string{models.RoleSuperadmin, models.RoleAdmin} {
		grant, err := s.grantRepo.GetByEmailAndRole(ctx, email, role)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			// Fail closed: a data-layer error is not a grant
			log.Printf("❌ Role lookup failed for %s: %v", email, err)
			return domain.RoleUser, err
		}
		if grant.IsApproved() {
			return grant.Role, nil
		}
	}
	return domain.RoleUser, nil
}

// CheckRole verifies the caller holds an APPROVED grant for the given
// role. A PENDING or REJECTED grant surfaces its own error so the
// caller can see why access was denied.
func (s *RoleService) CheckRole(ctx context.Context, email, role string) error {
	grant, err := s.grantRepo.GetByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotAuthorized
		}
		log.Printf("❌ Role lookup failed for %s: %v", email, err)
		return ErrNotAuthorized
	}

	switch grant.Status {
	case models.GrantStatusApproved:
		return nil
	case models.GrantStatusPending:
		return ErrGrantPending
	case models.GrantStatusRejected:
		return ErrGrantRejected
	default:
		return ErrNotAuthorized
	}
}

// IsAdmin reports whether the caller holds admin (or superadmin) role
func (s *RoleService) IsAdmin(ctx context.Context, email string) bool {
	role, err := s.Resolve(ctx, email)
	if err != nil {
		return false
	}
	return role == models.RoleAdmin || role == models.RoleSuperadmin
}

// AdminAccessInput represents an admin access request
type AdminAccessInput struct {
	FirstName string `json:"first_name" validate:"required,min=2"`
	LastName  string `json:"last_name" validate:"required,min=2"`
}

// RequestAdminAccess creates a PENDING admin grant for the caller.
// One request per email: repeats surface the existing grant's state.
func (s *RoleService) RequestAdminAccess(ctx context.Context, caller domain.CallerIdentity, input *AdminAccessInput) (*models.RoleGrant, error) {
	email := strings.ToLower(caller.Email)

	existing, err := s.grantRepo.GetByEmailAndRole(ctx, email, models.RoleAdmin)
	if err == nil && existing != nil {
		return existing, ErrGrantAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	grant := &models.RoleGrant{
		UserID:    caller.UserID,
		Email:     email,
		Role:      models.RoleAdmin,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Status:    models.GrantStatusPending,
	}

	if err := s.grantRepo.Create(ctx, grant); err != nil {
		return nil, err
	}

	log.Printf("✅ Admin access requested: %s", email)
	return grant, nil
}

// GrantStatus returns the caller's admin grant, if any
func (s *RoleService) GrantStatus(ctx context.Context, email string) (*models.RoleGrant, error) {
	grant, err := s.grantRepo.GetByEmailAndRole(ctx, strings.ToLower(email), models.RoleAdmin)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGrantNotFound
		}
		return nil, err
	}
	return grant, nil
}

// ListAdminGrants lists admin grants for the superadmin console
func (s *RoleService) ListAdminGrants(ctx context.Context, offset, limit int) ([]*models.RoleGrant, int64, error) {
	return s.grantRepo.ListByRole(ctx, models.RoleAdmin, offset, limit)
}

// decide applies an approval decision with a PENDING precondition.
// Re-applying the decision a grant already carries is idempotent;
// flipping a settled decision is a conflict.
func (s *RoleService) decide(ctx context.Context, grantID uint, status string, actorID uint) (*models.RoleGrant, error) {
	affected, err := s.grantRepo.UpdateStatus(ctx, grantID, status, actorID, time.Now())
	if err != nil {
		return nil, err
	}

	grant, err := s.grantRepo.GetByID(ctx, grantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGrantNotFound
		}
		return nil, err
	}

	if affected == 0 {
		if grant.Status == status {
			return grant, nil // already decided the same way
		}
		return nil, domain.ErrStatusConflict
	}

	log.Printf("✅ Admin grant %d → %s by superadmin %d", grantID, status, actorID)
	return grant, nil
}

// ApproveGrant approves a pending admin grant (superadmin only,
// enforced by the route gate)
func (s *RoleService) ApproveGrant(ctx context.Context, grantID uint, superadminID uint) (*models.RoleGrant, error) {
	return s.decide(ctx, grantID, models.GrantStatusApproved, superadminID)
}

// RejectGrant rejects a pending admin grant
func (s *RoleService) RejectGrant(ctx context.Context, grantID uint, superadminID uint) (*models.RoleGrant, error) {
	return s.decide(ctx, grantID, models.GrantStatusRejected, superadminID)
}

// ListIdentities lists all identities (privileged, superadmin console)
func (s *RoleService) ListIdentities(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, offset, limit)
}
