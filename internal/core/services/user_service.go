package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"lendflow-api/internal/adapters/persistence/models"
	"lendflow-api/internal/adapters/persistence/repositories"
	"lendflow-api/internal/core/domain"
	"lendflow-api/internal/pkg/password"

	"gorm.io/gorm"
)

// User profile errors
var (
	ErrWrongPassword = errors.New("current password is incorrect")
	ErrWeakPassword  = errors.New("password does not meet requirements")
)

// UserService handles profile reads and updates for the signed-in user
type UserService struct {
	userRepo     repositories.UserRepository
	verification *VerificationService
	roleService  *RoleService
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, verification *VerificationService, roleService *RoleService) *UserService {
	return &UserService{userRepo: userRepo, verification: verification, roleService: roleService}
}

// Profile returns the caller's profile with verification and role state
func (s *UserService) Profile(ctx context.Context, caller domain.CallerIdentity) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	resp := user.ToResponse()

	if s.verification != nil {
		verified, err := s.verification.IsVerified(ctx, user.ID)
		if err == nil {
			resp.EmailVerified = verified
		}
	}

	if s.roleService != nil {
		role, err := s.roleService.Resolve(ctx, user.Email)
		if err == nil {
			resp.Role = role
		}
	}

	return resp, nil
}

// UpdateProfileInput represents profile update input
type UpdateProfileInput struct {
	FullName string `json:"full_name,omitempty" validate:"omitempty,min=2"`
	Phone    string `json:"phone,omitempty"`
}

// UpdateProfile updates the caller's mutable profile fields
func (s *UserService) UpdateProfile(ctx context.Context, caller domain.CallerIdentity, input *UpdateProfileInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if name := strings.TrimSpace(input.FullName); name != "" {
		user.FullName = name
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		user.Phone = phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ Profile updated for user %d", user.ID)
	return user.ToResponse(), nil
}

// ChangePasswordInput represents password change input
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword verifies the current password and replaces it
func (s *UserService) ChangePassword(ctx context.Context, caller domain.CallerIdentity, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !password.Verify(input.CurrentPassword, user.Password) {
		return ErrWrongPassword
	}

	if !password.ValidatePassword(input.NewPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("✅ Password changed for user %d", user.ID)
	return nil
}
