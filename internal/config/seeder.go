package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"lendflow-api/internal/adapters/persistence/models"
	"lendflow-api/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedSuperadmin(); err != nil {
		return fmt.Errorf("superadmin seeder failed: %w", err)
	}

	if err := s.seedLoanTypes(); err != nil {
		return fmt.Errorf("loan type seeder failed: %w", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedSuperadmin provisions the superadmin account from environment
// configuration. The identity signs in through the normal login path;
// seeding only guarantees the account and its approved grant exist.
func (s *Seeder) seedSuperadmin() error {
	email := s.cfg.Superadmin.Email
	pass := s.cfg.Superadmin.Password

	if email == "" || pass == "" {
		log.Println("⚠️ Skipping superadmin seed: SUPERADMIN_EMAIL / SUPERADMIN_PASSWORD not set")
		return nil
	}

	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hashed, herr := password.Hash(pass)
		if herr != nil {
			return herr
		}
		user = models.User{
			Email:    email,
			Password: hashed,
			FullName: "Superadmin",
			IsActive: true,
		}
		if cerr := s.db.Create(&user).Error; cerr != nil {
			return cerr
		}
		log.Printf("✅ Superadmin user created: %s", email)
	} else if err != nil {
		return err
	}

	// Ensure the approved SUPERADMIN grant exists
	var grant models.RoleGrant
	err = s.db.Where("email = ? AND role = ?", email, models.RoleSuperadmin).First(&grant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		grant = models.RoleGrant{
			UserID:     user.ID,
			Email:      email,
			Role:       models.RoleSuperadmin,
			Status:     models.GrantStatusApproved,
			ApprovedAt: &now,
		}
		if cerr := s.db.Create(&grant).Error; cerr != nil {
			return cerr
		}
		log.Printf("✅ Superadmin grant created: %s", email)
	} else if err != nil {
		return err
	}

	return nil
}

// seedLoanTypes seeds the loan product catalog on first boot
func (s *Seeder) seedLoanTypes() error {
	var count int64
	if err := s.db.Model(&models.LoanType{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // Catalog already seeded
	}

	loanTypes := []models.LoanType{
		{Code: "PERSONAL", Name: "Personal Loan", Description: "General purpose personal loan", InterestRate: 8.50, MinAmount: 1000, MaxAmount: 50000, IsActive: true},
		{Code: "HOME", Name: "Home Loan", Description: "Home purchase and refinancing", InterestRate: 5.25, MinAmount: 50000, MaxAmount: 2000000, IsActive: true},
		{Code: "AUTO", Name: "Auto Loan", Description: "New and used vehicle financing", InterestRate: 6.75, MinAmount: 5000, MaxAmount: 150000, IsActive: true},
		{Code: "BUSINESS", Name: "Business Loan", Description: "Small business working capital", InterestRate: 9.90, MinAmount: 10000, MaxAmount: 500000, IsActive: true},
		{Code: "EDUCATION", Name: "Education Loan", Description: "Tuition and education expenses", InterestRate: 4.50, MinAmount: 1000, MaxAmount: 100000, IsActive: true},
	}

	if err := s.db.Create(&loanTypes).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d loan types", len(loanTypes))
	return nil
}
