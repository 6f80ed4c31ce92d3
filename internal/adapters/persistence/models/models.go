package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Identity & Session Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	FullName  string         `gorm:"size:100;not null" json:"full_name"`
	Phone     string         `gorm:"size:20" json:"phone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	IsActive      bool      `json:"is_active"`
	EmailVerified bool      `json:"email_verified"`
	Role          string    `json:"role,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Role Grants (admin approval workflow)
// ============================================================

// Role names
const (
	RoleUser       = "USER"
	RoleAdmin      = "ADMIN"
	RoleSuperadmin = "SUPERADMIN"
)

// Grant status
const (
	GrantStatusPending  = "PENDING"
	GrantStatusApproved = "APPROVED"
	GrantStatusRejected = "REJECTED"
)

// RoleGrant represents role_grants table. One row per (email, role);
// approved_at and rejected_at are mutually exclusive.
type RoleGrant struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	Email      string     `gorm:"size:100;not null;uniqueIndex:idx_grant_email_role" json:"email"`
	Role       string     `gorm:"size:20;not null;uniqueIndex:idx_grant_email_role" json:"role"`
	FirstName  string     `gorm:"size:50" json:"first_name"`
	LastName   string     `gorm:"size:50" json:"last_name"`
	Status     string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ApprovedBy *uint      `json:"approved_by"`
	ApprovedAt *time.Time `json:"approved_at"`
	RejectedAt *time.Time `json:"rejected_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User     *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Approver *User `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

func (RoleGrant) TableName() string {
	return "role_grants"
}

func (g *RoleGrant) IsApproved() bool {
	return g.Status == GrantStatusApproved
}

// ============================================================
// Loan Master Table
// ============================================================

// LoanType represents the loan product catalog
type LoanType struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Code         string         `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	InterestRate float64        `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	MinAmount    float64        `gorm:"type:decimal(15,2);not null" json:"min_amount"`
	MaxAmount    float64        `gorm:"type:decimal(15,2);not null" json:"max_amount"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LoanType) TableName() string {
	return "loan_types"
}

// ============================================================
// Loan Applications
// ============================================================

// Loan application status
const (
	LoanStatusPending  = "PENDING"
	LoanStatusApproved = "APPROVED"
	LoanStatusRejected = "REJECTED"
)

// LoanApplication represents loan_applications table.
// Rows always start PENDING; APPROVED and REJECTED are terminal.
type LoanApplication struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"index;not null" json:"user_id"`
	LoanType   string         `gorm:"size:20;not null" json:"loan_type"`
	Amount     float64        `gorm:"type:decimal(15,2);not null" json:"amount"`
	TermMonths int            `gorm:"not null" json:"term_months"`
	FullName   string         `gorm:"size:100;not null" json:"full_name"`
	Email      string         `gorm:"size:100;not null" json:"email"`
	Phone      string         `gorm:"size:20;not null" json:"phone"`
	Address    string         `gorm:"type:text;not null" json:"address"`
	Employment string         `gorm:"size:100;not null" json:"employment"`
	Income     float64        `gorm:"type:decimal(15,2);not null" json:"income"`
	Purpose    string         `gorm:"type:text" json:"purpose"`
	Status     string         `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ApprovedBy *uint          `json:"approved_by"`
	ApprovedAt *time.Time     `json:"approved_at"`
	RejectedAt *time.Time     `json:"rejected_at"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Applicant *User `gorm:"foreignKey:UserID" json:"applicant,omitempty"`
	Approver  *User `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

func (LoanApplication) TableName() string {
	return "loan_applications"
}

func (l *LoanApplication) IsTerminal() bool {
	return l.Status == LoanStatusApproved || l.Status == LoanStatusRejected
}

// ============================================================
// Payments
// ============================================================

// Payment record status
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
)

// Payment types
const (
	PaymentTypeLoan    = "loan"
	PaymentTypeDeposit = "deposit"
	PaymentTypeFee     = "fee"
)

// PaymentRecord represents payment_records table.
// MaskedCardNumber never holds a full PAN: interior digits are
// replaced before the row is written.
type PaymentRecord struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"index;not null" json:"user_id"`
	Amount           float64        `gorm:"type:decimal(15,2);not null" json:"amount"`
	CardholderName   string         `gorm:"size:100;not null" json:"cardholder_name"`
	MaskedCardNumber string         `gorm:"size:25;not null" json:"masked_card_number"`
	PaymentType      string         `gorm:"size:20;not null" json:"payment_type"`
	Status           string         `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ProcessedBy      *uint          `json:"processed_by"`
	ProcessedAt      *time.Time     `json:"processed_at"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Payer     *User `gorm:"foreignKey:UserID" json:"payer,omitempty"`
	Processor *User `gorm:"foreignKey:ProcessedBy" json:"processor,omitempty"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}

// PaymentMethod represents payment_methods table. Card numbers are
// stored masked; PIN and CVV are stored bcrypt-hashed only.
type PaymentMethod struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"index;not null" json:"user_id"`
	CardholderName   string         `gorm:"size:100;not null" json:"cardholder_name"`
	MaskedCardNumber string         `gorm:"size:25;not null" json:"masked_card_number"`
	LastFour         string         `gorm:"size:4;not null" json:"last_four"`
	ExpiryDate       string         `gorm:"size:7;not null" json:"expiry_date"`
	CVVHash          string         `gorm:"size:255;not null" json:"-"`
	PaymentPinHash   string         `gorm:"size:255;not null" json:"-"`
	IsDefault        bool           `gorm:"default:false;index" json:"is_default"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner *User `gorm:"foreignKey:UserID" json:"-"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// ============================================================
// Verification Codes
// ============================================================

// VerificationCode represents verification_codes table.
// A code is single-use: once verified it never validates again,
// and an expired or superseded code is dead even if presented.
type VerificationCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Code      string    `gorm:"size:10;not null" json:"-"`
	Attempts  int       `gorm:"default:0" json:"attempts"`
	Verified  bool      `gorm:"default:false" json:"verified"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (VerificationCode) TableName() string {
	return "verification_codes"
}

func (v *VerificationCode) IsExpired() bool {
	return time.Now().After(v.ExpiresAt)
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&RoleGrant{},
		&LoanType{},
		&LoanApplication{},
		&PaymentRecord{},
		&PaymentMethod{},
		&VerificationCode{},
	)
}
