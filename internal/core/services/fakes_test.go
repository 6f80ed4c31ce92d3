package services

import (
	"context"
	"sort"
	"time"

	"lendflow-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the conditional-update
// semantics of the GORM implementations so lifecycle races can be
// exercised without a database.

// ---- loan repository fake ----

type fakeLoanRepo struct {
	loans  map[uint]*models.LoanApplication
	nextID uint
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[uint]*models.LoanApplication), nextID: 1}
}

func (r *fakeLoanRepo) Create(_ context.Context, loan *models.LoanApplication) error {
	loan.ID = r.nextID
	loan.CreatedAt = time.Now()
	r.nextID++
	cp := *loan
	r.loans[loan.ID] = &cp
	return nil
}

func (r *fakeLoanRepo) GetByID(_ context.Context, id uint) (*models.LoanApplication, error) {
	loan, ok := r.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *loan
	return &cp, nil
}

func (r *fakeLoanRepo) ListByUser(_ context.Context, userID uint, offset, limit int) ([]*models.LoanApplication, int64, error) {
	var out []*models.LoanApplication
	for _, loan := range r.loans {
		if loan.UserID == userID {
			cp := *loan
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginateLoans(out, offset, limit), int64(len(out)), nil
}

func (r *fakeLoanRepo) List(_ context.Context, offset, limit int) ([]*models.LoanApplication, int64, error) {
	var out []*models.LoanApplication
	for _, loan := range r.loans {
		cp := *loan
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginateLoans(out, offset, limit), int64(len(out)), nil
}

func paginateLoans(loans []*models.LoanApplication, offset, limit int) []*models.LoanApplication {
	if offset >= len(loans) {
		return nil
	}
	end := offset + limit
	if end > len(loans) {
		end = len(loans)
	}
	return loans[offset:end]
}

func (r *fakeLoanRepo) Transition(_ context.Context, id uint, status string, actorID uint, at time.Time) (int64, error) {
	loan, ok := r.loans[id]
	if !ok || loan.Status != models.LoanStatusPending {
		return 0, nil
	}
	loan.Status = status
	loan.ApprovedBy = &actorID
	switch status {
	case models.LoanStatusApproved:
		loan.ApprovedAt = &at
		loan.RejectedAt = nil
	case models.LoanStatusRejected:
		loan.RejectedAt = &at
		loan.ApprovedAt = nil
	}
	return 1, nil
}

func (r *fakeLoanRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var count int64
	for _, loan := range r.loans {
		if loan.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeLoanRepo) SumAmountByStatus(_ context.Context, status string) (float64, error) {
	var total float64
	for _, loan := range r.loans {
		if loan.Status == status {
			total += loan.Amount
		}
	}
	return total, nil
}

func (r *fakeLoanRepo) Recent(_ context.Context, limit int) ([]*models.LoanApplication, error) {
	out, _, _ := r.List(context.Background(), 0, limit)
	return out, nil
}

// ---- loan type repository fake ----

type fakeLoanTypeRepo struct {
	types map[string]*models.LoanType
}

func newFakeLoanTypeRepo() *fakeLoanTypeRepo {
	return &fakeLoanTypeRepo{types: map[string]*models.LoanType{
		"PERSONAL": {ID: 1, Code: "PERSONAL", Name: "Personal Loan", InterestRate: 8.5, MinAmount: 1000, MaxAmount: 50000, IsActive: true},
		"HOME":     {ID: 2, Code: "HOME", Name: "Home Loan", InterestRate: 5.25, MinAmount: 50000, MaxAmount: 2000000, IsActive: true},
	}}
}

func (r *fakeLoanTypeRepo) Create(_ context.Context, loanType *models.LoanType) error {
	r.types[loanType.Code] = loanType
	return nil
}

func (r *fakeLoanTypeRepo) GetByCode(_ context.Context, code string) (*models.LoanType, error) {
	loanType, ok := r.types[code]
	if !ok || !loanType.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return loanType, nil
}

func (r *fakeLoanTypeRepo) List(_ context.Context) ([]*models.LoanType, error) {
	var out []*models.LoanType
	for _, loanType := range r.types {
		if loanType.IsActive {
			out = append(out, loanType)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLoanTypeRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.types)), nil
}

// ---- payment repository fakes ----

type fakePaymentRepo struct {
	payments map[uint]*models.PaymentRecord
	nextID   uint
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uint]*models.PaymentRecord), nextID: 1}
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *models.PaymentRecord) error {
	payment.ID = r.nextID
	payment.CreatedAt = time.Now()
	r.nextID++
	cp := *payment
	r.payments[payment.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id uint) (*models.PaymentRecord, error) {
	payment, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *payment
	return &cp, nil
}

func (r *fakePaymentRepo) ListByUser(_ context.Context, userID uint, offset, limit int) ([]*models.PaymentRecord, int64, error) {
	var out []*models.PaymentRecord
	for _, payment := range r.payments {
		if payment.UserID == userID {
			cp := *payment
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) List(_ context.Context, offset, limit int) ([]*models.PaymentRecord, int64, error) {
	var out []*models.PaymentRecord
	for _, payment := range r.payments {
		cp := *payment
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) Transition(_ context.Context, id uint, status string, actorID uint, at time.Time) (int64, error) {
	payment, ok := r.payments[id]
	if !ok || payment.Status != models.PaymentStatusPending {
		return 0, nil
	}
	payment.Status = status
	payment.ProcessedBy = &actorID
	payment.ProcessedAt = &at
	return 1, nil
}

func (r *fakePaymentRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var count int64
	for _, payment := range r.payments {
		if payment.Status == status {
			count++
		}
	}
	return count, nil
}

type fakePaymentMethodRepo struct {
	methods map[uint]*models.PaymentMethod
	nextID  uint
}

func newFakePaymentMethodRepo() *fakePaymentMethodRepo {
	return &fakePaymentMethodRepo{methods: make(map[uint]*models.PaymentMethod), nextID: 1}
}

func (r *fakePaymentMethodRepo) Create(_ context.Context, method *models.PaymentMethod) error {
	if method.IsDefault {
		for _, m := range r.methods {
			if m.UserID == method.UserID {
				m.IsDefault = false
			}
		}
	}
	method.ID = r.nextID
	r.nextID++
	cp := *method
	r.methods[method.ID] = &cp
	return nil
}

func (r *fakePaymentMethodRepo) GetByID(_ context.Context, id uint) (*models.PaymentMethod, error) {
	method, ok := r.methods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *method
	return &cp, nil
}

func (r *fakePaymentMethodRepo) ListByUser(_ context.Context, userID uint) ([]*models.PaymentMethod, error) {
	var out []*models.PaymentMethod
	for _, method := range r.methods {
		if method.UserID == userID {
			cp := *method
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePaymentMethodRepo) SetDefault(_ context.Context, userID, methodID uint) error {
	target, ok := r.methods[methodID]
	if !ok || target.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	for _, m := range r.methods {
		if m.UserID == userID {
			m.IsDefault = m.ID == methodID
		}
	}
	return nil
}

func (r *fakePaymentMethodRepo) Delete(_ context.Context, id uint) error {
	delete(r.methods, id)
	return nil
}

// ---- verification code repository fake ----

type fakeVerificationRepo struct {
	codes  map[uint]*models.VerificationCode
	nextID uint
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{codes: make(map[uint]*models.VerificationCode), nextID: 1}
}

func (r *fakeVerificationRepo) Create(_ context.Context, code *models.VerificationCode) error {
	code.ID = r.nextID
	code.CreatedAt = time.Now()
	r.nextID++
	cp := *code
	r.codes[code.ID] = &cp
	return nil
}

func (r *fakeVerificationRepo) GetActiveByUser(_ context.Context, userID uint) (*models.VerificationCode, error) {
	var newest *models.VerificationCode
	for _, code := range r.codes {
		if code.UserID != userID || code.Verified {
			continue
		}
		if newest == nil || code.ID > newest.ID {
			newest = code
		}
	}
	if newest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *newest
	return &cp, nil
}

func (r *fakeVerificationRepo) MarkVerified(_ context.Context, id uint) (int64, error) {
	code, ok := r.codes[id]
	if !ok || code.Verified {
		return 0, nil
	}
	code.Verified = true
	return 1, nil
}

func (r *fakeVerificationRepo) IncrementAttempts(_ context.Context, id uint) error {
	if code, ok := r.codes[id]; ok {
		code.Attempts++
	}
	return nil
}

func (r *fakeVerificationRepo) ExpireActiveByUser(_ context.Context, userID uint) error {
	now := time.Now()
	for _, code := range r.codes {
		if code.UserID == userID && !code.Verified && code.ExpiresAt.After(now) {
			code.ExpiresAt = now
		}
	}
	return nil
}

func (r *fakeVerificationRepo) HasVerified(_ context.Context, userID uint) (bool, error) {
	for _, code := range r.codes {
		if code.UserID == userID && code.Verified {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeVerificationRepo) DeleteExpired(_ context.Context, before time.Time) error {
	for id, code := range r.codes {
		if !code.Verified && code.ExpiresAt.Before(before) {
			delete(r.codes, id)
		}
	}
	return nil
}

// ---- role grant repository fake ----

type fakeGrantRepo struct {
	grants map[uint]*models.RoleGrant
	nextID uint
}

func newFakeGrantRepo() *fakeGrantRepo {
	return &fakeGrantRepo{grants: make(map[uint]*models.RoleGrant), nextID: 1}
}

func (r *fakeGrantRepo) Create(_ context.Context, grant *models.RoleGrant) error {
	grant.ID = r.nextID
	grant.CreatedAt = time.Now()
	r.nextID++
	cp := *grant
	r.grants[grant.ID] = &cp
	return nil
}

func (r *fakeGrantRepo) GetByID(_ context.Context, id uint) (*models.RoleGrant, error) {
	grant, ok := r.grants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *grant
	return &cp, nil
}

func (r *fakeGrantRepo) GetByEmailAndRole(_ context.Context, email, role string) (*models.RoleGrant, error) {
	for _, grant := range r.grants {
		if grant.Email == email && grant.Role == role {
			cp := *grant
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGrantRepo) ListByRole(_ context.Context, role string, offset, limit int) ([]*models.RoleGrant, int64, error) {
	var out []*models.RoleGrant
	for _, grant := range r.grants {
		if grant.Role == role {
			cp := *grant
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeGrantRepo) UpdateStatus(_ context.Context, id uint, status string, approvedBy uint, at time.Time) (int64, error) {
	grant, ok := r.grants[id]
	if !ok || grant.Status != models.GrantStatusPending {
		return 0, nil
	}
	grant.Status = status
	grant.ApprovedBy = &approvedBy
	switch status {
	case models.GrantStatusApproved:
		grant.ApprovedAt = &at
		grant.RejectedAt = nil
	case models.GrantStatusRejected:
		grant.RejectedAt = &at
		grant.ApprovedAt = nil
	}
	return 1, nil
}

func (r *fakeGrantRepo) CountByStatus(_ context.Context, role, status string) (int64, error) {
	var count int64
	for _, grant := range r.grants {
		if grant.Role == role && grant.Status == status {
			count++
		}
	}
	return count, nil
}

// ---- user repository fake ----

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	var out []*models.User
	for _, user := range r.users {
		cp := *user
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

// ---- refresh token repository fake ----

type fakeRefreshTokenRepo struct {
	tokens map[uint]*models.RefreshToken
	nextID uint
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[uint]*models.RefreshToken), nextID: 1}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	token.ID = r.nextID
	token.CreatedAt = time.Now()
	r.nextID++
	cp := *token
	r.tokens[token.ID] = &cp
	return nil
}

func (r *fakeRefreshTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	for _, token := range r.tokens {
		if token.TokenHash == tokenHash {
			cp := *token
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) Revoke(_ context.Context, id uint) error {
	token, ok := r.tokens[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	token.RevokedAt = &now
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	now := time.Now()
	for _, token := range r.tokens {
		if token.TokenHash == tokenHash {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	now := time.Now()
	for _, token := range r.tokens {
		if token.UserID == userID {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) error {
	now := time.Now()
	for id, token := range r.tokens {
		if token.ExpiresAt.Before(now) {
			delete(r.tokens, id)
		}
	}
	return nil
}
