package domain

// Role tags resolved per request
const (
	RoleAnonymous  = "ANONYMOUS"
	RoleUser       = "USER"
	RoleAdmin      = "ADMIN"
	RoleSuperadmin = "SUPERADMIN"
)

// CallerIdentity is the authenticated principal for one request.
// It is built by the auth middleware from token claims and passed
// explicitly into service calls — never read from ambient storage.
type CallerIdentity struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}
