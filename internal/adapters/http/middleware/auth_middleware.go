package middleware

import (
	"errors"
	"strings"

	"lendflow-api/internal/config"
	"lendflow-api/internal/core/domain"
	"lendflow-api/internal/core/services"
	"lendflow-api/internal/pkg/jwt"
	"lendflow-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals key for the resolved caller identity
const callerKey = "caller"

// AuthMiddleware validates the access token and stores the caller
// identity in request locals. Role is NOT read from the token: the
// role middlewares resolve it fresh from the database.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Store caller identity for handlers
		c.Locals(callerKey, domain.CallerIdentity{
			UserID:   claims.UserID,
			Email:    claims.Email,
			FullName: claims.FullName,
		})

		return c.Next()
	}
}

// Caller returns the caller identity stored by AuthMiddleware.
// The second return is false on routes that skipped authentication.
func Caller(c *fiber.Ctx) (domain.CallerIdentity, bool) {
	caller, ok := c.Locals(callerKey).(domain.CallerIdentity)
	return caller, ok
}

// RequireAdmin gates a route on an APPROVED admin (or superadmin)
// grant. The grant is looked up on every request so a revocation takes
// effect immediately; any lookup failure denies access.
func RequireAdmin(roleService *services.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := Caller(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		// Superadmin implies admin
		if err := roleService.CheckRole(c.Context(), caller.Email, domain.RoleSuperadmin); err == nil {
			return c.Next()
		}

		switch err := roleService.CheckRole(c.Context(), caller.Email, domain.RoleAdmin); {
		case err == nil:
			return c.Next()
		case errors.Is(err, services.ErrGrantPending):
			return response.Forbidden(c, "Your admin access request is pending approval")
		case errors.Is(err, services.ErrGrantRejected):
			return response.Forbidden(c, "Your admin access request was rejected")
		default:
			return response.Forbidden(c, "Admin access required")
		}
	}
}

// RequireSuperadmin gates a route on an APPROVED superadmin grant
func RequireSuperadmin(roleService *services.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := Caller(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		if err := roleService.CheckRole(c.Context(), caller.Email, domain.RoleSuperadmin); err != nil {
			return response.Forbidden(c, "Superadmin access required")
		}

		return c.Next()
	}
}

// OptionalAuth doesn't require auth but sets the caller identity if a
// valid token is present
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// Try to get token from cookie
		accessToken = c.Cookies("access_token")

		// If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// If token exists, validate and set caller identity
		if accessToken != "" {
			claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
			if err == nil {
				c.Locals(callerKey, domain.CallerIdentity{
					UserID:   claims.UserID,
					Email:    claims.Email,
					FullName: claims.FullName,
				})
			}
		}

		return c.Next()
	}
}
