package handlers

import (
	"context"
	"errors"
	"strconv"

	"lendflow-api/internal/adapters/http/middleware"
	"lendflow-api/internal/adapters/persistence/models"
	"lendflow-api/internal/core/domain"
	"lendflow-api/internal/core/services"
	"lendflow-api/internal/pkg/pagination"
	"lendflow-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SuperadminHandler handles the superadmin console: deciding admin
// access requests and inspecting identities.
type SuperadminHandler struct {
	roleService      *services.RoleService
	dashboardService *services.DashboardService
}

// NewSuperadminHandler creates a new superadmin handler
func NewSuperadminHandler(roleService *services.RoleService, dashboardService *services.DashboardService) *SuperadminHandler {
	return &SuperadminHandler{
		roleService:      roleService,
		dashboardService: dashboardService,
	}
}

// ListGrants lists admin access requests
// @Summary List admin access requests
// @Description List admin grants in every state (superadmin only)
// @Tags Superadmin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /superadmin/grants [get]
func (h *SuperadminHandler) ListGrants(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	grants, total, err := h.roleService.ListAdminGrants(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list admin requests")
	}

	return response.Success(c, "Admin requests retrieved", pagination.NewResponse(grants, params, total))
}

// ApproveGrant approves a pending admin access request
// @Summary Approve admin access
// @Description Approve a pending admin grant (superadmin only)
// @Tags Superadmin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Grant ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /superadmin/grants/{id}/approve [put]
func (h *SuperadminHandler) ApproveGrant(c *fiber.Ctx) error {
	return h.decideGrant(c, h.roleService.ApproveGrant, "Admin access approved")
}

// RejectGrant rejects a pending admin access request
// @Summary Reject admin access
// @Description Reject a pending admin grant (superadmin only)
// @Tags Superadmin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Grant ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /superadmin/grants/{id}/reject [put]
func (h *SuperadminHandler) RejectGrant(c *fiber.Ctx) error {
	return h.decideGrant(c, h.roleService.RejectGrant, "Admin access rejected")
}

func (h *SuperadminHandler) decideGrant(
	c *fiber.Ctx,
	decide func(ctx context.Context, grantID uint, superadminID uint) (*models.RoleGrant, error),
	message string,
) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid grant ID")
	}

	grant, err := decide(c.Context(), uint(id), caller.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGrantNotFound):
			return response.NotFound(c, "Admin request not found")
		case errors.Is(err, domain.ErrStatusConflict):
			return response.Conflict(c, "Admin request was already decided differently")
		default:
			return response.InternalServerError(c, "Failed to update admin request")
		}
	}

	return response.Success(c, message, fiber.Map{
		"grant": grant,
	})
}

// ListUsers lists all registered identities
// @Summary List users
// @Description List every registered user (superadmin only)
// @Tags Superadmin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /superadmin/users [get]
func (h *SuperadminHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.roleService.ListIdentities(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	// Never expose password hashes
	responses := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}

	return response.Success(c, "Users retrieved", pagination.NewResponse(responses, params, total))
}

// Dashboard returns the superadmin console aggregates
// @Summary Superadmin dashboard
// @Description Admin aggregates plus identity figures (superadmin only)
// @Tags Superadmin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /superadmin/dashboard [get]
func (h *SuperadminHandler) Dashboard(c *fiber.Ctx) error {
	dash, err := h.dashboardService.ForSuperadmin(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved", dash)
}
