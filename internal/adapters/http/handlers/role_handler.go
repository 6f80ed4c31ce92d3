package handlers

import (
	"errors"
	"strings"

	"lendflow-api/internal/adapters/http/middleware"
	"lendflow-api/internal/core/services"
	"lendflow-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RoleHandler handles the caller-facing side of the admin approval
// workflow: requesting access and checking the request's fate.
type RoleHandler struct {
	roleService *services.RoleService
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roleService *services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// AdminAccessRequest represents admin access request body
type AdminAccessRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RequestAdminAccess submits an admin access request
// @Summary Request admin access
// @Description Create a pending admin grant for the caller; a superadmin decides it
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AdminAccessRequest true "Requester name"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /roles/admin-request [post]
func (h *RoleHandler) RequestAdminAccess(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req AdminAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.FirstName) == "" {
		return response.BadRequest(c, "First name is required")
	}
	if strings.TrimSpace(req.LastName) == "" {
		return response.BadRequest(c, "Last name is required")
	}

	input := &services.AdminAccessInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	grant, err := h.roleService.RequestAdminAccess(c.Context(), caller, input)
	if err != nil {
		if errors.Is(err, services.ErrGrantAlreadyExists) {
			return response.Conflict(c, "Admin access already requested, current status: "+grant.Status)
		}
		return response.InternalServerError(c, "Failed to request admin access")
	}

	return response.Created(c, "Admin access requested, awaiting approval", fiber.Map{
		"grant": grant,
	})
}

// MyGrantStatus returns the caller's admin grant status
// @Summary My admin request status
// @Description Get the status of the caller's admin access request
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /roles/admin-request [get]
func (h *RoleHandler) MyGrantStatus(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	grant, err := h.roleService.GrantStatus(c.Context(), caller.Email)
	if err != nil {
		if errors.Is(err, services.ErrGrantNotFound) {
			return response.NotFound(c, "No admin access request found")
		}
		return response.InternalServerError(c, "Failed to get admin request status")
	}

	return response.Success(c, "Admin request status retrieved", fiber.Map{
		"grant": grant,
	})
}

// MyRole returns the caller's resolved role
// @Summary My role
// @Description Resolve the caller's effective role from current grants
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /roles/me [get]
func (h *RoleHandler) MyRole(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	role, err := h.roleService.Resolve(c.Context(), caller.Email)
	if err != nil {
		return response.InternalServerError(c, "Failed to resolve role")
	}

	return response.Success(c, "Role resolved", fiber.Map{
		"role": role,
	})
}
