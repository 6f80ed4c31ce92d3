package handlers

import (
	"lendflow-api/internal/adapters/http/middleware"
	"lendflow-api/internal/core/services"
	"lendflow-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles the signed-in user's dashboard
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Me returns the caller's own dashboard
// @Summary User dashboard
// @Description Recent loans and payments for the authenticated user
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) Me(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	dash, err := h.dashboardService.ForUser(c.Context(), caller)
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved", dash)
}
