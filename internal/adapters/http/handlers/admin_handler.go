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

// AdminHandler handles the admin console endpoints: loan and payment
// decisions plus the lifecycle listings. Routes are gated by the admin
// role middleware.
type AdminHandler struct {
	loanService      *services.LoanService
	paymentService   *services.PaymentService
	dashboardService *services.DashboardService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	loanService *services.LoanService,
	paymentService *services.PaymentService,
	dashboardService *services.DashboardService,
) *AdminHandler {
	return &AdminHandler{
		loanService:      loanService,
		paymentService:   paymentService,
		dashboardService: dashboardService,
	}
}

// ListLoans lists all loan applications
// @Summary List all loan applications
// @Description List every loan application (admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/loans [get]
func (h *AdminHandler) ListLoans(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	loans, total, err := h.loanService.ListAll(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loan applications")
	}

	return response.Success(c, "Loan applications retrieved", pagination.NewResponse(loans, params, total))
}

// ApproveLoan approves a pending loan application
// @Summary Approve loan application
// @Description Approve a pending loan application (admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan application ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/loans/{id}/approve [put]
func (h *AdminHandler) ApproveLoan(c *fiber.Ctx) error {
	return h.decideLoan(c, h.loanService.Approve, "Loan application approved")
}

// RejectLoan rejects a pending loan application
// @Summary Reject loan application
// @Description Reject a pending loan application (admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan application ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/loans/{id}/reject [put]
func (h *AdminHandler) RejectLoan(c *fiber.Ctx) error {
	return h.decideLoan(c, h.loanService.Reject, "Loan application rejected")
}

func (h *AdminHandler) decideLoan(
	c *fiber.Ctx,
	decide func(ctx context.Context, loanID uint, adminID uint) (*models.LoanApplication, error),
	message string,
) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := decide(c.Context(), uint(id), caller.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoanNotFound):
			return response.NotFound(c, "Loan application not found")
		case errors.Is(err, domain.ErrStatusConflict):
			return response.Conflict(c, "Loan application was already decided differently")
		default:
			return response.InternalServerError(c, "Failed to update loan application")
		}
	}

	return response.Success(c, message, fiber.Map{
		"loan": loan,
	})
}

// ListPayments lists all payment records
// @Summary List all payments
// @Description List every payment record (admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/payments [get]
func (h *AdminHandler) ListPayments(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	payments, total, err := h.paymentService.ListAll(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payments")
	}

	return response.Success(c, "Payments retrieved", pagination.NewResponse(payments, params, total))
}

// CompletePayment marks a pending payment as completed
// @Summary Complete payment
// @Description Mark a pending payment as completed (admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/payments/{id}/complete [put]
func (h *AdminHandler) CompletePayment(c *fiber.Ctx) error {
	return h.decidePayment(c, h.paymentService.Complete, "Payment completed")
}

// FailPayment marks a pending payment as failed
// @Summary Fail payment
// @Description Mark a pending payment as failed (admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/payments/{id}/fail [put]
func (h *AdminHandler) FailPayment(c *fiber.Ctx) error {
	return h.decidePayment(c, h.paymentService.Fail, "Payment marked as failed")
}

func (h *AdminHandler) decidePayment(
	c *fiber.Ctx,
	decide func(ctx context.Context, paymentID uint, adminID uint) (*models.PaymentRecord, error),
	message string,
) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid payment ID")
	}

	payment, err := decide(c.Context(), uint(id), caller.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			return response.NotFound(c, "Payment not found")
		case errors.Is(err, domain.ErrStatusConflict):
			return response.Conflict(c, "Payment was already decided differently")
		default:
			return response.InternalServerError(c, "Failed to update payment")
		}
	}

	return response.Success(c, message, fiber.Map{
		"payment": payment,
	})
}

// Dashboard returns the admin console aggregates
// @Summary Admin dashboard
// @Description Lifecycle counts and totals for the admin console
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	dash, err := h.dashboardService.ForAdmin(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved", dash)
}
