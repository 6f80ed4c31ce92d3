package handlers

import (
	"errors"
	"strconv"

	"lendflow-api/internal/adapters/http/middleware"
	"lendflow-api/internal/core/services"
	"lendflow-api/internal/pkg/pagination"
	"lendflow-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan application endpoints
type LoanHandler struct {
	loanService *services.LoanService
	roleService *services.RoleService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService, roleService *services.RoleService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		roleService: roleService,
	}
}

// SubmitLoanRequest represents loan application request body
type SubmitLoanRequest struct {
	LoanType   string  `json:"loan_type"`
	Amount     float64 `json:"amount"`
	TermMonths int     `json:"term_months"`
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Address    string  `json:"address"`
	Employment string  `json:"employment"`
	Income     float64 `json:"income"`
	Purpose    string  `json:"purpose,omitempty"`
}

// Submit handles loan application submission
// @Summary Submit loan application
// @Description Submit a new loan application (always starts as PENDING)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubmitLoanRequest true "Loan application data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) Submit(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req SubmitLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.LoanInput{
		LoanType:   req.LoanType,
		Amount:     req.Amount,
		TermMonths: req.TermMonths,
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		Employment: req.Employment,
		Income:     req.Income,
		Purpose:    req.Purpose,
	}

	loan, err := h.loanService.Submit(c.Context(), caller, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoanTypeUnknown):
			return response.BadRequest(c, "Unknown loan type")
		case errors.Is(err, services.ErrLoanAmountRange):
			return response.BadRequest(c, "Amount is outside the range for this loan type")
		case errors.Is(err, services.ErrLoanInvalid):
			return response.BadRequest(c, "Invalid loan application")
		default:
			return response.InternalServerError(c, "Failed to submit loan application")
		}
	}

	return response.Created(c, "Loan application submitted successfully", fiber.Map{
		"loan": loan,
	})
}

// ListMine lists the caller's loan applications
// @Summary List my loan applications
// @Description List the authenticated user's loan applications
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) ListMine(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	loans, total, err := h.loanService.ListMine(c.Context(), caller, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loan applications")
	}

	return response.Success(c, "Loan applications retrieved", pagination.NewResponse(loans, params, total))
}

// Get returns one loan application
// @Summary Get loan application
// @Description Get a loan application by ID (owner or admin only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan application ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	isAdmin := h.roleService.IsAdmin(c.Context(), caller.Email)

	loan, err := h.loanService.GetByID(c.Context(), caller, isAdmin, uint(id))
	if err != nil {
		if errors.Is(err, services.ErrLoanNotFound) {
			return response.NotFound(c, "Loan application not found")
		}
		return response.InternalServerError(c, "Failed to get loan application")
	}

	return response.Success(c, "Loan application retrieved", fiber.Map{
		"loan": loan,
	})
}

// ListLoanTypes returns the loan product catalog
// @Summary List loan types
// @Description List active loan products with rates and amount ranges
// @Tags Loans
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /loan-types [get]
func (h *LoanHandler) ListLoanTypes(c *fiber.Ctx) error {
	loanTypes, err := h.loanService.ListLoanTypes(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list loan types")
	}

	return response.Success(c, "Loan types retrieved", fiber.Map{
		"loan_types": loanTypes,
	})
}
