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

// PaymentHandler handles payment and payment method endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
	roleService    *services.RoleService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, roleService *services.RoleService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		roleService:    roleService,
	}
}

// SubmitPaymentRequest represents payment request body
type SubmitPaymentRequest struct {
	Amount         float64 `json:"amount"`
	CardholderName string  `json:"cardholder_name"`
	CardNumber     string  `json:"card_number"`
	PaymentType    string  `json:"payment_type"`
}

// AddMethodRequest represents payment method request body
type AddMethodRequest struct {
	CardholderName string `json:"cardholder_name"`
	CardNumber     string `json:"card_number"`
	ExpiryDate     string `json:"expiry_date"`
	CVV            string `json:"cvv"`
	PaymentPin     string `json:"payment_pin"`
	IsDefault      bool   `json:"is_default"`
}

// Submit handles payment submission
// @Summary Submit payment
// @Description Submit a payment; the card number is masked before storage
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubmitPaymentRequest true "Payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /payments [post]
func (h *PaymentHandler) Submit(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req SubmitPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.PaymentInput{
		Amount:         req.Amount,
		CardholderName: req.CardholderName,
		CardNumber:     req.CardNumber,
		PaymentType:    req.PaymentType,
	}

	payment, err := h.paymentService.Submit(c.Context(), caller, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCardInvalid):
			return response.BadRequest(c, "Invalid card number")
		case errors.Is(err, services.ErrPaymentInvalid):
			return response.BadRequest(c, "Invalid payment")
		default:
			return response.InternalServerError(c, "Failed to submit payment")
		}
	}

	return response.Created(c, "Payment submitted successfully", fiber.Map{
		"payment": payment,
	})
}

// ListMine lists the caller's payments
// @Summary List my payments
// @Description List the authenticated user's payment records
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /payments [get]
func (h *PaymentHandler) ListMine(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	payments, total, err := h.paymentService.ListMine(c.Context(), caller, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payments")
	}

	return response.Success(c, "Payments retrieved", pagination.NewResponse(payments, params, total))
}

// Get returns one payment record
// @Summary Get payment
// @Description Get a payment record by ID (owner or admin only)
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid payment ID")
	}

	isAdmin := h.roleService.IsAdmin(c.Context(), caller.Email)

	payment, err := h.paymentService.GetByID(c.Context(), caller, isAdmin, uint(id))
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return response.NotFound(c, "Payment not found")
		}
		return response.InternalServerError(c, "Failed to get payment")
	}

	return response.Success(c, "Payment retrieved", fiber.Map{
		"payment": payment,
	})
}

// AddMethod stores a payment method
// @Summary Add payment method
// @Description Store a payment method; requires a verified email
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddMethodRequest true "Payment method data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /payment-methods [post]
func (h *PaymentHandler) AddMethod(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req AddMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.PaymentMethodInput{
		CardholderName: req.CardholderName,
		CardNumber:     req.CardNumber,
		ExpiryDate:     req.ExpiryDate,
		CVV:            req.CVV,
		PaymentPin:     req.PaymentPin,
		IsDefault:      req.IsDefault,
	}

	method, err := h.paymentService.AddMethod(c.Context(), caller, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailNotVerified):
			return response.Forbidden(c, "Please verify your email first")
		case errors.Is(err, services.ErrCardInvalid):
			return response.BadRequest(c, "Invalid card number")
		case errors.Is(err, services.ErrExpiryInvalid):
			return response.BadRequest(c, "Invalid expiry date, use MM/YY")
		case errors.Is(err, services.ErrCVVInvalid):
			return response.BadRequest(c, "CVV must be 3-4 digits")
		case errors.Is(err, services.ErrPinInvalid):
			return response.BadRequest(c, "Payment PIN must be 4-6 digits")
		default:
			return response.InternalServerError(c, "Failed to add payment method")
		}
	}

	return response.Created(c, "Payment method added successfully", fiber.Map{
		"payment_method": method,
	})
}

// ListMethods lists the caller's payment methods
// @Summary List payment methods
// @Description List the authenticated user's stored payment methods
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /payment-methods [get]
func (h *PaymentHandler) ListMethods(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	methods, err := h.paymentService.ListMethods(c.Context(), caller)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payment methods")
	}

	return response.Success(c, "Payment methods retrieved", fiber.Map{
		"payment_methods": methods,
	})
}

// SetDefaultMethod marks a payment method as default
// @Summary Set default payment method
// @Description Mark one of the caller's payment methods as default
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment method ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payment-methods/{id}/default [put]
func (h *PaymentHandler) SetDefaultMethod(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid payment method ID")
	}

	if err := h.paymentService.SetDefaultMethod(c.Context(), caller, uint(id)); err != nil {
		if errors.Is(err, services.ErrPaymentMethodNotFound) {
			return response.NotFound(c, "Payment method not found")
		}
		return response.InternalServerError(c, "Failed to set default payment method")
	}

	return response.Success(c, "Default payment method updated", nil)
}

// DeleteMethod removes a payment method
// @Summary Delete payment method
// @Description Remove one of the caller's stored payment methods
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment method ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payment-methods/{id} [delete]
func (h *PaymentHandler) DeleteMethod(c *fiber.Ctx) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid payment method ID")
	}

	if err := h.paymentService.DeleteMethod(c.Context(), caller, uint(id)); err != nil {
		if errors.Is(err, services.ErrPaymentMethodNotFound) {
			return response.NotFound(c, "Payment method not found")
		}
		return response.InternalServerError(c, "Failed to delete payment method")
	}

	return response.Success(c, "Payment method deleted", nil)
}
