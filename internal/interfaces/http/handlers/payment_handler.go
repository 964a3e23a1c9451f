package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/interfaces/http/response"
	"easy-invoice.backend/internal/usecases"
)

type PaymentService interface {
	GetRoutes(ctx context.Context, paymentReference, wallet string) ([]*usecases.ClassifiedRoute, error)
	DirectPayData(ctx context.Context, params usecases.DirectPayParams, wallet string) (*entities.PayData, error)
	SubmitSignedIntent(ctx context.Context, requestID, intentID string, payload *entities.SignedIntentPayload) error
}

// PaymentHandler handles route discovery and settlement endpoints
type PaymentHandler struct {
	paymentUsecase PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentUsecase PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUsecase: paymentUsecase}
}

// GetRoutes lists classified payment routes for an invoice
// GET /api/v1/pay/:paymentReference/routes
func (h *PaymentHandler) GetRoutes(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		response.Error(c, domainerrors.BadRequest("wallet is required"))
		return
	}

	routes, err := h.paymentUsecase.GetRoutes(c.Request.Context(), c.Param("paymentReference"), wallet)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"routes": routes})
}

type directPayRequest struct {
	Amount          string `json:"amount" binding:"required"`
	Payee           string `json:"payee" binding:"required"`
	InvoiceCurrency string `json:"invoiceCurrency" binding:"required"`
	PaymentCurrency string `json:"paymentCurrency" binding:"required"`
	Wallet          string `json:"wallet" binding:"required"`
}

// Pay fetches the transactions for an ad-hoc payment
// POST /api/v1/pay
func (h *PaymentHandler) Pay(c *gin.Context) {
	var req directPayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	payData, err := h.paymentUsecase.DirectPayData(c.Request.Context(), usecases.DirectPayParams{
		Amount:          req.Amount,
		Payee:           req.Payee,
		InvoiceCurrency: req.InvoiceCurrency,
		PaymentCurrency: req.PaymentCurrency,
	}, req.Wallet)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, payData)
}

type submitIntentRequest struct {
	RequestID       string `json:"requestId" binding:"required"`
	IntentSignature string `json:"intentSignature" binding:"required"`
	PermitSignature string `json:"permitSignature"`
	Nonce           string `json:"nonce" binding:"required"`
	Deadline        int64  `json:"deadline" binding:"required"`
	PermitNonce     string `json:"permitNonce"`
	PermitDeadline  int64  `json:"permitDeadline"`
}

// SubmitPaymentIntent submits a browser-signed payment intent
// POST /api/v1/payment-intents/:id
func (h *PaymentHandler) SubmitPaymentIntent(c *gin.Context) {
	var req submitIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	err := h.paymentUsecase.SubmitSignedIntent(c.Request.Context(), req.RequestID, c.Param("id"),
		&entities.SignedIntentPayload{
			IntentSignature: req.IntentSignature,
			PermitSignature: req.PermitSignature,
			Nonce:           req.Nonce,
			Deadline:        req.Deadline,
			PermitNonce:     req.PermitNonce,
			PermitDeadline:  req.PermitDeadline,
		})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true})
}
