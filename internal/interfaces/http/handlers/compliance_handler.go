package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/infrastructure/gateway"
	"easy-invoice.backend/internal/interfaces/http/middleware"
	"easy-invoice.backend/internal/interfaces/http/response"
)

type ComplianceService interface {
	SubmitComplianceInfo(ctx context.Context, user *entities.User, profile *gateway.PayerProfile) error
	GetComplianceStatus(ctx context.Context, email string) (*entities.ComplianceStatus, error)
	UpdateAgreementStatus(ctx context.Context, email string) error
	CreatePaymentDetails(ctx context.Context, userID uuid.UUID, details *entities.PaymentDetails) (*entities.PaymentDetails, error)
	GetPaymentDetails(ctx context.Context, userID uuid.UUID) ([]*entities.PaymentDetails, error)
	AllowPaymentDetails(ctx context.Context, ownerID, paymentDetailsID uuid.UUID, payerEmail string) (*entities.PaymentDetailsPayer, error)
}

// ComplianceHandler handles compliance and payment-details endpoints
type ComplianceHandler struct {
	complianceUsecase ComplianceService
}

// NewComplianceHandler creates a new compliance handler
func NewComplianceHandler(complianceUsecase ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{complianceUsecase: complianceUsecase}
}

type complianceProfileRequest struct {
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	BeneficiaryType string `json:"beneficiaryType" binding:"required"`
	BusinessName    string `json:"businessName"`
	AddressLine1    string `json:"addressLine1" binding:"required"`
	AddressLine2    string `json:"addressLine2"`
	City            string `json:"city" binding:"required"`
	State           string `json:"state"`
	PostalCode      string `json:"postalCode" binding:"required"`
	Country         string `json:"country" binding:"required"`
	Nationality     string `json:"nationality"`
	Phone           string `json:"phone"`
	DateOfBirth     string `json:"dateOfBirth"`
	SSN             string `json:"ssn"`
}

// SubmitComplianceInfo creates the payer compliance profile
// POST /api/v1/compliance
func (h *ComplianceHandler) SubmitComplianceInfo(c *gin.Context) {
	var req complianceProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	err := h.complianceUsecase.SubmitComplianceInfo(c.Request.Context(), user, &gateway.PayerProfile{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		BusinessName:    req.BusinessName,
		BeneficiaryType: req.BeneficiaryType,
		AddressLine1:    req.AddressLine1,
		AddressLine2:    req.AddressLine2,
		City:            req.City,
		State:           req.State,
		PostalCode:      req.PostalCode,
		Country:         req.Country,
		Nationality:     req.Nationality,
		Phone:           req.Phone,
		DateOfBirth:     req.DateOfBirth,
		SSN:             req.SSN,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"success": true})
}

// GetComplianceStatus returns the payer's compliance state
// GET /api/v1/compliance/status
func (h *ComplianceHandler) GetComplianceStatus(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	status, err := h.complianceUsecase.GetComplianceStatus(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, status)
}

// UpdateAgreementStatus marks the payer's agreement as signed
// PATCH /api/v1/compliance/agreement
func (h *ComplianceHandler) UpdateAgreementStatus(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	if err := h.complianceUsecase.UpdateAgreementStatus(c.Request.Context(), email); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true})
}

type createPaymentDetailsRequest struct {
	BankName        string `json:"bankName" binding:"required"`
	AccountName     string `json:"accountName" binding:"required"`
	BeneficiaryType string `json:"beneficiaryType" binding:"required"`
	AccountNumber   string `json:"accountNumber"`
	RoutingNumber   string `json:"routingNumber"`
	IBAN            string `json:"iban"`
	SwiftBic        string `json:"swiftBic"`
	SortCode        string `json:"sortCode"`
	AddressLine1    string `json:"addressLine1" binding:"required"`
	AddressLine2    string `json:"addressLine2"`
	City            string `json:"city" binding:"required"`
	State           string `json:"state"`
	PostalCode      string `json:"postalCode" binding:"required"`
	Country         string `json:"country" binding:"required"`
	Currency        string `json:"currency" binding:"required"`
	RailsType       string `json:"railsType"`
}

// CreatePaymentDetails stores a bank account for the user
// POST /api/v1/payment-details
func (h *ComplianceHandler) CreatePaymentDetails(c *gin.Context) {
	var req createPaymentDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	details, err := h.complianceUsecase.CreatePaymentDetails(c.Request.Context(), userID, &entities.PaymentDetails{
		BankName:        req.BankName,
		AccountName:     req.AccountName,
		BeneficiaryType: entities.BeneficiaryType(req.BeneficiaryType),
		AccountNumber:   null.NewString(req.AccountNumber, req.AccountNumber != ""),
		RoutingNumber:   null.NewString(req.RoutingNumber, req.RoutingNumber != ""),
		IBAN:            null.NewString(req.IBAN, req.IBAN != ""),
		SwiftBic:        null.NewString(req.SwiftBic, req.SwiftBic != ""),
		SortCode:        null.NewString(req.SortCode, req.SortCode != ""),
		AddressLine1:    req.AddressLine1,
		AddressLine2:    null.NewString(req.AddressLine2, req.AddressLine2 != ""),
		City:            req.City,
		State:           null.NewString(req.State, req.State != ""),
		PostalCode:      req.PostalCode,
		Country:         req.Country,
		Currency:        req.Currency,
		RailsType:       null.NewString(req.RailsType, req.RailsType != ""),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, details)
}

// GetPaymentDetails lists the user's bank accounts with payer links
// GET /api/v1/payment-details
func (h *ComplianceHandler) GetPaymentDetails(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	details, err := h.complianceUsecase.GetPaymentDetails(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"paymentDetails": details})
}

// AllowPaymentDetails shares a bank account with a payer
// POST /api/v1/payment-details/:id/allow
func (h *ComplianceHandler) AllowPaymentDetails(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid payment details ID"))
		return
	}

	var req struct {
		PayerEmail string `json:"payerEmail" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	link, err := h.complianceUsecase.AllowPaymentDetails(c.Request.Context(), userID, id, req.PayerEmail)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, link)
}
