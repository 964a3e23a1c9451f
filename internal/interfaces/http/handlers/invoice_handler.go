package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/infrastructure/gateway"
	"easy-invoice.backend/internal/interfaces/http/middleware"
	"easy-invoice.backend/internal/interfaces/http/response"
	"easy-invoice.backend/internal/usecases"
	"easy-invoice.backend/pkg/utils"
)

type InvoiceService interface {
	Create(ctx context.Context, userID uuid.UUID, input *usecases.CreateInvoiceInput) (*entities.Invoice, error)
	ListOwn(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.Invoice, utils.PaginationMeta, error)
	ListInvoicedToMe(ctx context.Context, email string, page, limit int) ([]*entities.Invoice, utils.PaginationMeta, error)
	GetOwn(ctx context.Context, userID, invoiceID uuid.UUID) (*entities.Invoice, error)
	GetByRequestID(ctx context.Context, requestID string) (*entities.Invoice, error)
	StopRecurrence(ctx context.Context, userID, invoiceID uuid.UUID) error
	GetPayDataByPaymentReference(ctx context.Context, paymentReference string, q gateway.PayDataQuery) (*entities.PayData, error)
}

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	invoiceUsecase InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceUsecase InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceUsecase: invoiceUsecase}
}

type invoiceItemRequest struct {
	Description string  `json:"description" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required"`
	Price       float64 `json:"price"`
}

type createInvoiceRequest struct {
	ClientName   string               `json:"clientName" binding:"required"`
	ClientEmail  string               `json:"clientEmail" binding:"required,email"`
	CreatorName  string               `json:"creatorName"`
	CreatorEmail string               `json:"creatorEmail"`
	Items        []invoiceItemRequest `json:"items" binding:"required"`
	Notes        string               `json:"notes"`

	IssuedDate time.Time `json:"issuedDate" binding:"required"`
	DueDate    time.Time `json:"dueDate" binding:"required"`

	InvoiceCurrency string `json:"invoiceCurrency" binding:"required"`
	PaymentCurrency string `json:"paymentCurrency" binding:"required"`
	Payee           string `json:"payee" binding:"required"`

	IsRecurring         bool       `json:"isRecurring"`
	RecurrenceStartDate *time.Time `json:"startDate"`
	RecurrenceFrequency string     `json:"frequency"`

	IsCryptoToFiat   bool   `json:"isCryptoToFiat"`
	PaymentDetailsID string `json:"paymentDetailsId"`
}

func (r *createInvoiceRequest) toInput(creatorName, creatorEmail string) *usecases.CreateInvoiceInput {
	items := make([]entities.InvoiceItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, entities.InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	input := &usecases.CreateInvoiceInput{
		ClientName:          r.ClientName,
		ClientEmail:         r.ClientEmail,
		CreatorName:         creatorName,
		CreatorEmail:        creatorEmail,
		Items:               items,
		Notes:               r.Notes,
		IssuedDate:          r.IssuedDate,
		DueDate:             r.DueDate,
		InvoiceCurrency:     r.InvoiceCurrency,
		PaymentCurrency:     r.PaymentCurrency,
		Payee:               r.Payee,
		IsRecurring:         r.IsRecurring,
		RecurrenceFrequency: entities.RecurrenceFrequency(r.RecurrenceFrequency),
		IsCryptoToFiat:      r.IsCryptoToFiat,
		PaymentDetailsID:    null.NewString(r.PaymentDetailsID, r.PaymentDetailsID != ""),
	}
	if r.RecurrenceStartDate != nil {
		input.RecurrenceStartDate = null.TimeFrom(*r.RecurrenceStartDate)
	}
	return input
}

// CreateInvoice creates a new invoice
// POST /api/v1/invoices
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	creatorName := req.CreatorName
	if creatorName == "" {
		creatorName = user.Name
	}
	creatorEmail := req.CreatorEmail
	if creatorEmail == "" {
		creatorEmail = user.Email
	}

	invoice, err := h.invoiceUsecase.Create(c.Request.Context(), user.ID, req.toInput(creatorName, creatorEmail))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, invoice)
}

// ListInvoices lists the user's own invoices
// GET /api/v1/invoices
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	page, limit := paginationQuery(c)
	invoices, meta, err := h.invoiceUsecase.ListOwn(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"invoices": invoices, "meta": meta})
}

// ListInvoicedToMe lists invoices addressed to the user via invoice-me
// GET /api/v1/invoices/invoiced-to-me
func (h *InvoiceHandler) ListInvoicedToMe(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	page, limit := paginationQuery(c)
	invoices, meta, err := h.invoiceUsecase.ListInvoicedToMe(c.Request.Context(), email, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"invoices": invoices, "meta": meta})
}

// GetInvoice gets one of the user's invoices by ID
// GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid invoice ID"))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	invoice, err := h.invoiceUsecase.GetOwn(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invoice)
}

// StopRecurrence halts a recurring invoice series
// POST /api/v1/invoices/:id/stop-recurrence
func (h *InvoiceHandler) StopRecurrence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid invoice ID"))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	if err := h.invoiceUsecase.StopRecurrence(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// GetRequest gets the public payment view of an invoice
// GET /api/v1/requests/:requestId
func (h *InvoiceHandler) GetRequest(c *gin.Context) {
	invoice, err := h.invoiceUsecase.GetByRequestID(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, invoice)
}

// GetPayData resolves the pay payload for the public payment page
// GET /api/v1/pay/:paymentReference
func (h *InvoiceHandler) GetPayData(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		response.Error(c, domainerrors.BadRequest("wallet is required"))
		return
	}

	payData, err := h.invoiceUsecase.GetPayDataByPaymentReference(c.Request.Context(),
		c.Param("paymentReference"), gateway.PayDataQuery{
			Wallet:           wallet,
			Chain:            c.Query("chain"),
			Token:            c.Query("token"),
			PaymentDetailsID: c.Query("paymentDetailsId"),
		})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, payData)
}

func paginationQuery(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	return page, limit
}
