package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/interfaces/http/middleware"
	"easy-invoice.backend/internal/interfaces/http/response"
	"easy-invoice.backend/internal/usecases"
)

type InvoiceMeService interface {
	CreateLink(ctx context.Context, userID uuid.UUID, label string) (*entities.InvoiceMeLink, error)
	ListLinks(ctx context.Context, userID uuid.UUID) ([]*entities.InvoiceMeLink, error)
	DeleteLink(ctx context.Context, id, userID uuid.UUID) error
	ResolveLink(ctx context.Context, id uuid.UUID) (*entities.InvoiceMeLink, error)
	CreateInvoiceForLink(ctx context.Context, linkID uuid.UUID, input *usecases.CreateInvoiceInput) (*entities.Invoice, error)
}

// InvoiceMeHandler handles shareable invoice-me link endpoints
type InvoiceMeHandler struct {
	invoiceMeUsecase InvoiceMeService
}

// NewInvoiceMeHandler creates a new invoice-me handler
func NewInvoiceMeHandler(invoiceMeUsecase InvoiceMeService) *InvoiceMeHandler {
	return &InvoiceMeHandler{invoiceMeUsecase: invoiceMeUsecase}
}

// CreateLink mints a new shareable link
// POST /api/v1/invoice-me
func (h *InvoiceMeHandler) CreateLink(c *gin.Context) {
	var req struct {
		Label string `json:"label" binding:"required"`
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

	link, err := h.invoiceMeUsecase.CreateLink(c.Request.Context(), userID, req.Label)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, link)
}

// ListLinks lists the user's links
// GET /api/v1/invoice-me
func (h *InvoiceMeHandler) ListLinks(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	links, err := h.invoiceMeUsecase.ListLinks(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"links": links})
}

// DeleteLink removes one of the user's links
// DELETE /api/v1/invoice-me/:id
func (h *InvoiceMeHandler) DeleteLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid link ID"))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	if err := h.invoiceMeUsecase.DeleteLink(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// ResolveLink is the public view of a link
// GET /api/v1/invoice-me/:id
func (h *InvoiceMeHandler) ResolveLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid link ID"))
		return
	}

	link, err := h.invoiceMeUsecase.ResolveLink(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, link)
}

// CreateInvoiceForLink lets a visitor invoice the link owner
// POST /api/v1/invoice-me/:id/invoices
func (h *InvoiceMeHandler) CreateInvoiceForLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid link ID"))
		return
	}

	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	if req.CreatorName == "" || req.CreatorEmail == "" {
		response.Error(c, domainerrors.BadRequest("creator name and email are required"))
		return
	}

	invoice, err := h.invoiceMeUsecase.CreateInvoiceForLink(c.Request.Context(), id,
		req.toInput(req.CreatorName, req.CreatorEmail))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, invoice)
}
