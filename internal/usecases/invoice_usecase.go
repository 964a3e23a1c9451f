package usecases

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/domain/repositories"
	"easy-invoice.backend/internal/infrastructure/gateway"
	"easy-invoice.backend/pkg/logger"
	"easy-invoice.backend/pkg/utils"
)

// CreateInvoiceInput is the validated payload for invoice creation.
type CreateInvoiceInput struct {
	ClientName   string
	ClientEmail  string
	CreatorName  string
	CreatorEmail string
	Items        []entities.InvoiceItem
	Notes        string

	IssuedDate time.Time
	DueDate    time.Time

	InvoiceCurrency string
	PaymentCurrency string
	Payee           string

	IsRecurring         bool
	RecurrenceStartDate null.Time
	RecurrenceFrequency entities.RecurrenceFrequency

	IsCryptoToFiat   bool
	PaymentDetailsID null.String

	// Set by the invoice-me flow, never by the caller directly.
	InvoicedTo null.String
}

// InvoiceUsecase handles invoice creation and lifecycle queries.
type InvoiceUsecase struct {
	invoiceRepo repositories.InvoiceRepository
	network     RequestNetworkGateway
}

// NewInvoiceUsecase creates a new invoice usecase
func NewInvoiceUsecase(invoiceRepo repositories.InvoiceRepository, network RequestNetworkGateway) *InvoiceUsecase {
	return &InvoiceUsecase{
		invoiceRepo: invoiceRepo,
		network:     network,
	}
}

// Create validates the input, registers the request with the payments
// gateway, and persists the invoice. A gateway failure aborts before
// anything is written locally.
func (u *InvoiceUsecase) Create(ctx context.Context, userID uuid.UUID, input *CreateInvoiceInput) (*entities.Invoice, error) {
	if err := validateCreateInvoiceInput(input); err != nil {
		return nil, err
	}

	amount := entities.TotalAmount(input.Items)

	params := gateway.CreateRequestParams{
		Amount:          strconv.FormatFloat(amount, 'f', -1, 64),
		Payee:           input.Payee,
		InvoiceCurrency: input.InvoiceCurrency,
		PaymentCurrency: input.PaymentCurrency,
		IsCryptoToFiat:  input.IsCryptoToFiat,
	}
	if input.IsCryptoToFiat {
		params.PaymentDetailsID = input.PaymentDetailsID.String
	}
	if input.IsRecurring {
		params.Recurrence = &gateway.RecurrenceParams{
			StartDate: input.RecurrenceStartDate.Time,
			Frequency: string(input.RecurrenceFrequency),
		}
	}

	created, err := u.network.CreateRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	number, err := u.NextInvoiceNumber(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}

	invoice := &entities.Invoice{
		ID:                  uuid.New(),
		UserID:              userID,
		RequestID:           created.RequestID,
		PaymentReference:    created.PaymentReference,
		InvoiceNumber:       number,
		IssuedDate:          input.IssuedDate,
		DueDate:             input.DueDate,
		ClientName:          input.ClientName,
		ClientEmail:         input.ClientEmail,
		CreatorName:         input.CreatorName,
		CreatorEmail:        input.CreatorEmail,
		Items:               input.Items,
		Notes:               input.Notes,
		Amount:              amount,
		InvoiceCurrency:     input.InvoiceCurrency,
		PaymentCurrency:     input.PaymentCurrency,
		Payee:               input.Payee,
		Status:              entities.InvoiceStatusPending,
		IsRecurring:         input.IsRecurring,
		RecurrenceStartDate: input.RecurrenceStartDate,
		RecurrenceFrequency: input.RecurrenceFrequency,
		IsCryptoToFiat:      input.IsCryptoToFiat,
		PaymentDetailsID:    input.PaymentDetailsID,
		InvoicedTo:          input.InvoicedTo,
	}
	if err := u.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("request_id", invoice.RequestID),
		zap.String("invoice_number", invoice.InvoiceNumber))
	return invoice, nil
}

func validateCreateInvoiceInput(input *CreateInvoiceInput) error {
	if len(input.Items) == 0 {
		return domainerrors.BadRequest("invoice needs at least one line item")
	}
	for _, item := range input.Items {
		if item.Description == "" {
			return domainerrors.BadRequest("line item description is required")
		}
		if item.Quantity <= 0 {
			return domainerrors.BadRequest("line item quantity must be positive")
		}
		if item.Price < 0 {
			return domainerrors.BadRequest("line item price cannot be negative")
		}
	}
	if !entities.IsInvoiceCurrency(input.InvoiceCurrency) {
		return domainerrors.BadRequest(fmt.Sprintf("unsupported invoice currency %q", input.InvoiceCurrency))
	}
	if !entities.IsValidPaymentCurrency(input.InvoiceCurrency, input.PaymentCurrency) {
		return domainerrors.BadRequest(fmt.Sprintf("payment currency %q not allowed for %q",
			input.PaymentCurrency, input.InvoiceCurrency))
	}
	if !common.IsHexAddress(input.Payee) {
		return domainerrors.BadRequest("payee must be a valid EVM address")
	}
	if input.DueDate.Before(input.IssuedDate) {
		return domainerrors.BadRequest("due date cannot precede issue date")
	}
	if input.IsRecurring {
		if !input.RecurrenceFrequency.IsValid() {
			return domainerrors.BadRequest("invalid recurrence frequency")
		}
		if !input.RecurrenceStartDate.Valid {
			return domainerrors.BadRequest("recurrence start date is required")
		}
	}
	if input.IsCryptoToFiat && !input.PaymentDetailsID.Valid {
		return domainerrors.BadRequest("crypto-to-fiat invoices need payment details")
	}
	return nil
}

// NextInvoiceNumber computes the per-user monthly sequence number,
// formatted "YYYYMM-NNNN". The sequence resets each calendar month.
func (u *InvoiceUsecase) NextInvoiceNumber(ctx context.Context, userID uuid.UUID, now time.Time) (string, error) {
	return nextInvoiceNumber(ctx, u.invoiceRepo, userID, now)
}

func nextInvoiceNumber(ctx context.Context, repo repositories.InvoiceRepository, userID uuid.UUID, now time.Time) (string, error) {
	utc := now.UTC()
	monthStart := time.Date(utc.Year(), utc.Month(), 1, 0, 0, 0, 0, time.UTC)
	count, err := repo.CountSince(ctx, userID, monthStart)
	if err != nil {
		return "", err
	}
	return entities.FormatInvoiceNumber(now, int(count)+1), nil
}

// ListOwn returns the user's invoices, newest first.
func (u *InvoiceUsecase) ListOwn(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.Invoice, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	invoices, total, err := u.invoiceRepo.ListByUserID(ctx, userID, sqlLimit(params.Limit), params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return invoices, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// ListInvoicedToMe returns invoices addressed to the user via invoice-me.
func (u *InvoiceUsecase) ListInvoicedToMe(ctx context.Context, email string, page, limit int) ([]*entities.Invoice, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	invoices, total, err := u.invoiceRepo.ListByInvoicedTo(ctx, email, sqlLimit(params.Limit), params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return invoices, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// GetOwn fetches an invoice and enforces ownership.
func (u *InvoiceUsecase) GetOwn(ctx context.Context, userID, invoiceID uuid.UUID) (*entities.Invoice, error) {
	invoice, err := u.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.UserID != userID {
		return nil, domainerrors.ErrNotFound
	}
	return invoice, nil
}

// GetByRequestID fetches the public payment view of an invoice.
func (u *InvoiceUsecase) GetByRequestID(ctx context.Context, requestID string) (*entities.Invoice, error) {
	return u.invoiceRepo.GetByRequestID(ctx, requestID)
}

// StopRecurrence halts a recurring series, gateway first so a gateway
// failure leaves the local flag untouched.
func (u *InvoiceUsecase) StopRecurrence(ctx context.Context, userID, invoiceID uuid.UUID) error {
	invoice, err := u.GetOwn(ctx, userID, invoiceID)
	if err != nil {
		return err
	}
	if !invoice.IsRecurring {
		return domainerrors.BadRequest("invoice is not recurring")
	}
	if invoice.IsRecurrenceStopped {
		return domainerrors.NewAppError(409, "recurrence already stopped", domainerrors.ErrRecurrenceStopped)
	}

	if err := u.network.StopRecurrence(ctx, invoice.RequestID); err != nil {
		return err
	}
	return u.invoiceRepo.StopRecurrence(ctx, invoiceID, userID)
}

// GetPayDataByPaymentReference resolves the pay payload for the public
// payment page.
func (u *InvoiceUsecase) GetPayDataByPaymentReference(ctx context.Context, paymentReference string, q gateway.PayDataQuery) (*entities.PayData, error) {
	invoice, err := u.invoiceRepo.GetByPaymentReference(ctx, paymentReference)
	if err != nil {
		return nil, err
	}
	if invoice.IsCryptoToFiat && q.PaymentDetailsID == "" {
		q.PaymentDetailsID = invoice.PaymentDetailsID.String
	}
	return u.network.GetPayData(ctx, invoice.RequestID, q)
}

// sqlLimit maps the pagination convention (0 = everything) onto GORM's
// convention (negative = no limit).
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
