package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/domain/repositories"
	"easy-invoice.backend/pkg/logger"
)

// Webhook event names delivered by the payments gateway.
const (
	EventPaymentConfirmed             = "payment.confirmed"
	EventSettlementInitiated          = "settlement.initiated"
	EventSettlementFailed             = "settlement.failed"
	EventSettlementBounced            = "settlement.bounced"
	EventSettlementInternalAssessment = "settlement.pending_internal_assessment"
	EventSettlementOngoingChecks      = "settlement.ongoing_checks"
	EventSettlementSendingFiat        = "settlement.sending_fiat"
	EventSettlementFiatSent           = "settlement.fiat_sent"
	EventRequestRecurring             = "request.recurring"
	EventComplianceUpdated            = "compliance.updated"
	EventPaymentDetailUpdated         = "payment_detail.updated"
)

// WebhookUsecase applies gateway webhook deliveries to local state. Events
// arrive unordered and may repeat, so every transition is idempotent or
// guarded against regressions. One delivery is one transaction.
type WebhookUsecase struct {
	invoiceRepo        repositories.InvoiceRepository
	userRepo           repositories.UserRepository
	paymentDetailsRepo repositories.PaymentDetailsRepository
	uow                repositories.UnitOfWork
}

// NewWebhookUsecase creates a new webhook usecase
func NewWebhookUsecase(
	invoiceRepo repositories.InvoiceRepository,
	userRepo repositories.UserRepository,
	paymentDetailsRepo repositories.PaymentDetailsRepository,
	uow repositories.UnitOfWork,
) *WebhookUsecase {
	return &WebhookUsecase{
		invoiceRepo:        invoiceRepo,
		userRepo:           userRepo,
		paymentDetailsRepo: paymentDetailsRepo,
		uow:                uow,
	}
}

// Deliveries are flat JSON objects; each event reads its own subset of the
// top-level fields.
type requestEventPayload struct {
	RequestID string `json:"requestId"`
}

// For request.recurring the gateway sends the spawned instance's id as
// requestId and points back at the series origin via originalRequestId.
type recurringEventPayload struct {
	RequestID         string `json:"requestId"`
	OriginalRequestID string `json:"originalRequestId"`
	PaymentReference  string `json:"paymentReference"`
}

type complianceEventPayload struct {
	ClientUserID    string `json:"clientUserId"`
	IsCompliant     bool   `json:"isCompliant"`
	KYCStatus       string `json:"kycStatus"`
	AgreementStatus string `json:"agreementStatus"`
}

type paymentDetailEventPayload struct {
	PaymentDetailsID string `json:"paymentDetailsId"`
	Status           string `json:"status"`
}

// settlementStatus maps offramp lifecycle events onto invoice statuses.
var settlementStatus = map[string]entities.InvoiceStatus{
	EventSettlementInitiated:          entities.InvoiceStatusOfframpInitiated,
	EventSettlementFailed:             entities.InvoiceStatusOfframpFailed,
	EventSettlementBounced:            entities.InvoiceStatusOfframpFailed,
	EventSettlementInternalAssessment: entities.InvoiceStatusOfframpPending,
	EventSettlementOngoingChecks:      entities.InvoiceStatusOfframpPending,
	EventSettlementSendingFiat:        entities.InvoiceStatusOfframpPending,
	EventSettlementFiatSent:           entities.InvoiceStatusPaid,
}

// ProcessEvent dispatches one verified webhook delivery. Unknown events are
// accepted as no-ops so new gateway event types never break deliveries.
func (u *WebhookUsecase) ProcessEvent(ctx context.Context, event string, body json.RawMessage) error {
	switch event {
	case EventPaymentConfirmed:
		return u.handlePaymentConfirmed(ctx, body)

	case EventRequestRecurring:
		return u.handleRecurring(ctx, body)

	case EventComplianceUpdated:
		return u.handleComplianceUpdated(ctx, body)

	case EventPaymentDetailUpdated:
		return u.handlePaymentDetailUpdated(ctx, body)

	default:
		if status, ok := settlementStatus[event]; ok {
			return u.handleSettlement(ctx, event, status, body)
		}
		logger.WithContext(ctx).Info("ignoring unknown webhook event",
			zap.String("event", event))
		return nil
	}
}

// handlePaymentConfirmed marks the invoice paid, or crypto_paid when the
// crypto leg of a crypto-to-fiat settlement confirmed and fiat is still
// pending. The branch reads the invoice row, not the delivery body.
func (u *WebhookUsecase) handlePaymentConfirmed(ctx context.Context, body json.RawMessage) error {
	var payload requestEventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domainerrors.BadRequest("malformed payment.confirmed payload")
	}

	return u.uow.Do(ctx, func(txCtx context.Context) error {
		invoice, err := u.invoiceRepo.GetByRequestID(txCtx, payload.RequestID)
		if err != nil {
			return err
		}

		status := entities.InvoiceStatusPaid
		if invoice.IsCryptoToFiat {
			status = entities.InvoiceStatusCryptoPaid
		}
		if err := u.invoiceRepo.UpdateStatusByRequestID(txCtx, payload.RequestID, status); err != nil {
			return err
		}

		logger.WithContext(txCtx).Info("payment confirmed",
			zap.String("request_id", payload.RequestID),
			zap.String("status", string(status)))
		return nil
	})
}

func (u *WebhookUsecase) handleSettlement(ctx context.Context, event string, status entities.InvoiceStatus, body json.RawMessage) error {
	var payload requestEventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domainerrors.BadRequest("malformed settlement payload")
	}

	return u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.invoiceRepo.UpdateStatusByRequestID(txCtx, payload.RequestID, status); err != nil {
			return err
		}
		logger.WithContext(txCtx).Info("settlement event applied",
			zap.String("event", event),
			zap.String("request_id", payload.RequestID),
			zap.String("status", string(status)))
		return nil
	})
}

// handleRecurring spawns the next instance of a recurring series. The new
// invoice keeps the series' term length in days, gets a fresh invoice
// number, and back-references the origin.
func (u *WebhookUsecase) handleRecurring(ctx context.Context, body json.RawMessage) error {
	var payload recurringEventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domainerrors.BadRequest("malformed request.recurring payload")
	}
	if payload.RequestID == "" {
		return domainerrors.BadRequest("request.recurring payload misses the new request id")
	}

	return u.uow.Do(ctx, func(txCtx context.Context) error {
		origin, err := u.invoiceRepo.GetByRequestID(txCtx, payload.OriginalRequestID)
		if err != nil {
			return err
		}
		if origin.IsRecurrenceStopped {
			logger.WithContext(txCtx).Warn("recurring event for a stopped series, skipping",
				zap.String("request_id", payload.OriginalRequestID))
			return nil
		}

		// Duplicate delivery: the spawned instance already exists.
		if _, err := u.invoiceRepo.GetByRequestID(txCtx, payload.RequestID); err == nil {
			logger.WithContext(txCtx).Warn("recurring instance already spawned, skipping",
				zap.String("new_request_id", payload.RequestID))
			return nil
		} else if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}

		now := time.Now().UTC()
		issued := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		due := issued.AddDate(0, 0, origin.TermDays())

		number, err := nextInvoiceNumber(txCtx, u.invoiceRepo, origin.UserID, now)
		if err != nil {
			return err
		}

		next := &entities.Invoice{
			ID:                       uuid.New(),
			UserID:                   origin.UserID,
			RequestID:                payload.RequestID,
			PaymentReference:         payload.PaymentReference,
			InvoiceNumber:            number,
			IssuedDate:               issued,
			DueDate:                  due,
			ClientName:               origin.ClientName,
			ClientEmail:              origin.ClientEmail,
			CreatorName:              origin.CreatorName,
			CreatorEmail:             origin.CreatorEmail,
			Items:                    origin.Items,
			Notes:                    origin.Notes,
			Amount:                   origin.Amount,
			InvoiceCurrency:          origin.InvoiceCurrency,
			PaymentCurrency:          origin.PaymentCurrency,
			Payee:                    origin.Payee,
			Status:                   entities.InvoiceStatusPending,
			OriginalRequestID:        null.StringFrom(origin.RequestID),
			OriginalPaymentReference: null.StringFrom(origin.PaymentReference),
			IsCryptoToFiat:           origin.IsCryptoToFiat,
			PaymentDetailsID:         origin.PaymentDetailsID,
			InvoicedTo:               origin.InvoicedTo,
		}
		if err := u.invoiceRepo.Create(txCtx, next); err != nil {
			return err
		}

		logger.WithContext(txCtx).Info("recurring invoice spawned",
			zap.String("origin_request_id", origin.RequestID),
			zap.String("new_request_id", next.RequestID),
			zap.String("invoice_number", next.InvoiceNumber))
		return nil
	})
}

// handleComplianceUpdated mirrors the payer's compliance state into the user
// row. A delivery for an unknown email is logged and acknowledged; failing
// it would only make the gateway redeliver forever.
func (u *WebhookUsecase) handleComplianceUpdated(ctx context.Context, body json.RawMessage) error {
	var payload complianceEventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domainerrors.BadRequest("malformed compliance.updated payload")
	}

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.userRepo.UpdateComplianceByEmail(txCtx, payload.ClientUserID,
			payload.IsCompliant,
			entities.KYCStatus(payload.KYCStatus),
			entities.AgreementStatus(payload.AgreementStatus))
	})
	if errors.Is(err, domainerrors.ErrNotFound) {
		logger.WithContext(ctx).Warn("compliance update for unknown user",
			zap.String("email", payload.ClientUserID))
		return nil
	}
	return err
}

// handlePaymentDetailUpdated moves a payer link through pending -> approved
// or pending -> rejected. Approved links never regress; a delivery matching
// no eligible link is logged and acknowledged.
func (u *WebhookUsecase) handlePaymentDetailUpdated(ctx context.Context, body json.RawMessage) error {
	var payload paymentDetailEventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domainerrors.BadRequest("malformed payment_detail.updated payload")
	}

	status := entities.PaymentDetailsStatus(payload.Status)
	if !status.IsValid() {
		return domainerrors.BadRequest("unknown payment detail status")
	}

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.paymentDetailsRepo.UpdatePayerLinkStatusByExternalID(txCtx, payload.PaymentDetailsID, status)
	})
	if errors.Is(err, domainerrors.ErrNotFound) {
		logger.WithContext(ctx).Warn("payment detail update matched no eligible link",
			zap.String("external_id", payload.PaymentDetailsID),
			zap.String("status", payload.Status))
		return nil
	}
	return err
}

// ProcessPaymentReference handles the secondary payment webhook: a bare
// payment reference confirming an on-chain payment.
func (u *WebhookUsecase) ProcessPaymentReference(ctx context.Context, paymentReference string) error {
	if paymentReference == "" {
		return domainerrors.BadRequest("payment reference is required")
	}
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.invoiceRepo.UpdateStatusByPaymentReference(txCtx, paymentReference, entities.InvoiceStatusPaid)
	})
}
