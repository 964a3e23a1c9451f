package repositories

import (
	"context"
	"time"

	"easy-invoice.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// InvoiceRepository defines invoice ("request") data operations.
// Status updates are keyed by the external protocol identifiers because that
// is what webhook deliveries carry; an update matching zero rows returns
// ErrNotFound so a stale or bogus delivery never silently succeeds.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entities.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Invoice, error)
	GetByRequestID(ctx context.Context, requestID string) (*entities.Invoice, error)
	GetByPaymentReference(ctx context.Context, paymentReference string) (*entities.Invoice, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Invoice, int64, error)
	ListByInvoicedTo(ctx context.Context, email string, limit, offset int) ([]*entities.Invoice, int64, error)
	UpdateStatusByRequestID(ctx context.Context, requestID string, status entities.InvoiceStatus) error
	UpdateStatusByPaymentReference(ctx context.Context, paymentReference string, status entities.InvoiceStatus) error
	StopRecurrence(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	// CountSince counts a user's invoices created at or after the cutoff;
	// used for the per-user monthly invoice-number sequence.
	CountSince(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error)
}

// InvoiceMeRepository defines shareable invoice-me link operations
type InvoiceMeRepository interface {
	Create(ctx context.Context, link *entities.InvoiceMeLink) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.InvoiceMeLink, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.InvoiceMeLink, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}
