package repositories

import (
	"context"

	"easy-invoice.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// PaymentDetailsRepository defines bank-account payment-details operations
type PaymentDetailsRepository interface {
	Create(ctx context.Context, details *entities.PaymentDetails) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.PaymentDetails, error)
	// ListByUserID returns the owner's payment details with payer links
	// attached, including details that have no payers yet.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.PaymentDetails, error)

	CreatePayerLink(ctx context.Context, link *entities.PaymentDetailsPayer) error
	GetPayerLink(ctx context.Context, paymentDetailsID, payerID uuid.UUID) (*entities.PaymentDetailsPayer, error)
	// UpdatePayerLinkStatusByExternalID updates the link for the external
	// compliance id unless it is already approved (approved links are never
	// downgraded). Returns ErrNotFound when no eligible link matched.
	UpdatePayerLinkStatusByExternalID(ctx context.Context, externalID string, status entities.PaymentDetailsStatus) error
}
