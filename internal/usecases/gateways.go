package usecases

import (
	"context"

	"easy-invoice.backend/internal/domain/entities"
	"easy-invoice.backend/internal/infrastructure/gateway"
)

// RequestNetworkGateway is the slice of the Request Network API the usecases
// depend on. Satisfied by gateway.RequestNetworkClient.
type RequestNetworkGateway interface {
	CreateRequest(ctx context.Context, params gateway.CreateRequestParams) (*gateway.CreateRequestResult, error)
	GetPayData(ctx context.Context, requestID string, q gateway.PayDataQuery) (*entities.PayData, error)
	GetRoutes(ctx context.Context, paymentReference, wallet string) ([]*entities.PaymentRoute, error)
	StopRecurrence(ctx context.Context, requestID string) error
	SubmitPaymentIntent(ctx context.Context, intentID string, payload *entities.SignedIntentPayload) error
	Pay(ctx context.Context, params gateway.DirectPayParams) (*entities.PayData, error)
}

// ComplianceGateway is the compliance API surface. Satisfied by
// gateway.ComplianceClient.
type ComplianceGateway interface {
	CreatePayer(ctx context.Context, profile *gateway.PayerProfile) error
	UpdatePayer(ctx context.Context, email string, agreementCompleted bool) error
	GetPayerStatus(ctx context.Context, email string) (*entities.ComplianceStatus, error)
	CreatePayerPaymentDetail(ctx context.Context, detail *gateway.PayerPaymentDetail) (string, error)
}
