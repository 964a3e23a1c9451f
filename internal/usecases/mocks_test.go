package usecases_test

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"easy-invoice.backend/internal/domain/entities"
	"easy-invoice.backend/internal/infrastructure/gateway"
	"easy-invoice.backend/pkg/googleauth"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*entities.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateComplianceByEmail(ctx context.Context, email string, isCompliant bool, kyc entities.KYCStatus, agreement entities.AgreementStatus) error {
	args := m.Called(ctx, email, isCompliant, kyc, agreement)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAgreementStatus(ctx context.Context, email string, agreement entities.AgreementStatus) error {
	args := m.Called(ctx, email, agreement)
	return args.Error(0)
}

// Mock SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *entities.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*entities.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionRepository) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	args := m.Called(ctx, id, expiresAt)
	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Mock InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *entities.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetByRequestID(ctx context.Context, requestID string) (*entities.Invoice, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetByPaymentReference(ctx context.Context, paymentReference string) (*entities.Invoice, error) {
	args := m.Called(ctx, paymentReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Invoice, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	var invoices []*entities.Invoice
	if args.Get(0) != nil {
		invoices = args.Get(0).([]*entities.Invoice)
	}
	return invoices, args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) ListByInvoicedTo(ctx context.Context, email string, limit, offset int) ([]*entities.Invoice, int64, error) {
	args := m.Called(ctx, email, limit, offset)
	var invoices []*entities.Invoice
	if args.Get(0) != nil {
		invoices = args.Get(0).([]*entities.Invoice)
	}
	return invoices, args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) UpdateStatusByRequestID(ctx context.Context, requestID string, status entities.InvoiceStatus) error {
	args := m.Called(ctx, requestID, status)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateStatusByPaymentReference(ctx context.Context, paymentReference string, status entities.InvoiceStatus) error {
	args := m.Called(ctx, paymentReference, status)
	return args.Error(0)
}

func (m *MockInvoiceRepository) StopRecurrence(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CountSince(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, userID, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// Mock InvoiceMeRepository
type MockInvoiceMeRepository struct {
	mock.Mock
}

func (m *MockInvoiceMeRepository) Create(ctx context.Context, link *entities.InvoiceMeLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockInvoiceMeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.InvoiceMeLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.InvoiceMeLink), args.Error(1)
}

func (m *MockInvoiceMeRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.InvoiceMeLink, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.InvoiceMeLink), args.Error(1)
}

func (m *MockInvoiceMeRepository) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// Mock PaymentDetailsRepository
type MockPaymentDetailsRepository struct {
	mock.Mock
}

func (m *MockPaymentDetailsRepository) Create(ctx context.Context, details *entities.PaymentDetails) error {
	args := m.Called(ctx, details)
	return args.Error(0)
}

func (m *MockPaymentDetailsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.PaymentDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymentDetails), args.Error(1)
}

func (m *MockPaymentDetailsRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.PaymentDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PaymentDetails), args.Error(1)
}

func (m *MockPaymentDetailsRepository) CreatePayerLink(ctx context.Context, link *entities.PaymentDetailsPayer) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockPaymentDetailsRepository) GetPayerLink(ctx context.Context, paymentDetailsID, payerID uuid.UUID) (*entities.PaymentDetailsPayer, error) {
	args := m.Called(ctx, paymentDetailsID, payerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymentDetailsPayer), args.Error(1)
}

func (m *MockPaymentDetailsRepository) UpdatePayerLinkStatusByExternalID(ctx context.Context, externalID string, status entities.PaymentDetailsStatus) error {
	args := m.Called(ctx, externalID, status)
	return args.Error(0)
}

// Mock RequestNetworkGateway
type MockRequestNetworkGateway struct {
	mock.Mock
}

func (m *MockRequestNetworkGateway) CreateRequest(ctx context.Context, params gateway.CreateRequestParams) (*gateway.CreateRequestResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.CreateRequestResult), args.Error(1)
}

func (m *MockRequestNetworkGateway) GetPayData(ctx context.Context, requestID string, q gateway.PayDataQuery) (*entities.PayData, error) {
	args := m.Called(ctx, requestID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PayData), args.Error(1)
}

func (m *MockRequestNetworkGateway) GetRoutes(ctx context.Context, paymentReference, wallet string) ([]*entities.PaymentRoute, error) {
	args := m.Called(ctx, paymentReference, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PaymentRoute), args.Error(1)
}

func (m *MockRequestNetworkGateway) StopRecurrence(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *MockRequestNetworkGateway) SubmitPaymentIntent(ctx context.Context, intentID string, payload *entities.SignedIntentPayload) error {
	args := m.Called(ctx, intentID, payload)
	return args.Error(0)
}

func (m *MockRequestNetworkGateway) Pay(ctx context.Context, params gateway.DirectPayParams) (*entities.PayData, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PayData), args.Error(1)
}

// Mock ComplianceGateway
type MockComplianceGateway struct {
	mock.Mock
}

func (m *MockComplianceGateway) CreatePayer(ctx context.Context, profile *gateway.PayerProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockComplianceGateway) UpdatePayer(ctx context.Context, email string, agreementCompleted bool) error {
	args := m.Called(ctx, email, agreementCompleted)
	return args.Error(0)
}

func (m *MockComplianceGateway) GetPayerStatus(ctx context.Context, email string) (*entities.ComplianceStatus, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ComplianceStatus), args.Error(1)
}

func (m *MockComplianceGateway) CreatePayerPaymentDetail(ctx context.Context, detail *gateway.PayerPaymentDetail) (string, error) {
	args := m.Called(ctx, detail)
	return args.String(0), args.Error(1)
}

// Mock GoogleAuthService
type MockGoogleAuth struct {
	mock.Mock
}

func (m *MockGoogleAuth) AuthURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockGoogleAuth) Exchange(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockGoogleAuth) VerifyIDToken(ctx context.Context, rawToken string) (*googleauth.IDTokenClaims, error) {
	args := m.Called(ctx, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*googleauth.IDTokenClaims), args.Error(1)
}

// Mock WalletSigner
type MockWalletSigner struct {
	mock.Mock
}

func (m *MockWalletSigner) Address() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockWalletSigner) ChainID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletSigner) SwitchChain(ctx context.Context, chainID int64) error {
	args := m.Called(ctx, chainID)
	return args.Error(0)
}

func (m *MockWalletSigner) SendTransaction(ctx context.Context, tx *entities.EvmTransaction) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

func (m *MockWalletSigner) SignTypedData(ctx context.Context, typedData apitypes.TypedData) (string, error) {
	args := m.Called(ctx, typedData)
	return args.String(0), args.Error(1)
}
