package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/domain/repositories"
	"easy-invoice.backend/internal/infrastructure/gateway"
	"easy-invoice.backend/pkg/logger"
	"easy-invoice.backend/pkg/redis"
)

// complianceStatusTTL bounds how stale a cached payer status may be. The
// frontend polls every 30s; caching for the same window absorbs the polls.
const complianceStatusTTL = 30 * time.Second

// ComplianceUsecase orchestrates payer onboarding (KYC + agreement) and the
// bank-account payment details that gate crypto-to-fiat settlement.
type ComplianceUsecase struct {
	userRepo           repositories.UserRepository
	paymentDetailsRepo repositories.PaymentDetailsRepository
	compliance         ComplianceGateway
	cacheEnabled       bool
}

// NewComplianceUsecase creates a new compliance usecase
func NewComplianceUsecase(
	userRepo repositories.UserRepository,
	paymentDetailsRepo repositories.PaymentDetailsRepository,
	compliance ComplianceGateway,
	cacheEnabled bool,
) *ComplianceUsecase {
	return &ComplianceUsecase{
		userRepo:           userRepo,
		paymentDetailsRepo: paymentDetailsRepo,
		compliance:         compliance,
		cacheEnabled:       cacheEnabled,
	}
}

// SubmitComplianceInfo creates the payer's compliance profile, kicking off
// KYC, and marks the local user accordingly.
func (u *ComplianceUsecase) SubmitComplianceInfo(ctx context.Context, user *entities.User, profile *gateway.PayerProfile) error {
	profile.Email = user.Email
	if err := u.compliance.CreatePayer(ctx, profile); err != nil {
		return err
	}

	user.KYCStatus = entities.KYCInitiated
	user.AgreementStatus = entities.AgreementPending
	if err := u.userRepo.Update(ctx, user); err != nil {
		return err
	}

	u.invalidateStatusCache(ctx, user.Email)
	logger.WithContext(ctx).Info("compliance profile submitted",
		zap.String("user_id", user.ID.String()))
	return nil
}

// GetComplianceStatus returns the payer's current compliance state, cached
// briefly to absorb the frontend's polling. Unknown payers get the
// not_started defaults.
func (u *ComplianceUsecase) GetComplianceStatus(ctx context.Context, email string) (*entities.ComplianceStatus, error) {
	if cached := u.cachedStatus(ctx, email); cached != nil {
		return cached, nil
	}

	status, err := u.compliance.GetPayerStatus(ctx, email)
	if err != nil {
		return nil, err
	}

	u.storeStatusCache(ctx, email, status)
	return status, nil
}

// UpdateAgreementStatus marks the payer's agreement as signed, gateway
// first so local state never runs ahead of the provider.
func (u *ComplianceUsecase) UpdateAgreementStatus(ctx context.Context, email string) error {
	if err := u.compliance.UpdatePayer(ctx, email, true); err != nil {
		return err
	}
	if err := u.userRepo.UpdateAgreementStatus(ctx, email, entities.AgreementCompleted); err != nil {
		return err
	}
	u.invalidateStatusCache(ctx, email)
	return nil
}

// CreatePaymentDetails stores a bank account for the user. Sensitive
// columns are encrypted by the persistence layer.
func (u *ComplianceUsecase) CreatePaymentDetails(ctx context.Context, userID uuid.UUID, details *entities.PaymentDetails) (*entities.PaymentDetails, error) {
	if details.BankName == "" || details.AccountName == "" {
		return nil, domainerrors.BadRequest("bank name and account name are required")
	}
	if details.BeneficiaryType != entities.BeneficiaryIndividual &&
		details.BeneficiaryType != entities.BeneficiaryBusiness {
		return nil, domainerrors.BadRequest("invalid beneficiary type")
	}
	if !details.AccountNumber.Valid && !details.IBAN.Valid {
		return nil, domainerrors.BadRequest("an account number or IBAN is required")
	}

	details.ID = uuid.New()
	details.UserID = userID
	if err := u.paymentDetailsRepo.Create(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}

// GetPaymentDetails lists the owner's bank accounts with payer links.
func (u *ComplianceUsecase) GetPaymentDetails(ctx context.Context, userID uuid.UUID) ([]*entities.PaymentDetails, error) {
	return u.paymentDetailsRepo.ListByUserID(ctx, userID)
}

// AllowPaymentDetails registers the owner's bank account with the provider
// on behalf of a payer, creating a pending payer link. The payer must exist
// and be compliant; approval later arrives by webhook.
func (u *ComplianceUsecase) AllowPaymentDetails(ctx context.Context, ownerID, paymentDetailsID uuid.UUID, payerEmail string) (*entities.PaymentDetailsPayer, error) {
	details, err := u.paymentDetailsRepo.GetByID(ctx, paymentDetailsID)
	if err != nil {
		return nil, err
	}
	if details.UserID != ownerID {
		return nil, domainerrors.ErrNotFound
	}

	payer, err := u.userRepo.GetByEmail(ctx, payerEmail)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("payer is not registered")
		}
		return nil, err
	}
	if !payer.IsCompliant {
		return nil, domainerrors.NewAppError(403, "payer has not completed compliance",
			domainerrors.ErrNotCompliant)
	}

	if _, err := u.paymentDetailsRepo.GetPayerLink(ctx, paymentDetailsID, payer.ID); err == nil {
		return nil, domainerrors.Conflict("payer already has access to these payment details")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	externalID, err := u.compliance.CreatePayerPaymentDetail(ctx, &gateway.PayerPaymentDetail{
		PayerEmail:      payerEmail,
		BankName:        details.BankName,
		AccountName:     details.AccountName,
		BeneficiaryType: string(details.BeneficiaryType),
		AccountNumber:   details.AccountNumber.String,
		RoutingNumber:   details.RoutingNumber.String,
		IBAN:            details.IBAN.String,
		SwiftBic:        details.SwiftBic.String,
		SortCode:        details.SortCode.String,
		Currency:        details.Currency,
		RailsType:       details.RailsType.String,
		AddressLine1:    details.AddressLine1,
		AddressLine2:    details.AddressLine2.String,
		City:            details.City,
		State:           details.State.String,
		PostalCode:      details.PostalCode,
		Country:         details.Country,
	})
	if err != nil {
		return nil, err
	}

	link := &entities.PaymentDetailsPayer{
		ID:                      uuid.New(),
		PaymentDetailsID:        paymentDetailsID,
		PayerID:                 payer.ID,
		Status:                  entities.PaymentDetailsPending,
		ExternalPaymentDetailID: externalID,
	}
	if err := u.paymentDetailsRepo.CreatePayerLink(ctx, link); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("payment details shared with payer",
		zap.String("payment_details_id", paymentDetailsID.String()),
		zap.String("payer_id", payer.ID.String()),
		zap.String("external_id", externalID))
	return link, nil
}

func complianceStatusKey(email string) string {
	return "compliance:status:" + email
}

func (u *ComplianceUsecase) cachedStatus(ctx context.Context, email string) *entities.ComplianceStatus {
	if !u.cacheEnabled {
		return nil
	}
	raw, err := redis.Get(ctx, complianceStatusKey(email))
	if err != nil {
		return nil
	}
	var status entities.ComplianceStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil
	}
	return &status
}

func (u *ComplianceUsecase) storeStatusCache(ctx context.Context, email string, status *entities.ComplianceStatus) {
	if !u.cacheEnabled {
		return
	}
	encoded, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := redis.Set(ctx, complianceStatusKey(email), string(encoded), complianceStatusTTL); err != nil {
		logger.WithContext(ctx).Warn("compliance status cache write failed", zap.Error(err))
	}
}

func (u *ComplianceUsecase) invalidateStatusCache(ctx context.Context, email string) {
	if !u.cacheEnabled {
		return
	}
	if err := redis.Del(ctx, complianceStatusKey(email)); err != nil {
		logger.WithContext(ctx).Warn("compliance status cache invalidation failed", zap.Error(err))
	}
}
