package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/infrastructure/models"
)

// PaymentDetailsRepositoryImpl implements PaymentDetailsRepository
type PaymentDetailsRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentDetailsRepository(db *gorm.DB) *PaymentDetailsRepositoryImpl {
	return &PaymentDetailsRepositoryImpl{db: db}
}

func (r *PaymentDetailsRepositoryImpl) Create(ctx context.Context, details *entities.PaymentDetails) error {
	m := &models.PaymentDetails{
		ID:              details.ID,
		UserID:          details.UserID,
		BankName:        details.BankName,
		AccountName:     details.AccountName,
		BeneficiaryType: string(details.BeneficiaryType),
		AccountNumber:   models.EncryptedText(details.AccountNumber.String),
		RoutingNumber:   models.EncryptedText(details.RoutingNumber.String),
		IBAN:            models.EncryptedText(details.IBAN.String),
		SwiftBic:        models.EncryptedText(details.SwiftBic.String),
		SortCode:        models.EncryptedText(details.SortCode.String),
		Currency:        details.Currency,
		RailsType:       details.RailsType.String,
		AddressLine1:    details.AddressLine1,
		AddressLine2:    details.AddressLine2.String,
		City:            details.City,
		State:           details.State.String,
		PostalCode:      details.PostalCode,
		Country:         details.Country,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *PaymentDetailsRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.PaymentDetails, error) {
	var m models.PaymentDetails
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	details := r.toEntity(&m)
	payers, err := r.payersFor(ctx, []uuid.UUID{m.ID})
	if err != nil {
		return nil, err
	}
	details.Payers = payers[m.ID]
	return details, nil
}

// ListByUserID returns the owner's payment details with payer links attached,
// including details that have no payers yet.
func (r *PaymentDetailsRepositoryImpl) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.PaymentDetails, error) {
	var ms []models.PaymentDetails
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ID)
	}
	payers, err := r.payersFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	var out []*entities.PaymentDetails
	for i := range ms {
		details := r.toEntity(&ms[i])
		details.Payers = payers[ms[i].ID]
		out = append(out, details)
	}
	return out, nil
}

func (r *PaymentDetailsRepositoryImpl) CreatePayerLink(ctx context.Context, link *entities.PaymentDetailsPayer) error {
	m := &models.PaymentDetailsPayer{
		ID:                      link.ID,
		PaymentDetailsID:        link.PaymentDetailsID,
		PayerID:                 link.PayerID,
		Status:                  string(link.Status),
		ExternalPaymentDetailID: link.ExternalPaymentDetailID,
		CreatedAt:               time.Now(),
		UpdatedAt:               time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *PaymentDetailsRepositoryImpl) GetPayerLink(ctx context.Context, paymentDetailsID, payerID uuid.UUID) (*entities.PaymentDetailsPayer, error) {
	var m models.PaymentDetailsPayer
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("payment_details_id = ? AND payer_id = ?", paymentDetailsID, payerID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return payerLinkToEntity(&m), nil
}

// UpdatePayerLinkStatusByExternalID updates the link for the external
// compliance id. Approved links are never downgraded, so redelivered or
// out-of-order webhooks cannot regress an approval.
func (r *PaymentDetailsRepositoryImpl) UpdatePayerLinkStatusByExternalID(ctx context.Context, externalID string, status entities.PaymentDetailsStatus) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.PaymentDetailsPayer{}).
		Where("external_payment_detail_id = ? AND status != ?", externalID, entities.PaymentDetailsApproved).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *PaymentDetailsRepositoryImpl) payersFor(ctx context.Context, detailIDs []uuid.UUID) (map[uuid.UUID][]*entities.PaymentDetailsPayer, error) {
	var ms []models.PaymentDetailsPayer
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("payment_details_id IN ?", detailIDs).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID][]*entities.PaymentDetailsPayer, len(detailIDs))
	for i := range ms {
		out[ms[i].PaymentDetailsID] = append(out[ms[i].PaymentDetailsID], payerLinkToEntity(&ms[i]))
	}
	return out, nil
}

func (r *PaymentDetailsRepositoryImpl) toEntity(m *models.PaymentDetails) *entities.PaymentDetails {
	return &entities.PaymentDetails{
		ID:              m.ID,
		UserID:          m.UserID,
		BankName:        m.BankName,
		AccountName:     m.AccountName,
		BeneficiaryType: entities.BeneficiaryType(m.BeneficiaryType),
		AccountNumber:   null.NewString(string(m.AccountNumber), m.AccountNumber != ""),
		RoutingNumber:   null.NewString(string(m.RoutingNumber), m.RoutingNumber != ""),
		IBAN:            null.NewString(string(m.IBAN), m.IBAN != ""),
		SwiftBic:        null.NewString(string(m.SwiftBic), m.SwiftBic != ""),
		SortCode:        null.NewString(string(m.SortCode), m.SortCode != ""),
		AddressLine1:    m.AddressLine1,
		AddressLine2:    null.NewString(m.AddressLine2, m.AddressLine2 != ""),
		City:            m.City,
		State:           null.NewString(m.State, m.State != ""),
		PostalCode:      m.PostalCode,
		Country:         m.Country,
		Currency:        m.Currency,
		RailsType:       null.NewString(m.RailsType, m.RailsType != ""),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func payerLinkToEntity(m *models.PaymentDetailsPayer) *entities.PaymentDetailsPayer {
	return &entities.PaymentDetailsPayer{
		ID:                      m.ID,
		PaymentDetailsID:        m.PaymentDetailsID,
		PayerID:                 m.PayerID,
		Status:                  entities.PaymentDetailsStatus(m.Status),
		ExternalPaymentDetailID: m.ExternalPaymentDetailID,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}
