package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/infrastructure/models"
)

// InvoiceRepositoryImpl implements InvoiceRepository
type InvoiceRepositoryImpl struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepositoryImpl {
	return &InvoiceRepositoryImpl{db: db}
}

func (r *InvoiceRepositoryImpl) Create(ctx context.Context, invoice *entities.Invoice) error {
	itemsJSON, err := json.Marshal(invoice.Items)
	if err != nil {
		return fmt.Errorf("marshal invoice items: %w", err)
	}

	m := &models.Invoice{
		ID:                       invoice.ID,
		UserID:                   invoice.UserID,
		RequestID:                invoice.RequestID,
		PaymentReference:         invoice.PaymentReference,
		InvoiceNumber:            invoice.InvoiceNumber,
		IssuedDate:               invoice.IssuedDate,
		DueDate:                  invoice.DueDate,
		ClientName:               invoice.ClientName,
		ClientEmail:              invoice.ClientEmail,
		CreatorName:              invoice.CreatorName,
		CreatorEmail:             invoice.CreatorEmail,
		Items:                    string(itemsJSON),
		Notes:                    invoice.Notes,
		Amount:                   invoice.Amount,
		InvoiceCurrency:          invoice.InvoiceCurrency,
		PaymentCurrency:          invoice.PaymentCurrency,
		Payee:                    invoice.Payee,
		Status:                   string(invoice.Status),
		IsRecurring:              invoice.IsRecurring,
		RecurrenceFrequency:      string(invoice.RecurrenceFrequency),
		IsRecurrenceStopped:      invoice.IsRecurrenceStopped,
		OriginalRequestID:        invoice.OriginalRequestID.String,
		OriginalPaymentReference: invoice.OriginalPaymentReference.String,
		IsCryptoToFiat:           invoice.IsCryptoToFiat,
		PaymentDetailsID:         invoice.PaymentDetailsID.String,
		InvoicedTo:               invoice.InvoicedTo.String,
		CreatedAt:                time.Now(),
		UpdatedAt:                time.Now(),
	}
	if invoice.RecurrenceStartDate.Valid {
		start := invoice.RecurrenceStartDate.Time
		m.RecurrenceStartDate = &start
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *InvoiceRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Invoice, error) {
	var m models.Invoice
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

func (r *InvoiceRepositoryImpl) GetByRequestID(ctx context.Context, requestID string) (*entities.Invoice, error) {
	var m models.Invoice
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("request_id = ?", requestID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

func (r *InvoiceRepositoryImpl) GetByPaymentReference(ctx context.Context, paymentReference string) (*entities.Invoice, error) {
	var m models.Invoice
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("payment_reference = ?", paymentReference).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

func (r *InvoiceRepositoryImpl) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Invoice, int64, error) {
	return r.list(ctx, "user_id = ?", userID, limit, offset)
}

func (r *InvoiceRepositoryImpl) ListByInvoicedTo(ctx context.Context, email string, limit, offset int) ([]*entities.Invoice, int64, error) {
	return r.list(ctx, "invoiced_to = ?", email, limit, offset)
}

func (r *InvoiceRepositoryImpl) list(ctx context.Context, cond string, arg interface{}, limit, offset int) ([]*entities.Invoice, int64, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Invoice{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Invoice
	if err := db.Where(cond, arg).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var invoices []*entities.Invoice
	for i := range ms {
		inv, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, nil
}

func (r *InvoiceRepositoryImpl) UpdateStatusByRequestID(ctx context.Context, requestID string, status entities.InvoiceStatus) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Invoice{}).
		Where("request_id = ?", requestID).
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

func (r *InvoiceRepositoryImpl) UpdateStatusByPaymentReference(ctx context.Context, paymentReference string, status entities.InvoiceStatus) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Invoice{}).
		Where("payment_reference = ?", paymentReference).
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

// StopRecurrence flags a recurring series so no further instances spawn.
// Scoped to the owner so one user cannot stop another's series.
func (r *InvoiceRepositoryImpl) StopRecurrence(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ? AND user_id = ? AND is_recurring = ?", id, userID, true).
		Updates(map[string]interface{}{
			"is_recurrence_stopped": true,
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *InvoiceRepositoryImpl) CountSince(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Invoice{}).
		Where("user_id = ? AND created_at >= ?", userID, cutoff).
		Count(&count).Error
	return count, err
}

func (r *InvoiceRepositoryImpl) toEntity(m *models.Invoice) (*entities.Invoice, error) {
	var items []entities.InvoiceItem
	if m.Items != "" {
		if err := json.Unmarshal([]byte(m.Items), &items); err != nil {
			return nil, fmt.Errorf("unmarshal invoice items: %w", err)
		}
	}

	inv := &entities.Invoice{
		ID:                       m.ID,
		UserID:                   m.UserID,
		RequestID:                m.RequestID,
		PaymentReference:         m.PaymentReference,
		InvoiceNumber:            m.InvoiceNumber,
		IssuedDate:               m.IssuedDate,
		DueDate:                  m.DueDate,
		ClientName:               m.ClientName,
		ClientEmail:              m.ClientEmail,
		CreatorName:              m.CreatorName,
		CreatorEmail:             m.CreatorEmail,
		Items:                    items,
		Notes:                    m.Notes,
		Amount:                   m.Amount,
		InvoiceCurrency:          m.InvoiceCurrency,
		PaymentCurrency:          m.PaymentCurrency,
		Payee:                    m.Payee,
		Status:                   entities.InvoiceStatus(m.Status),
		IsRecurring:              m.IsRecurring,
		RecurrenceFrequency:      entities.RecurrenceFrequency(m.RecurrenceFrequency),
		IsRecurrenceStopped:      m.IsRecurrenceStopped,
		OriginalRequestID:        null.NewString(m.OriginalRequestID, m.OriginalRequestID != ""),
		OriginalPaymentReference: null.NewString(m.OriginalPaymentReference, m.OriginalPaymentReference != ""),
		IsCryptoToFiat:           m.IsCryptoToFiat,
		PaymentDetailsID:         null.NewString(m.PaymentDetailsID, m.PaymentDetailsID != ""),
		InvoicedTo:               null.NewString(m.InvoicedTo, m.InvoicedTo != ""),
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.UpdatedAt,
	}
	if m.RecurrenceStartDate != nil {
		inv.RecurrenceStartDate = null.TimeFrom(*m.RecurrenceStartDate)
	}
	return inv, nil
}
