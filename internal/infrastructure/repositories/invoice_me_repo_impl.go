package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/infrastructure/models"
)

// InvoiceMeRepositoryImpl implements InvoiceMeRepository
type InvoiceMeRepositoryImpl struct {
	db *gorm.DB
}

func NewInvoiceMeRepository(db *gorm.DB) *InvoiceMeRepositoryImpl {
	return &InvoiceMeRepositoryImpl{db: db}
}

func (r *InvoiceMeRepositoryImpl) Create(ctx context.Context, link *entities.InvoiceMeLink) error {
	m := &models.InvoiceMeLink{
		ID:        link.ID,
		UserID:    link.UserID,
		Label:     link.Label,
		CreatedAt: time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetByID loads a link joined with its owner's identity for the public
// resolve view.
func (r *InvoiceMeRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.InvoiceMeLink, error) {
	var row struct {
		models.InvoiceMeLink
		OwnerName  string
		OwnerEmail string
	}

	err := GetDB(ctx, r.db).WithContext(ctx).
		Table("easyinvoice_invoice_me_links").
		Select("easyinvoice_invoice_me_links.*, u.name AS owner_name, u.email AS owner_email").
		Joins("JOIN easyinvoice_users u ON u.id = easyinvoice_invoice_me_links.user_id AND u.deleted_at IS NULL").
		Where("easyinvoice_invoice_me_links.id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	return &entities.InvoiceMeLink{
		ID:         row.ID,
		UserID:     row.UserID,
		Label:      row.Label,
		CreatedAt:  row.CreatedAt,
		OwnerName:  row.OwnerName,
		OwnerEmail: row.OwnerEmail,
	}, nil
}

func (r *InvoiceMeRepositoryImpl) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.InvoiceMeLink, error) {
	var ms []models.InvoiceMeLink
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var links []*entities.InvoiceMeLink
	for _, m := range ms {
		links = append(links, &entities.InvoiceMeLink{
			ID:        m.ID,
			UserID:    m.UserID,
			Label:     m.Label,
			CreatedAt: m.CreatedAt,
		})
	}
	return links, nil
}

func (r *InvoiceMeRepositoryImpl) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Delete(&models.InvoiceMeLink{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}
