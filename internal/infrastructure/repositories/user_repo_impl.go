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

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	m := &models.User{
		ID:              user.ID,
		GoogleID:        user.GoogleID,
		Email:           user.Email,
		Name:            user.Name,
		KYCStatus:       string(user.KYCStatus),
		AgreementStatus: string(user.AgreementStatus),
		IsCompliant:     user.IsCompliant,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByGoogleID gets a user by their Google subject identifier
func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("google_id = ?", googleID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Update updates the mutable profile and compliance fields of a user
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":             user.Name,
			"kyc_status":       user.KYCStatus,
			"agreement_status": user.AgreementStatus,
			"is_compliant":     user.IsCompliant,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateComplianceByEmail mirrors a compliance webhook into the user row
func (r *UserRepository) UpdateComplianceByEmail(ctx context.Context, email string, isCompliant bool, kyc entities.KYCStatus, agreement entities.AgreementStatus) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"is_compliant":     isCompliant,
			"kyc_status":       kyc,
			"agreement_status": agreement,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateAgreementStatus sets only the agreement status for a user by email
func (r *UserRepository) UpdateAgreementStatus(ctx context.Context, email string, agreement entities.AgreementStatus) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"agreement_status": agreement,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) toEntity(m *models.User) *entities.User {
	u := &entities.User{
		ID:              m.ID,
		GoogleID:        m.GoogleID,
		Email:           m.Email,
		Name:            m.Name,
		KYCStatus:       entities.KYCStatus(m.KYCStatus),
		AgreementStatus: entities.AgreementStatus(m.AgreementStatus),
		IsCompliant:     m.IsCompliant,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		u.DeletedAt = null.TimeFrom(m.DeletedAt.Time)
	}
	return u
}

// SessionRepository implements login session operations
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *entities.Session) error {
	m := &models.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*entities.Session, error) {
	var m models.Session
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.Session{
		ID:        m.ID,
		UserID:    m.UserID,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}, nil
}

func (r *SessionRepository) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return GetDB(ctx, r.db).WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error
}

// DeleteExpired removes sessions past their expiry and returns how many went
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Delete(&models.Session{}, "expires_at < ?", time.Now())
	return result.RowsAffected, result.Error
}
