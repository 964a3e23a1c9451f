package repositories

import (
	"context"
	"time"

	"easy-invoice.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	// UpdateComplianceByEmail mirrors a compliance webhook into the user row.
	// Returns ErrNotFound when no user has that email.
	UpdateComplianceByEmail(ctx context.Context, email string, isCompliant bool, kyc entities.KYCStatus, agreement entities.AgreementStatus) error
	// UpdateAgreementStatus sets only the agreement status for a user by email.
	UpdateAgreementStatus(ctx context.Context, email string, agreement entities.AgreementStatus) error
}

// SessionRepository defines login session operations
type SessionRepository interface {
	Create(ctx context.Context, session *entities.Session) error
	GetByID(ctx context.Context, id string) (*entities.Session, error)
	UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
