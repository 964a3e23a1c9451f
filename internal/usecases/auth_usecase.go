package usecases

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/domain/repositories"
	"easy-invoice.backend/pkg/googleauth"
	"easy-invoice.backend/pkg/logger"
)

// GoogleAuthService is the slice of pkg/googleauth the auth usecase needs.
type GoogleAuthService interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
	VerifyIDToken(ctx context.Context, rawToken string) (*googleauth.IDTokenClaims, error)
}

// AuthUsecase handles Google OAuth login and DB-backed sessions.
type AuthUsecase struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	google      GoogleAuthService
	sessionTTL  time.Duration
	renewWithin time.Duration
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	google GoogleAuthService,
	sessionTTL time.Duration,
	renewWithin time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		google:      google,
		sessionTTL:  sessionTTL,
		renewWithin: renewWithin,
	}
}

// LoginURL returns the Google consent URL for the given anti-CSRF state.
func (u *AuthUsecase) LoginURL(state string) string {
	return u.google.AuthURL(state)
}

// HandleCallback finishes the OAuth flow: exchanges the code, verifies the
// ID token, upserts the user and opens a session. The returned token is the
// browser-side session secret; only its hash is stored.
func (u *AuthUsecase) HandleCallback(ctx context.Context, code string) (*entities.User, string, error) {
	idToken, err := u.google.Exchange(ctx, code)
	if err != nil {
		return nil, "", domainerrors.Unauthorized("google code exchange failed")
	}

	claims, err := u.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, "", domainerrors.Unauthorized("invalid google id token")
	}
	if !claims.EmailVerified {
		return nil, "", domainerrors.Unauthorized("google account email is not verified")
	}

	user, err := u.upsertUser(ctx, claims)
	if err != nil {
		return nil, "", err
	}

	token, err := NewSessionToken()
	if err != nil {
		return nil, "", err
	}
	session := &entities.Session{
		ID:        HashSessionToken(token),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(u.sessionTTL),
	}
	if err := u.sessionRepo.Create(ctx, session); err != nil {
		return nil, "", err
	}

	logger.WithContext(ctx).Info("user logged in",
		zap.String("user_id", user.ID.String()))
	return user, token, nil
}

func (u *AuthUsecase) upsertUser(ctx context.Context, claims *googleauth.IDTokenClaims) (*entities.User, error) {
	user, err := u.userRepo.GetByGoogleID(ctx, claims.Subject)
	if err == nil {
		if user.Name != claims.Name && claims.Name != "" {
			user.Name = claims.Name
			if err := u.userRepo.Update(ctx, user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	user = &entities.User{
		ID:              uuid.New(),
		GoogleID:        claims.Subject,
		Email:           claims.Email,
		Name:            claims.Name,
		KYCStatus:       entities.KYCNotStarted,
		AgreementStatus: entities.AgreementNotStarted,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate resolves a session token to its user. Sessions close to
// expiry are renewed for a full TTL (sliding window).
func (u *AuthUsecase) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	session, err := u.sessionRepo.GetByID(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrUnauthorized
		}
		return nil, err
	}

	now := time.Now()
	if session.Expired(now) {
		_ = u.sessionRepo.Delete(ctx, session.ID)
		return nil, domainerrors.ErrSessionExpired
	}

	if session.ExpiresAt.Sub(now) < u.renewWithin {
		if err := u.sessionRepo.UpdateExpiry(ctx, session.ID, now.Add(u.sessionTTL)); err != nil {
			logger.WithContext(ctx).Warn("session renewal failed", zap.Error(err))
		}
	}

	return u.userRepo.GetByID(ctx, session.UserID)
}

// Logout invalidates the session for the given token.
func (u *AuthUsecase) Logout(ctx context.Context, token string) error {
	return u.sessionRepo.Delete(ctx, HashSessionToken(token))
}

// NewSessionToken generates the opaque browser-side session secret.
func NewSessionToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// HashSessionToken derives the stored session id from a token, so a leaked
// sessions table exposes no usable tokens.
func HashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
