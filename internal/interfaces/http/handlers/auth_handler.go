package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"easy-invoice.backend/internal/domain/entities"
	domainerrors "easy-invoice.backend/internal/domain/errors"
	"easy-invoice.backend/internal/interfaces/http/middleware"
	"easy-invoice.backend/internal/interfaces/http/response"
)

const stateCookieName = "easyinvoice_oauth_state"

type AuthService interface {
	LoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*entities.User, string, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler handles Google OAuth login and session endpoints
type AuthHandler struct {
	authUsecase AuthService
	frontendURL string
	sessionTTL  time.Duration
	secure      bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase AuthService, frontendURL string, sessionTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		frontendURL: frontendURL,
		sessionTTL:  sessionTTL,
		secure:      secure,
	}
}

// Login starts the Google OAuth flow
// GET /auth/google
func (h *AuthHandler) Login(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		response.Error(c, err)
		return
	}

	// The state round-trips through a short-lived cookie for CSRF protection.
	c.SetCookie(stateCookieName, state, int((10 * time.Minute).Seconds()), "/", "", h.secure, true)
	c.Redirect(http.StatusTemporaryRedirect, h.authUsecase.LoginURL(state))
}

// Callback finishes the Google OAuth flow and opens a session
// GET /auth/google/callback
func (h *AuthHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	expected, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || state != expected {
		response.Error(c, domainerrors.Unauthorized("oauth state mismatch"))
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/", "", h.secure, true)

	code := c.Query("code")
	if code == "" {
		response.Error(c, domainerrors.BadRequest("authorization code is required"))
		return
	}

	_, token, err := h.authUsecase.HandleCallback(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetCookie(middleware.SessionCookieName, token, int(h.sessionTTL.Seconds()), "/", "", h.secure, true)
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL)
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}
	response.Success(c, http.StatusOK, user)
}

// Logout invalidates the current session
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(middleware.SessionCookieName)
	if err == nil && token != "" {
		if err := h.authUsecase.Logout(c.Request.Context(), token); err != nil {
			response.Error(c, err)
			return
		}
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.secure, true)
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

func randomState() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
