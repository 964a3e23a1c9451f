package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultJWKSURL  = "https://www.googleapis.com/oauth2/v3/certs"

	jwksRefreshInterval = time.Hour
)

var (
	ErrInvalidIDToken = errors.New("invalid google id token")
	ErrUnknownKeyID   = errors.New("id token signed with unknown key")
)

// IDTokenClaims are the Google ID-token claims this service cares about.
type IDTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// Service exchanges OAuth authorization codes and verifies Google ID tokens
// against Google's published JWKS.
type Service struct {
	clientID     string
	clientSecret string
	redirectURL  string

	authURL  string
	tokenURL string
	jwksURL  string

	httpClient *http.Client

	mu          sync.RWMutex
	jwks        *jose.JSONWebKeySet
	jwksFetched time.Time
}

// NewService creates a Google OAuth service.
func NewService(clientID, clientSecret, redirectURL string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		authURL:      defaultAuthURL,
		tokenURL:     defaultTokenURL,
		jwksURL:      defaultJWKSURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SetEndpoints overrides the Google endpoints (used for testing).
func (s *Service) SetEndpoints(authURL, tokenURL, jwksURL string) {
	s.authURL = authURL
	s.tokenURL = tokenURL
	s.jwksURL = jwksURL
}

// AuthURL builds the consent-screen redirect URL for the given state.
func (s *Service) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", s.clientID)
	q.Set("redirect_uri", s.redirectURL)
	q.Set("response_type", "code")
	q.Set("scope", "openid email profile")
	q.Set("state", state)
	return s.authURL + "?" + q.Encode()
}

// Exchange trades an authorization code for the raw ID token.
func (s *Service) Exchange(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)
	form.Set("redirect_uri", s.redirectURL)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tokenResp struct {
		IDToken string `json:"id_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", err
	}
	if tokenResp.IDToken == "" {
		return "", errors.New("token response missing id_token")
	}
	return tokenResp.IDToken, nil
}

// VerifyIDToken validates the token signature against Google's JWKS and
// checks audience and issuer before returning the claims.
func (s *Service) VerifyIDToken(ctx context.Context, rawToken string) (*IDTokenClaims, error) {
	claims := &IDTokenClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrInvalidIDToken
		}
		kid, _ := t.Header["kid"].(string)
		return s.publicKey(ctx, kid)
	},
		jwt.WithAudience(s.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidIDToken
	}

	iss, err := claims.GetIssuer()
	if err != nil || (iss != "https://accounts.google.com" && iss != "accounts.google.com") {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidIDToken, iss)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidIDToken)
	}
	return claims, nil
}

func (s *Service) publicKey(ctx context.Context, kid string) (interface{}, error) {
	s.mu.RLock()
	jwks, fetched := s.jwks, s.jwksFetched
	s.mu.RUnlock()

	if jwks != nil && time.Since(fetched) < jwksRefreshInterval {
		if keys := jwks.Key(kid); len(keys) > 0 {
			return keys[0].Key, nil
		}
	}

	// Unknown kid or stale set: refetch. Google rotates signing keys.
	jwks, err := s.fetchJWKS(ctx)
	if err != nil {
		return nil, err
	}

	keys := jwks.Key(kid)
	if len(keys) == 0 {
		return nil, ErrUnknownKeyID
	}
	return keys[0].Key, nil
}

func (s *Service) fetchJWKS(ctx context.Context) (*jose.JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.jwksURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks fetch failed: status %d", resp.StatusCode)
	}

	var jwks jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.jwks = &jwks
	s.jwksFetched = time.Now()
	s.mu.Unlock()

	return &jwks, nil
}
