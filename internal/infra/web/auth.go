package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"codegate/internal/config"
	"codegate/internal/domain"
)

// ===== Session/JWT primitives =====

// AuthManager mints and verifies the bearer credential bound to an
// activated code's session. Token validity never implies session validity:
// a cryptographically valid token can reference a session the store has
// already invalidated, so every caller still consults the session check.
type AuthManager struct {
	secret []byte
	issuer string
	ttl    time.Duration

	cookieName   string
	cookieDomain string
	secureCookie bool
}

func NewAuthManager(cfg config.AuthConfig) *AuthManager {
	return &AuthManager{
		secret:       []byte(cfg.Secret),
		issuer:       cfg.Issuer,
		ttl:          cfg.TokenTTL,
		cookieName:   cfg.CookieName,
		cookieDomain: cfg.CookieDomain, // "" is fine for a host-only cookie
		secureCookie: cfg.SecureCookie,
	}
}

// SessionClaims is the token payload: the session identity plus the
// registered claims. The token expiry is its own clock, independent of the
// code's expires_at deadline.
type SessionClaims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Mint signs a token for the session and sets it as an HttpOnly cookie.
func (a *AuthManager) Mint(w http.ResponseWriter, userID, sessionID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", err
	}

	c := &http.Cookie{
		Name:     a.cookieName,
		Value:    signed,
		Path:     "/",
		Domain:   a.cookieDomain,
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
	http.SetCookie(w, c)
	return signed, nil
}

// Clear expires the session cookie.
func (a *AuthManager) Clear(w http.ResponseWriter) {
	c := &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		Domain:   a.cookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
	http.SetCookie(w, c)
}

// ParseFromRequest extracts and verifies a credential from the
// Authorization header or, failing that, the session cookie.
func (a *AuthManager) ParseFromRequest(r *http.Request) (*SessionClaims, error) {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.Verify(strings.TrimSpace(hdr[7:]))
		}
		return nil, domain.ErrTokenInvalid
	}
	if c, err := r.Cookie(a.cookieName); err == nil {
		return a.Verify(c.Value)
	}
	return nil, domain.ErrTokenInvalid
}

// Verify checks signature, structure, issuer and token-level expiry.
func (a *AuthManager) Verify(tok string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(a.issuer))
	if err != nil || !tkn.Valid {
		return nil, domain.ErrTokenInvalid
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
