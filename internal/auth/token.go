package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"matchduo.org/internal/ids"
)

const (
	defaultTokenIssuer = "matchduo"
	defaultAccessTTL   = 1 * time.Hour
	defaultRefreshTTL  = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// IssuedToken is a signed token together with its expiry; cookie lifetimes
// are derived from ExpiresAt.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer mints and checks the opaque bearer strings used by the
// session service. Validate collapses every failure into ErrInvalidToken so
// callers cannot tell which check rejected the token.
type TokenIssuer interface {
	IssueAccess(userID string) (IssuedToken, error)
	IssueRefresh(userID string) (IssuedToken, error)
	Validate(token string) error
	Subject(token string) (string, error)
}

// Claims are the JWT claims carried by session tokens.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Issuer signs session tokens using HS256.
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

var _ TokenIssuer = (*Issuer)(nil)

// IssuerOption configures Issuer behavior.
type IssuerOption func(*Issuer)

// WithIssuerName overrides the issuer claim.
func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) {
		if strings.TrimSpace(name) != "" {
			i.issuer = strings.TrimSpace(name)
		}
	}
}

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		if ttl > 0 {
			i.accessTTL = ttl
		}
	}
}

// WithRefreshTTL configures refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		if ttl > 0 {
			i.refreshTTL = ttl
		}
	}
}

// WithIssuerClock overrides the time source (useful for tests).
func WithIssuerClock(fn func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if fn != nil {
			i.now = fn
		}
	}
}

// NewIssuer constructs an Issuer signing with the given secret.
func NewIssuer(secret string, opts ...IssuerOption) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth secret is not configured")
	}
	issuer := &Issuer{
		secret:     []byte(secret),
		issuer:     defaultTokenIssuer,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer, nil
}

// IssueAccess signs a short-lived access token for the user.
func (i *Issuer) IssueAccess(userID string) (IssuedToken, error) {
	return i.issue(userID, tokenTypeAccess, i.accessTTL)
}

// IssueRefresh signs a refresh token for the user.
func (i *Issuer) IssueRefresh(userID string) (IssuedToken, error) {
	return i.issue(userID, tokenTypeRefresh, i.refreshTTL)
}

func (i *Issuer) issue(userID, tokenType string, ttl time.Duration) (IssuedToken, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return IssuedToken{}, errors.New("userID is required")
	}
	now := i.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        ids.New(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Validate verifies the token signature and required claims.
func (i *Issuer) Validate(token string) error {
	_, err := i.parse(token)
	return err
}

// Subject returns the user id a valid token was issued for.
func (i *Issuer) Subject(token string) (string, error) {
	claims, err := i.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ValidateAccess checks that the token is a valid access token and returns
// its subject. Refresh tokens are rejected here so they cannot double as
// request credentials.
func (i *Issuer) ValidateAccess(token string) (string, error) {
	claims, err := i.parse(token)
	if err != nil {
		return "", err
	}
	if claims.TokenType != tokenTypeAccess {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (i *Issuer) parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := i.validateClaims(claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (i *Issuer) validateClaims(claims *Claims) error {
	if claims.Issuer != i.issuer {
		return fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	now := i.now().UTC()
	if now.After(claims.ExpiresAt.Time) {
		return errors.New("token expired")
	}
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
		return errors.New("token issued in the future")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return errors.New("token expiry precedes issued-at")
	}
	return nil
}
