package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

// Service orchestrates login, refresh and logout. Rate limiting happens at
// the transport before any of these are reached; no credential check runs
// for a throttled client.
type Service struct {
	store    Store
	issuer   TokenIssuer
	verifier *Verifier
}

// NewService constructs the session service.
func NewService(store Store, issuer TokenIssuer) *Service {
	return &Service{
		store:    store,
		issuer:   issuer,
		verifier: NewVerifier(),
	}
}

// LoginResult carries the identity summary and both freshly minted tokens.
// CredentialMigrated reports that a legacy plaintext credential was
// rewritten to a hash during this login.
type LoginResult struct {
	User               UserSummary
	Access             IssuedToken
	Refresh            IssuedToken
	CredentialMigrated bool
}

// RefreshResult carries the identity summary and the reissued access token.
// The refresh token itself is not rotated.
type RefreshResult struct {
	User   UserSummary
	Access IssuedToken
}

// LogoutStatus reports what Logout did. Failures while resolving the
// presented token are absorbed on purpose: a client with a broken token
// must still be able to clear its cookies, so the absorption is visible in
// the type instead of an ignored error.
type LogoutStatus int

const (
	// LogoutSkipped means no usable token was presented; nothing was
	// deleted.
	LogoutSkipped LogoutStatus = iota

	// LogoutCleared means the user's refresh record was deleted.
	LogoutCleared
)

// Login authenticates the presented credential and establishes a session.
// Returns ErrEmailNotFound or ErrWrongPassword on the expected failure
// paths; anything else is a collaborator failure and propagates.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LoginResult{}, ErrEmailNotFound
		}
		return LoginResult{}, fmt.Errorf("find user by email: %w", err)
	}

	outcome, err := s.verifier.Verify(password, user.Credential)
	if err != nil {
		return LoginResult{}, fmt.Errorf("verify credential: %w", err)
	}
	if !outcome.Match {
		return LoginResult{}, ErrWrongPassword
	}
	if outcome.Rehashed != "" {
		if err := s.store.Users().UpdateCredential(ctx, user.ID, outcome.Rehashed); err != nil {
			return LoginResult{}, fmt.Errorf("migrate credential: %w", err)
		}
		user.Credential = outcome.Rehashed
	}

	access, err := s.issuer.IssueAccess(user.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.issuer.IssueRefresh(user.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.store.RefreshTokens().Upsert(ctx, user.ID, refresh.Value, refresh.ExpiresAt); err != nil {
		return LoginResult{}, fmt.Errorf("store refresh token: %w", err)
	}

	return LoginResult{
		User:               user.Summary(),
		Access:             access,
		Refresh:            refresh,
		CredentialMigrated: outcome.Rehashed != "",
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. Every
// token-side failure collapses to ErrUnauthorized; ErrUserNotFound is the
// one other failure, when the identity was deleted after issuance.
func (s *Service) Refresh(ctx context.Context, token string) (RefreshResult, error) {
	if strings.TrimSpace(token) == "" {
		return RefreshResult{}, ErrUnauthorized
	}
	if err := s.issuer.Validate(token); err != nil {
		return RefreshResult{}, ErrUnauthorized
	}
	userID, err := s.issuer.Subject(token)
	if err != nil {
		return RefreshResult{}, ErrUnauthorized
	}

	record, err := s.store.RefreshTokens().Find(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RefreshResult{}, ErrUnauthorized
		}
		return RefreshResult{}, fmt.Errorf("find refresh record: %w", err)
	}
	// Only the stored value is honored: a cryptographically valid token
	// from a superseded session fails here.
	if subtle.ConstantTimeCompare([]byte(record.Token), []byte(token)) != 1 {
		return RefreshResult{}, ErrUnauthorized
	}

	access, err := s.issuer.IssueAccess(userID)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("issue access token: %w", err)
	}
	user, err := s.store.Users().Find(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RefreshResult{}, ErrUserNotFound
		}
		return RefreshResult{}, fmt.Errorf("find user: %w", err)
	}
	return RefreshResult{User: user.Summary(), Access: access}, nil
}

// Whoami returns the identity summary for an already-resolved user id.
func (s *Service) Whoami(ctx context.Context, userID string) (UserSummary, error) {
	user, err := s.store.Users().Find(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return UserSummary{}, ErrUserNotFound
		}
		return UserSummary{}, fmt.Errorf("find user: %w", err)
	}
	return user.Summary(), nil
}

// Logout deletes the user's refresh record when the presented token is
// valid. It never fails: the transport expires both cookies regardless.
func (s *Service) Logout(ctx context.Context, token string) LogoutStatus {
	if strings.TrimSpace(token) == "" {
		return LogoutSkipped
	}
	if err := s.issuer.Validate(token); err != nil {
		return LogoutSkipped
	}
	userID, err := s.issuer.Subject(token)
	if err != nil {
		return LogoutSkipped
	}
	if err := s.store.RefreshTokens().Delete(ctx, userID); err != nil {
		return LogoutSkipped
	}
	return LogoutCleared
}
