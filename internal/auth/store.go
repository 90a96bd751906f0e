package auth

import (
	"context"
	"time"
)

// Store bundles the persistence used by the session service.
type Store interface {
	Users() UserStore
	RefreshTokens() RefreshTokenStore
}

// UserStore reads identities and persists credential upgrades. Account
// creation and profile editing live in the user domain services.
type UserStore interface {
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateCredential(ctx context.Context, id, credential string) error
}

// RefreshTokenStore holds at most one live refresh record per user.
type RefreshTokenStore interface {
	Find(ctx context.Context, userID string) (*RefreshRecord, error)

	// Upsert atomically replaces the user's record in a single conditional
	// write; under concurrent logins the later write wins and the earlier
	// token becomes unusable on its next refresh.
	Upsert(ctx context.Context, userID, token string, expiresAt time.Time) error

	Delete(ctx context.Context, userID string) error
}
