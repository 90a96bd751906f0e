package auth

import "time"

// User is an authentication identity. Profile editing and account lifecycle
// belong to the user domain services; this package only reads identities and
// rewrites the credential column during legacy migration.
type User struct {
	ID         string
	Email      string
	Nickname   string
	Credential string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Summary returns the identity projection exposed by session responses.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Nickname: u.Nickname}
}

// UserSummary is the subset of identity fields returned from login and
// refresh.
type UserSummary struct {
	ID       string `json:"userId"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// RefreshRecord is the single live refresh token row for a user. A later
// login overwrites it in place, which invalidates any token issued by a
// prior session.
type RefreshRecord struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
	UpdatedAt time.Time
}
