package auth

import (
	"context"
	"database/sql"
	"time"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Users() UserStore                 { return &userStore{db: s.db} }
func (s *PGStore) RefreshTokens() RefreshTokenStore { return &refreshTokenStore{db: s.db} }

// User store ---------------------------------------------------------------
type userStore struct{ db *sql.DB }

const userColumns = `id, email, nickname, credential, created_at, updated_at`

func (s *userStore) Find(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id)
	return scanUser(row)
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1`, email)
	return scanUser(row)
}

func (s *userStore) UpdateCredential(ctx context.Context, id, credential string) error {
	res, err := s.db.ExecContext(ctx,
		`update users set credential=$2, updated_at=now() where id=$1`,
		id, credential,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Nickname, &u.Credential, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Refresh token store -------------------------------------------------------
type refreshTokenStore struct{ db *sql.DB }

func (s *refreshTokenStore) Find(ctx context.Context, userID string) (*RefreshRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`select user_id, token, expires_at, updated_at from refresh_tokens where user_id=$1`, userID)
	var r RefreshRecord
	if err := row.Scan(&r.UserID, &r.Token, &r.ExpiresAt, &r.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *refreshTokenStore) Upsert(ctx context.Context, userID, token string, expiresAt time.Time) error {
	// Single conditional write keeps the one-record-per-user invariant
	// under concurrent logins; the later write wins.
	_, err := s.db.ExecContext(ctx,
		`insert into refresh_tokens(user_id, token, expires_at) values($1,$2,$3)
		 on conflict (user_id) do update
		   set token=excluded.token, expires_at=excluded.expires_at, updated_at=now()`,
		userID, token, expiresAt,
	)
	return err
}

func (s *refreshTokenStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `delete from refresh_tokens where user_id=$1`, userID)
	return err
}
