package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/crewpay/internal/database"
)

// TokenRepo persists/validates refresh tokens (single 'token_hash' column).
type TokenRepo struct{ DB database.DBTX }

func NewTokenRepo(db database.DBTX) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, credentialID, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (credential_id, token_hash, expires_at) VALUES (?,?,?)",
		credentialID, tokenHash, exp)
	return err
}

// ValidateRefresh returns the credential id if a non-revoked, non-expired
// token exists.  Anything else is reported as ErrNotFound.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	var (
		credentialID string
		expiresAt    time.Time
		revokedAt    sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT credential_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&credentialID, &expiresAt, &revokedAt)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if revokedAt.Valid {
		return "", ErrNotFound
	}
	if time.Now().UTC().After(expiresAt) {
		return "", ErrNotFound
	}
	return credentialID, nil
}

// RevokeByHash marks a live token as revoked.  ErrNotFound means no row
// changed: the token is unknown or another request revoked it first.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeAllForCredential revokes all active tokens of a credential.
func (r *TokenRepo) RevokeAllForCredential(ctx context.Context, credentialID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE credential_id=? AND revoked_at IS NULL",
		credentialID)
	return err
}
