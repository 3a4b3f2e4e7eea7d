package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
)

// CredentialRepo mirrors the `credentials` table.
type CredentialRepo struct{ DB database.DBTX }

func NewCredentialRepo(db database.DBTX) *CredentialRepo { return &CredentialRepo{DB: db} }

const credentialColumns = "id,username,email,password_hash,first_name,last_name,is_active,created_at,updated_at"

// Create inserts a credential.  ID, PasswordHash and the timestamps must be
// populated by the caller.  Unique key collisions map to ErrUsernameExists
// or ErrEmailExists.
func (r *CredentialRepo) Create(ctx context.Context, c *model.Credential) error {
	c.Email = normalizeEmail(c.Email)
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO credentials (id,username,email,password_hash,first_name,last_name,is_active,created_at,updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		c.ID, c.Username, c.Email, c.PasswordHash, c.FirstName, c.LastName, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if key, ok := duplicateKey(err); ok {
			if key == "uq_credentials_username" {
				return ErrUsernameExists
			}
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByID fetches a credential by id.
func (r *CredentialRepo) GetByID(ctx context.Context, id string) (*model.Credential, error) {
	return r.getOne(ctx, "SELECT "+credentialColumns+" FROM credentials WHERE id=? LIMIT 1", id)
}

// GetByUsername fetches a credential by its login name.
func (r *CredentialRepo) GetByUsername(ctx context.Context, username string) (*model.Credential, error) {
	return r.getOne(ctx, "SELECT "+credentialColumns+" FROM credentials WHERE username=? LIMIT 1", strings.TrimSpace(username))
}

// UsernameExists reports whether a credential already uses username.
func (r *CredentialRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM credentials WHERE username=?", strings.TrimSpace(username)).Scan(&n)
	return n > 0, err
}

// EmailExists reports whether a credential already uses email.
func (r *CredentialRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM credentials WHERE email=?", normalizeEmail(email)).Scan(&n)
	return n > 0, err
}

func (r *CredentialRepo) getOne(ctx context.Context, q string, arg any) (*model.Credential, error) {
	var c model.Credential
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&c.ID, &c.Username, &c.Email, &c.PasswordHash, &c.FirstName, &c.LastName, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
