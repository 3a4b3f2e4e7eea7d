package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
)

// ProfileRepo mirrors the `profiles` table.  Lookups are by email only;
// the id is never used to find the profile of a credential.
type ProfileRepo struct{ DB database.DBTX }

func NewProfileRepo(db database.DBTX) *ProfileRepo { return &ProfileRepo{DB: db} }

// Create inserts a profile.  A taken email maps to ErrEmailExists.
func (r *ProfileRepo) Create(ctx context.Context, p *model.Profile) error {
	p.Email = normalizeEmail(p.Email)
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO profiles (id,email,airline,position,nationality,created_at,updated_at)
		 VALUES (?,?,?,?,?,?,?)`,
		p.ID, p.Email, p.Airline, p.Position, p.Nationality, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if _, ok := duplicateKey(err); ok {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail returns the profile bound to email or ErrNotFound.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var (
		p           model.Profile
		nationality sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,airline,position,nationality,created_at,updated_at FROM profiles WHERE email=? LIMIT 1",
		normalizeEmail(email)).Scan(&p.ID, &p.Email, &p.Airline, &p.Position, &nationality, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if nationality.Valid {
		p.Nationality = &nationality.String
	}
	return &p, nil
}

// EmailExists reports whether a profile already uses email.
func (r *ProfileRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM profiles WHERE email=?", normalizeEmail(email)).Scan(&n)
	return n > 0, err
}

// Update writes airline, position and nationality.  The row must match both
// id and email; otherwise ErrNotFound is returned.  Email itself is never
// rewritten here because the credential holds the same value.
func (r *ProfileRepo) Update(ctx context.Context, p *model.Profile) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE profiles SET airline=?, position=?, nationality=?, updated_at=?
		 WHERE id=? AND email=?`,
		p.Airline, p.Position, p.Nationality, p.UpdatedAt, p.ID, normalizeEmail(p.Email))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the profile matching id and email.  Flights, calculations
// and settings go with it through ON DELETE CASCADE.
func (r *ProfileRepo) Delete(ctx context.Context, id, email string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM profiles WHERE id=? AND email=?", id, normalizeEmail(email))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
