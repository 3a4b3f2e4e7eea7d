package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
)

// SettingsRepo mirrors the `user_settings` table.  The settings document
// is stored in a JSON column.
type SettingsRepo struct{ DB database.DBTX }

func NewSettingsRepo(db database.DBTX) *SettingsRepo { return &SettingsRepo{DB: db} }

func (r *SettingsRepo) getOne(ctx context.Context, q string, args ...any) (*model.UserSettings, error) {
	var (
		s   model.UserSettings
		raw []byte
	)
	err := r.DB.QueryRowContext(ctx, q, args...).Scan(&s.ID, &s.ProfileID, &raw, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.Settings); err != nil {
			return nil, err
		}
	}
	if s.Settings == nil {
		s.Settings = map[string]any{}
	}
	return &s, nil
}

// GetByProfile returns the settings row of profileID or ErrNotFound.
func (r *SettingsRepo) GetByProfile(ctx context.Context, profileID string) (*model.UserSettings, error) {
	return r.getOne(ctx,
		"SELECT id, profile_id, settings, created_at, updated_at FROM user_settings WHERE profile_id = ? LIMIT 1", profileID)
}

// GetByIDAndProfile fetches a settings row only if it belongs to profileID.
func (r *SettingsRepo) GetByIDAndProfile(ctx context.Context, id, profileID string) (*model.UserSettings, error) {
	return r.getOne(ctx,
		"SELECT id, profile_id, settings, created_at, updated_at FROM user_settings WHERE id = ? AND profile_id = ?", id, profileID)
}

// Create inserts the settings row.  A profile that already has one yields
// ErrConflict.
func (r *SettingsRepo) Create(ctx context.Context, s *model.UserSettings) error {
	doc, err := encodeSettings(s.Settings)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO user_settings (id, profile_id, settings, created_at, updated_at) VALUES (?,?,?,?,?)",
		s.ID, s.ProfileID, doc, s.CreatedAt, s.UpdatedAt)
	if _, ok := duplicateKey(err); ok {
		return ErrConflict
	}
	return err
}

// Update replaces the settings document of a row owned by s.ProfileID.
func (r *SettingsRepo) Update(ctx context.Context, s *model.UserSettings) error {
	doc, err := encodeSettings(s.Settings)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE user_settings SET settings=?, updated_at=? WHERE id=? AND profile_id=?",
		doc, s.UpdatedAt, s.ID, s.ProfileID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByIDAndProfile removes a settings row owned by profileID.
func (r *SettingsRepo) DeleteByIDAndProfile(ctx context.Context, id, profileID string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM user_settings WHERE id=? AND profile_id=?", id, profileID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeSettings(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
