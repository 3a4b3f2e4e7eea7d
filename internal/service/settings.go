package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
	"github.com/iliyamo/crewpay/internal/repository"
)

// SettingsInput replaces the settings document.
type SettingsInput struct {
	Settings map[string]any `json:"settings"`
}

// SettingsService is the scoped gateway for the settings document.  A
// profile owns at most one.
type SettingsService struct {
	db     database.DBTX
	stores repository.Stores
	binder *Binder
	now    func() time.Time
}

func NewSettingsService(db database.DBTX, stores repository.Stores, binder *Binder) *SettingsService {
	return &SettingsService{db: db, stores: stores, binder: binder, now: func() time.Time { return time.Now().UTC() }}
}

// List returns the caller's settings as a slice of zero or one element.
func (s *SettingsService) List(ctx context.Context, callerID string) ([]model.UserSettings, error) {
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.UserSettings{}, nil
	}
	us, err := s.stores.Settings(s.db).GetByProfile(ctx, p.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return []model.UserSettings{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []model.UserSettings{*us}, nil
}

func (s *SettingsService) Get(ctx context.Context, callerID, id string) (*model.UserSettings, error) {
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.stores.Settings(s.db).GetByIDAndProfile(ctx, id, p.ID)
}

// Create stores the caller's settings.  A caller that already has a
// document gets repository.ErrConflict.
func (s *SettingsService) Create(ctx context.Context, callerID string, in SettingsInput) (*model.UserSettings, error) {
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	now := s.now()
	us := &model.UserSettings{
		ID:        uuid.NewString(),
		ProfileID: p.ID,
		Settings:  orEmpty(in.Settings),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.stores.Settings(s.db).Create(ctx, us); err != nil {
		return nil, err
	}
	return us, nil
}

// Update replaces the whole document.
func (s *SettingsService) Update(ctx context.Context, callerID, id string, in SettingsInput) (*model.UserSettings, error) {
	us, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	us.Settings = orEmpty(in.Settings)
	us.UpdatedAt = s.now()
	if err := s.stores.Settings(s.db).Update(ctx, us); err != nil {
		return nil, err
	}
	return us, nil
}

func (s *SettingsService) Delete(ctx context.Context, callerID, id string) error {
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	return s.stores.Settings(s.db).DeleteByIDAndProfile(ctx, id, p.ID)
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
