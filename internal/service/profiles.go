package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
	"github.com/iliyamo/crewpay/internal/repository"
)

// ProfileInput carries writable profile fields.  Nil fields are left as
// they are on update.  Email is not writable: it must stay equal to the
// credential's email for the binding to hold.
type ProfileInput struct {
	Airline     *string `json:"airline"`
	Position    *string `json:"position"`
	Nationality *string `json:"nationality"`
}

// ProfileService exposes the caller's own profile.  The visible set is at
// most one row: the profile bound to the caller's email.
type ProfileService struct {
	db     database.DBTX
	stores repository.Stores
	binder *Binder
	now    func() time.Time
}

func NewProfileService(db database.DBTX, stores repository.Stores, binder *Binder) *ProfileService {
	return &ProfileService{db: db, stores: stores, binder: binder, now: func() time.Time { return time.Now().UTC() }}
}

// Me returns the caller's credential and bound profile.  Unlike the other
// operations it reports a missing profile as ErrProfileNotBound.
func (s *ProfileService) Me(ctx context.Context, callerID string) (*model.Credential, *model.Profile, error) {
	cred, p, err := s.binder.Caller(ctx, callerID)
	if err != nil {
		return nil, nil, err
	}
	return cred, p, nil
}

// List returns the bound profile as a one-element slice, or an empty slice.
func (s *ProfileService) List(ctx context.Context, callerID string) ([]model.Profile, error) {
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.Profile{}, nil
	}
	return []model.Profile{*p}, nil
}

// Get returns the bound profile if its id is id.
func (s *ProfileService) Get(ctx context.Context, callerID, id string) (*model.Profile, error) {
	p, ok, err := s.binder.scope(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !ok || p.ID != id {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

// Create makes a profile for a caller that has none yet.  The new profile
// takes the caller's credential id and email; both are ignored if sent.
func (s *ProfileService) Create(ctx context.Context, callerID string, in ProfileInput) (*model.Profile, error) {
	cred, _, err := s.binder.Caller(ctx, callerID)
	switch {
	case err == nil:
		return nil, ErrProfileExists
	case !errors.Is(err, ErrProfileNotBound):
		return nil, err
	case cred == nil:
		// token subject without a credential row
		return nil, repository.ErrNotFound
	}

	if in.Airline == nil || strings.TrimSpace(*in.Airline) == "" || in.Position == nil {
		return nil, invalid("airline and position are required")
	}
	position, ok := model.NormalizePosition(*in.Position)
	if !ok {
		return nil, ErrInvalidPosition
	}

	now := s.now()
	p := &model.Profile{
		ID:          cred.ID,
		Email:       cred.Email,
		Airline:     strings.TrimSpace(*in.Airline),
		Position:    position,
		Nationality: trimmedOrNil(in.Nationality),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.stores.Profiles(s.db).Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrProfileExists
		}
		return nil, err
	}
	return p, nil
}

// Update applies in to the bound profile if its id is id.
func (s *ProfileService) Update(ctx context.Context, callerID, id string, in ProfileInput) (*model.Profile, error) {
	p, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if in.Airline != nil {
		a := strings.TrimSpace(*in.Airline)
		if a == "" {
			return nil, invalid("airline must not be blank")
		}
		p.Airline = a
	}
	if in.Position != nil {
		position, ok := model.NormalizePosition(*in.Position)
		if !ok {
			return nil, ErrInvalidPosition
		}
		p.Position = position
	}
	if in.Nationality != nil {
		p.Nationality = trimmedOrNil(in.Nationality)
	}
	p.UpdatedAt = s.now()
	if err := s.stores.Profiles(s.db).Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Replace is Update for a full payload; airline and position are required.
func (s *ProfileService) Replace(ctx context.Context, callerID, id string, in ProfileInput) (*model.Profile, error) {
	if in.Airline == nil || in.Position == nil {
		return nil, invalid("airline and position are required")
	}
	return s.Update(ctx, callerID, id, in)
}

// Delete removes the bound profile if its id is id.  Owned flights,
// calculations and settings are removed with it.
func (s *ProfileService) Delete(ctx context.Context, callerID, id string) error {
	p, err := s.Get(ctx, callerID, id)
	if err != nil {
		return err
	}
	return s.stores.Profiles(s.db).Delete(ctx, p.ID, p.Email)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
