package service

import (
	"context"
	"errors"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
	"github.com/iliyamo/crewpay/internal/repository"
)

// Binder maps an authenticated credential onto its profile.
//
// Two relations exist between credentials and profiles.  At registration
// the profile id is set equal to the credential id; that equality is a
// one-time invariant and nothing reads it afterwards.  The authoritative
// lookup key is the email: every binding goes credential -> current email
// -> profile with that email.  Do not replace this with an id join; a
// profile created outside registration, or a credential whose email was
// changed together with its profile, would bind differently.
//
// Results are never cached.  Each scoped operation resolves again.
type Binder struct {
	db     database.DBTX
	stores repository.Stores
}

func NewBinder(db database.DBTX, stores repository.Stores) *Binder {
	return &Binder{db: db, stores: stores}
}

// ProfileByEmail returns the single profile whose email equals email, or
// ErrProfileNotBound.
func (b *Binder) ProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	p, err := b.stores.Profiles(b.db).GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProfileNotBound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Caller loads the credential behind an access token subject and the
// profile bound to its current email.  The credential is returned even
// when the profile lookup yields ErrProfileNotBound.
func (b *Binder) Caller(ctx context.Context, credentialID string) (*model.Credential, *model.Profile, error) {
	cred, err := b.stores.Credentials(b.db).GetByID(ctx, credentialID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrProfileNotBound
	}
	if err != nil {
		return nil, nil, err
	}
	p, err := b.ProfileByEmail(ctx, cred.Email)
	if err != nil {
		return cred, nil, err
	}
	return cred, p, nil
}

// Resolve returns the caller's profile or ErrProfileNotBound.
func (b *Binder) Resolve(ctx context.Context, credentialID string) (*model.Profile, error) {
	_, p, err := b.Caller(ctx, credentialID)
	return p, err
}

// scope is Resolve for the resource services: an unbound caller is not an
// error, it simply has nothing in scope.
func (b *Binder) scope(ctx context.Context, credentialID string) (*model.Profile, bool, error) {
	p, err := b.Resolve(ctx, credentialID)
	if errors.Is(err, ErrProfileNotBound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}
