package repository

import (
	"context"
	"time"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
)

// CredentialStore persists login identities.
type CredentialStore interface {
	Create(ctx context.Context, c *model.Credential) error
	GetByID(ctx context.Context, id string) (*model.Credential, error)
	GetByUsername(ctx context.Context, username string) (*model.Credential, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// ProfileStore persists crew profiles.  Reads and writes are keyed by
// email, the authoritative lookup key of the identity binding.
type ProfileStore interface {
	Create(ctx context.Context, p *model.Profile) error
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, p *model.Profile) error
	Delete(ctx context.Context, id, email string) error
}

// FlightStore persists flights.  Every method is restricted to one profile.
type FlightStore interface {
	ListByProfile(ctx context.Context, profileID string, f model.FlightFilter) ([]model.Flight, error)
	GetByIDAndProfile(ctx context.Context, id, profileID string) (*model.Flight, error)
	Create(ctx context.Context, f *model.Flight) error
	Update(ctx context.Context, f *model.Flight) error
	DeleteByIDAndProfile(ctx context.Context, id, profileID string) error
}

// CalculationStore persists monthly calculations, restricted to one profile.
type CalculationStore interface {
	ListByProfile(ctx context.Context, profileID string, year int) ([]model.MonthlyCalculation, error)
	GetByIDAndProfile(ctx context.Context, id, profileID string) (*model.MonthlyCalculation, error)
	Create(ctx context.Context, m *model.MonthlyCalculation) error
	Update(ctx context.Context, m *model.MonthlyCalculation) error
	DeleteByIDAndProfile(ctx context.Context, id, profileID string) error
}

// SettingsStore persists the per-profile settings document.
type SettingsStore interface {
	GetByProfile(ctx context.Context, profileID string) (*model.UserSettings, error)
	GetByIDAndProfile(ctx context.Context, id, profileID string) (*model.UserSettings, error)
	Create(ctx context.Context, s *model.UserSettings) error
	Update(ctx context.Context, s *model.UserSettings) error
	DeleteByIDAndProfile(ctx context.Context, id, profileID string) error
}

// TokenStore persists hashed refresh tokens.
type TokenStore interface {
	StoreRefresh(ctx context.Context, credentialID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForCredential(ctx context.Context, credentialID string) error
}

// Stores vends stores bound to a database handle, which may be a pool or an
// open transaction.
type Stores interface {
	Credentials(db database.DBTX) CredentialStore
	Profiles(db database.DBTX) ProfileStore
	Flights(db database.DBTX) FlightStore
	Calculations(db database.DBTX) CalculationStore
	Settings(db database.DBTX) SettingsStore
	Tokens(db database.DBTX) TokenStore
}

// MySQLStores is the MySQL implementation of Stores.
type MySQLStores struct{}

// NewMySQLStores returns the MySQL store factory.
func NewMySQLStores() *MySQLStores { return &MySQLStores{} }

func (MySQLStores) Credentials(db database.DBTX) CredentialStore   { return NewCredentialRepo(db) }
func (MySQLStores) Profiles(db database.DBTX) ProfileStore         { return NewProfileRepo(db) }
func (MySQLStores) Flights(db database.DBTX) FlightStore           { return NewFlightRepo(db) }
func (MySQLStores) Calculations(db database.DBTX) CalculationStore { return NewCalculationRepo(db) }
func (MySQLStores) Settings(db database.DBTX) SettingsStore        { return NewSettingsRepo(db) }
func (MySQLStores) Tokens(db database.DBTX) TokenStore             { return NewTokenRepo(db) }
