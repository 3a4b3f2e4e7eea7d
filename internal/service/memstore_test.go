package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
	"github.com/iliyamo/crewpay/internal/repository"
)

// memStores is an in-memory repository.Stores.  The database handle is
// ignored, so every store shares the same maps.
type memStores struct {
	mu       sync.Mutex
	creds    map[string]model.Credential
	profiles map[string]model.Profile
	flights  map[string]model.Flight
	calcs    map[string]model.MonthlyCalculation
	settings map[string]model.UserSettings
	tokens   map[string]memToken
}

type memToken struct {
	credentialID string
	exp          time.Time
	revoked      bool
}

func newMemStores() *memStores {
	return &memStores{
		creds:    map[string]model.Credential{},
		profiles: map[string]model.Profile{},
		flights:  map[string]model.Flight{},
		calcs:    map[string]model.MonthlyCalculation{},
		settings: map[string]model.UserSettings{},
		tokens:   map[string]memToken{},
	}
}

func (m *memStores) Credentials(database.DBTX) repository.CredentialStore { return memCreds{m} }
func (m *memStores) Profiles(database.DBTX) repository.ProfileStore       { return memProfiles{m} }
func (m *memStores) Flights(database.DBTX) repository.FlightStore         { return memFlights{m} }
func (m *memStores) Calculations(database.DBTX) repository.CalculationStore {
	return memCalcs{m}
}
func (m *memStores) Settings(database.DBTX) repository.SettingsStore { return memSettings{m} }
func (m *memStores) Tokens(database.DBTX) repository.TokenStore      { return memTokens{m} }

type memCreds struct{ m *memStores }

func (s memCreds) Create(_ context.Context, c *model.Credential) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, o := range s.m.creds {
		if o.Username == c.Username {
			return repository.ErrUsernameExists
		}
		if o.Email == c.Email {
			return repository.ErrEmailExists
		}
	}
	s.m.creds[c.ID] = *c
	return nil
}

func (s memCreds) GetByID(_ context.Context, id string) (*model.Credential, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.creds[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s memCreds) GetByUsername(_ context.Context, username string) (*model.Credential, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, c := range s.m.creds {
		if c.Username == username {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s memCreds) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.GetByUsername(ctx, username)
	return err == nil, nil
}

func (s memCreds) EmailExists(_ context.Context, email string) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, c := range s.m.creds {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type memProfiles struct{ m *memStores }

func (s memProfiles) Create(_ context.Context, p *model.Profile) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, o := range s.m.profiles {
		if o.Email == p.Email {
			return repository.ErrEmailExists
		}
	}
	s.m.profiles[p.ID] = *p
	return nil
}

func (s memProfiles) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, p := range s.m.profiles {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s memProfiles) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	return err == nil, nil
}

func (s memProfiles) Update(_ context.Context, p *model.Profile) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	o, ok := s.m.profiles[p.ID]
	if !ok || o.Email != p.Email {
		return repository.ErrNotFound
	}
	s.m.profiles[p.ID] = *p
	return nil
}

func (s memProfiles) Delete(_ context.Context, id, email string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	o, ok := s.m.profiles[id]
	if !ok || o.Email != email {
		return repository.ErrNotFound
	}
	delete(s.m.profiles, id)
	for k, f := range s.m.flights {
		if f.ProfileID == id {
			delete(s.m.flights, k)
		}
	}
	for k, c := range s.m.calcs {
		if c.ProfileID == id {
			delete(s.m.calcs, k)
		}
	}
	for k, us := range s.m.settings {
		if us.ProfileID == id {
			delete(s.m.settings, k)
		}
	}
	return nil
}

type memFlights struct{ m *memStores }

func (s memFlights) ListByProfile(_ context.Context, profileID string, f model.FlightFilter) ([]model.Flight, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]model.Flight, 0)
	for _, fl := range s.m.flights {
		if fl.ProfileID != profileID {
			continue
		}
		if f.Year != 0 && fl.Year != f.Year {
			continue
		}
		if f.Month != 0 && fl.Month != f.Month {
			continue
		}
		out = append(out, fl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s memFlights) GetByIDAndProfile(_ context.Context, id, profileID string) (*model.Flight, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	f, ok := s.m.flights[id]
	if !ok || f.ProfileID != profileID {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (s memFlights) Create(_ context.Context, f *model.Flight) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.flights[f.ID] = *f
	return nil
}

func (s memFlights) Update(_ context.Context, f *model.Flight) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	o, ok := s.m.flights[f.ID]
	if !ok || o.ProfileID != f.ProfileID {
		return repository.ErrNotFound
	}
	s.m.flights[f.ID] = *f
	return nil
}

func (s memFlights) DeleteByIDAndProfile(_ context.Context, id, profileID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	o, ok := s.m.flights[id]
	if !ok || o.ProfileID != profileID {
		return repository.ErrNotFound
	}
	delete(s.m.flights, id)
	return nil
}

type memCalcs struct{ m *memStores }

func (s memCalcs) ListByProfile(_ context.Context, profileID string, year int) ([]model.MonthlyCalculation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]model.MonthlyCalculation, 0)
	for _, c := range s.m.calcs {
		if c.ProfileID == profileID && (year == 0 || c.Year == year) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

func (s memCalcs) GetByIDAndProfile(_ context.Context, id, profileID string) (*model.MonthlyCalculation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.calcs[id]
	if !ok || c.ProfileID != profileID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s memCalcs) periodTaken(m *model.MonthlyCalculation) bool {
	for _, o := range s.m.calcs {
		if o.ID != m.ID && o.ProfileID == m.ProfileID && o.Year == m.Year && o.Month == m.Month {
			return true
		}
	}
	return false
}

func (s memCalcs) Create(_ context.Context, m *model.MonthlyCalculation) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.periodTaken(m) {
		return repository.ErrConflict
	}
	s.m.calcs[m.ID] = *m
	return nil
}

func (s memCalcs) Update(_ context.Context, m *model.MonthlyCalculation) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	o, ok := s.m.calcs[m.ID]
	if !ok || o.ProfileID != m.ProfileID {
		return repository.ErrNotFound
	}
	if s.periodTaken(m) {
		return repository.ErrConflict
	}
	s.m.calcs[m.ID] = *m
	return nil
}

func (s memCalcs) DeleteByIDAndProfile(_ context.Context, id, profileID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	o, ok := s.m.calcs[id]
	if !ok || o.ProfileID != profileID {
		return repository.ErrNotFound
	}
	delete(s.m.calcs, id)
	return nil
}

type memSettings struct{ m *memStores }

func (s memSettings) GetByProfile(_ context.Context, profileID string) (*model.UserSettings, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, us := range s.m.settings {
		if us.ProfileID == profileID {
			return &us, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s memSettings) GetByIDAndProfile(_ context.Context, id, profileID string) (*model.UserSettings, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	us, ok := s.m.settings[id]
	if !ok || us.ProfileID != profileID {
		return nil, repository.ErrNotFound
	}
	return &us, nil
}

func (s memSettings) Create(_ context.Context, us *model.UserSettings) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, o := range s.m.settings {
		if o.ProfileID == us.ProfileID {
			return repository.ErrConflict
		}
	}
	s.m.settings[us.ID] = *us
	return nil
}

func (s memSettings) Update(_ context.Context, us *model.UserSettings) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	o, ok := s.m.settings[us.ID]
	if !ok || o.ProfileID != us.ProfileID {
		return repository.ErrNotFound
	}
	s.m.settings[us.ID] = *us
	return nil
}

func (s memSettings) DeleteByIDAndProfile(_ context.Context, id, profileID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	o, ok := s.m.settings[id]
	if !ok || o.ProfileID != profileID {
		return repository.ErrNotFound
	}
	delete(s.m.settings, id)
	return nil
}

type memTokens struct{ m *memStores }

func (s memTokens) StoreRefresh(_ context.Context, credentialID, tokenHash string, exp time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.tokens[tokenHash] = memToken{credentialID: credentialID, exp: exp}
	return nil
}

func (s memTokens) ValidateRefresh(_ context.Context, tokenHash string) (string, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	t, ok := s.m.tokens[tokenHash]
	if !ok || t.revoked || time.Now().After(t.exp) {
		return "", repository.ErrNotFound
	}
	return t.credentialID, nil
}

func (s memTokens) RevokeByHash(_ context.Context, tokenHash string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	t, ok := s.m.tokens[tokenHash]
	if !ok || t.revoked {
		return repository.ErrNotFound
	}
	t.revoked = true
	s.m.tokens[tokenHash] = t
	return nil
}

func (s memTokens) RevokeAllForCredential(_ context.Context, credentialID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for h, t := range s.m.tokens {
		if t.credentialID == credentialID {
			t.revoked = true
			s.m.tokens[h] = t
		}
	}
	return nil
}

// seedCrew stores a credential and, when airline is not empty, a profile
// bound to it by email.
func (m *memStores) seedCrew(id, username, email, airline, position string) {
	now := time.Now().UTC()
	m.creds[id] = model.Credential{
		ID: id, Username: username, Email: email, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	if airline != "" {
		m.profiles[id] = model.Profile{
			ID: id, Email: email, Airline: airline, Position: position,
			CreatedAt: now, UpdatedAt: now,
		}
	}
}
