package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
	"github.com/iliyamo/crewpay/internal/queue"
	"github.com/iliyamo/crewpay/internal/repository"
	"github.com/iliyamo/crewpay/internal/utils"
)

// EventPublisher delivers domain events to the broker.
type EventPublisher interface {
	PublishCrewRegistered(ctx context.Context, ev queue.CrewRegisteredEvent) error
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Airline   string `json:"airline"`
	Position  string `json:"position"`
}

// Registrar creates a credential and its profile as one unit.
type Registrar struct {
	db         *sql.DB
	stores     repository.Stores
	bcryptCost int
	events     EventPublisher
	log        *zap.Logger
	now        func() time.Time
}

// NewRegistrar builds a Registrar.  events may be nil.
func NewRegistrar(db *sql.DB, stores repository.Stores, bcryptCost int, events EventPublisher, log *zap.Logger) *Registrar {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registrar{
		db:         db,
		stores:     stores,
		bcryptCost: bcryptCost,
		events:     events,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register validates in, then writes the credential and the profile in one
// transaction.  The profile takes the credential's id and email.  Checks
// run in a fixed order and the first failing one is returned:
//
//	ErrMissingFields, ErrUsernameTaken, ErrEmailTaken, ErrInvalidPosition
//
// No row is written when any check fails, and a failure while inserting the
// profile rolls the credential back.
func (r *Registrar) Register(ctx context.Context, in RegisterInput) (*model.Credential, *model.Profile, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Airline = strings.TrimSpace(in.Airline)
	if in.Username == "" || in.Email == "" || in.Password == "" || in.Airline == "" || strings.TrimSpace(in.Position) == "" {
		return nil, nil, ErrMissingFields
	}

	creds := r.stores.Credentials(r.db)
	taken, err := creds.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, nil, err
	}
	if taken {
		return nil, nil, ErrUsernameTaken
	}

	taken, err = creds.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, nil, err
	}
	if !taken {
		taken, err = r.stores.Profiles(r.db).EmailExists(ctx, in.Email)
		if err != nil {
			return nil, nil, err
		}
	}
	if taken {
		return nil, nil, ErrEmailTaken
	}

	position, ok := model.NormalizePosition(in.Position)
	if !ok {
		return nil, nil, ErrInvalidPosition
	}

	hash, err := utils.HashPassword(in.Password, r.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	now := r.now()
	cred := &model.Credential{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &model.Profile{
		Email:     in.Email,
		Airline:   in.Airline,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = database.WithTx(ctx, r.db, nil, func(ctx context.Context, tx database.DBTX) error {
		if err := r.stores.Credentials(tx).Create(ctx, cred); err != nil {
			return err
		}
		profile.ID = cred.ID
		profile.Email = cred.Email
		return r.stores.Profiles(tx).Create(ctx, profile)
	})
	switch {
	case errors.Is(err, repository.ErrUsernameExists):
		return nil, nil, ErrUsernameTaken
	case errors.Is(err, repository.ErrEmailExists):
		return nil, nil, ErrEmailTaken
	case err != nil:
		return nil, nil, err
	}

	r.publish(ctx, cred, profile)
	return cred, profile, nil
}

func (r *Registrar) publish(ctx context.Context, cred *model.Credential, p *model.Profile) {
	if r.events == nil {
		return
	}
	ev := queue.CrewRegisteredEvent{
		CredentialID: cred.ID,
		Username:     cred.Username,
		Email:        cred.Email,
		Airline:      p.Airline,
		Position:     p.Position,
		RegisteredAt: cred.CreatedAt.Format(time.RFC3339),
	}
	if err := r.events.PublishCrewRegistered(ctx, ev); err != nil {
		r.log.Warn("publish crew.registered failed", zap.String("credential_id", cred.ID), zap.Error(err))
	}
}
