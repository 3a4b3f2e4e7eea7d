package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/model"
	"github.com/iliyamo/crewpay/internal/repository"
	"github.com/iliyamo/crewpay/internal/utils"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	Access  utils.AccessToken
	Refresh utils.RefreshToken
	User    model.PublicUser
}

// IssuerConfig carries the token settings of an Issuer.
type IssuerConfig struct {
	Secret         string
	AccessTTL      time.Duration
	RefreshTTLDays int
}

// Issuer authenticates credentials and mints tokens.
//
// Issuing an access token has two stages.  The mandatory stage builds the
// base claims of the credential.  The optional stage looks the profile up
// by the credential's email and adds airline, position and profile_id.
// A failure in the optional stage is logged and dropped: a user may log in
// before a profile exists, and that login must still succeed.
type Issuer struct {
	db     *sql.DB
	stores repository.Stores
	binder *Binder
	cfg    IssuerConfig
	log    *zap.Logger
}

func NewIssuer(db *sql.DB, stores repository.Stores, binder *Binder, cfg IssuerConfig, log *zap.Logger) *Issuer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Issuer{db: db, stores: stores, binder: binder, cfg: cfg, log: log}
}

// Login verifies username and password and returns a new token pair.
func (i *Issuer) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	cred, err := i.stores.Credentials(i.db).GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		utils.VerifyDummy(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(cred.PasswordHash, password) || !cred.IsActive {
		return nil, ErrInvalidCredentials
	}
	return i.issuePair(ctx, i.db, cred)
}

// Refresh exchanges a valid refresh token for a new pair.  The presented
// token is revoked and its successor stored in the same transaction.
func (i *Issuer) Refresh(ctx context.Context, raw string) (*TokenPair, error) {
	hash := utils.HashRefreshRaw(raw)
	var pair *TokenPair
	err := database.WithTx(ctx, i.db, nil, func(ctx context.Context, tx database.DBTX) error {
		tokens := i.stores.Tokens(tx)
		credentialID, err := tokens.ValidateRefresh(ctx, hash)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		// The conditional revoke is the spend; a lost race sees zero rows.
		if err := tokens.RevokeByHash(ctx, hash); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidCredentials
			}
			return err
		}
		cred, err := i.stores.Credentials(tx).GetByID(ctx, credentialID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		if !cred.IsActive {
			return ErrInvalidCredentials
		}
		pair, err = i.issuePair(ctx, tx, cred)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Verify checks an access token's signature, expiry and type.
func (i *Issuer) Verify(raw string) (*utils.AccessClaims, error) {
	claims, err := utils.ParseAccessToken(i.cfg.Secret, raw)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

// RevokeRefresh revokes one refresh token.  Unknown, expired or already
// revoked tokens yield ErrInvalidCredentials.
func (i *Issuer) RevokeRefresh(ctx context.Context, raw string) error {
	tokens := i.stores.Tokens(i.db)
	hash := utils.HashRefreshRaw(raw)
	if _, err := tokens.ValidateRefresh(ctx, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if err := tokens.RevokeByHash(ctx, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	return nil
}

// RevokeAll revokes every refresh token of a credential.
func (i *Issuer) RevokeAll(ctx context.Context, credentialID string) error {
	return i.stores.Tokens(i.db).RevokeAllForCredential(ctx, credentialID)
}

func (i *Issuer) issuePair(ctx context.Context, db database.DBTX, cred *model.Credential) (*TokenPair, error) {
	access, err := i.accessToken(ctx, cred)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(i.cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	if err := i.stores.Tokens(db).StoreRefresh(ctx, cred.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh, User: cred.Public()}, nil
}

func (i *Issuer) accessToken(ctx context.Context, cred *model.Credential) (utils.AccessToken, error) {
	claims := utils.NewAccessClaims(cred.ID, cred.Username, i.cfg.AccessTTL)
	i.enrich(ctx, cred, &claims)
	return utils.SignAccessToken(i.cfg.Secret, claims)
}

// enrich is the optional stage.  It never fails.
func (i *Issuer) enrich(ctx context.Context, cred *model.Credential, claims *utils.AccessClaims) {
	p, err := i.binder.ProfileByEmail(ctx, cred.Email)
	if err != nil {
		i.log.Debug("token issued without profile claims",
			zap.String("credential_id", cred.ID), zap.Error(err))
		return
	}
	claims.Airline = p.Airline
	claims.Position = p.Position
	claims.ProfileID = p.ID
}
