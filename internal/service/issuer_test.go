package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/crewpay/internal/repository"
	"github.com/iliyamo/crewpay/internal/utils"
)

const testSecret = "test-secret"

func newTestIssuer(t *testing.T, stores *memStores) *Issuer {
	t.Helper()
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 4; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	cfg := IssuerConfig{Secret: testSecret, AccessTTL: 5 * time.Minute, RefreshTTLDays: 1}
	return NewIssuer(db, stores, NewBinder(db, stores), cfg, nil)
}

func seedLogin(t *testing.T, stores *memStores, id, username, email, password string) {
	t.Helper()
	stores.seedCrew(id, username, email, "", "")
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	c := stores.creds[id]
	c.PasswordHash = hash
	stores.creds[id] = c
}

func rawClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	mc := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, mc)
	require.NoError(t, err)
	return mc
}

func TestLogin_EnrichesFromBoundProfile(t *testing.T) {
	stores := newMemStores()
	seedLogin(t, stores, "c1", "amira", "amira@x.com", "pw")
	stores.profiles["p1"] = crewProfile("p1", "amira@x.com", "EK", "SCCM")

	pair, err := newTestIssuer(t, stores).Login(context.Background(), "amira", "pw")
	require.NoError(t, err)

	claims, err := utils.ParseAccessToken(testSecret, pair.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, "c1", claims.Subject)
	assert.Equal(t, "amira", claims.Username)
	assert.Equal(t, "EK", claims.Airline)
	assert.Equal(t, "SCCM", claims.Position)
	assert.Equal(t, "p1", claims.ProfileID)
	assert.NotEmpty(t, pair.Refresh.Raw)
	assert.Equal(t, "amira@x.com", pair.User.Email)
}

func TestLogin_WithoutProfileOmitsProfileClaims(t *testing.T) {
	stores := newMemStores()
	seedLogin(t, stores, "c1", "amira", "amira@x.com", "pw")

	pair, err := newTestIssuer(t, stores).Login(context.Background(), "amira", "pw")
	require.NoError(t, err)

	mc := rawClaims(t, pair.Access.Token)
	assert.Equal(t, "c1", mc["sub"])
	for _, k := range []string{"airline", "position", "profile_id"} {
		assert.NotContains(t, mc, k)
	}
}

func TestLogin_EnrichmentErrorIsSwallowed(t *testing.T) {
	mem := newMemStores()
	seedLogin(t, mem, "c1", "amira", "amira@x.com", "pw")
	stores := failingStores{memStores: mem, err: errors.New("profiles table locked")}

	db, _ := newMockDB(t)
	cfg := IssuerConfig{Secret: testSecret, AccessTTL: time.Minute, RefreshTTLDays: 1}
	iss := NewIssuer(db, stores, NewBinder(db, stores), cfg, nil)

	pair, err := iss.Login(context.Background(), "amira", "pw")
	require.NoError(t, err)
	assert.NotContains(t, rawClaims(t, pair.Access.Token), "profile_id")
}

func TestLogin_Rejections(t *testing.T) {
	stores := newMemStores()
	seedLogin(t, stores, "c1", "amira", "amira@x.com", "pw")
	seedLogin(t, stores, "c2", "locked", "locked@x.com", "pw")
	c := stores.creds["c2"]
	c.IsActive = false
	stores.creds["c2"] = c
	iss := newTestIssuer(t, stores)

	for _, tc := range []struct{ user, pass string }{
		{"amira", "wrong"},
		{"nobody", "pw"},
		{"locked", "pw"},
	} {
		_, err := iss.Login(context.Background(), tc.user, tc.pass)
		assert.ErrorIs(t, err, ErrInvalidCredentials, tc.user)
	}
}

func TestRefresh_RotatesAndReenriches(t *testing.T) {
	stores := newMemStores()
	seedLogin(t, stores, "c1", "amira", "amira@x.com", "pw")
	iss := newTestIssuer(t, stores)
	ctx := context.Background()

	first, err := iss.Login(ctx, "amira", "pw")
	require.NoError(t, err)
	assert.NotContains(t, rawClaims(t, first.Access.Token), "airline")

	// profile created after the first login shows up on refresh
	stores.profiles["c1"] = crewProfile("c1", "amira@x.com", "QR", "CCM")

	second, err := iss.Refresh(ctx, first.Refresh.Raw)
	require.NoError(t, err)
	assert.NotEqual(t, first.Refresh.Raw, second.Refresh.Raw)
	claims, err := iss.Verify(second.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, "QR", claims.Airline)
	assert.Equal(t, "c1", claims.ProfileID)

	_, err = iss.Refresh(ctx, first.Refresh.Raw)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_LosingConcurrentRevokeIssuesNothing(t *testing.T) {
	db, mock := newMockDB(t)
	stores := repository.NewMySQLStores()
	cfg := IssuerConfig{Secret: testSecret, AccessTTL: time.Minute, RefreshTTLDays: 1}
	iss := NewIssuer(db, stores, NewBinder(db, stores), cfg, nil)
	hash := utils.HashRefreshRaw("raw-refresh")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT credential_id, expires_at, revoked_at FROM refresh_tokens").WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"credential_id", "expires_at", "revoked_at"}).
			AddRow("c1", time.Now().UTC().Add(time.Hour), nil))
	// another refresh already spent the token
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW\\(\\) WHERE token_hash=").WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	pair, err := iss.Refresh(context.Background(), "raw-refresh")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, pair)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogout(t *testing.T) {
	stores := newMemStores()
	seedLogin(t, stores, "c1", "amira", "amira@x.com", "pw")
	iss := newTestIssuer(t, stores)
	ctx := context.Background()

	a, err := iss.Login(ctx, "amira", "pw")
	require.NoError(t, err)
	b, err := iss.Login(ctx, "amira", "pw")
	require.NoError(t, err)

	require.NoError(t, iss.RevokeRefresh(ctx, a.Refresh.Raw))
	assert.ErrorIs(t, iss.RevokeRefresh(ctx, a.Refresh.Raw), ErrInvalidCredentials)

	require.NoError(t, iss.RevokeAll(ctx, "c1"))
	_, err = iss.Refresh(ctx, b.Refresh.Raw)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerify_RejectsGarbage(t *testing.T) {
	_, err := newTestIssuer(t, newMemStores()).Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
