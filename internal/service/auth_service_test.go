package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefin-server/internal/identity"
	"chefin-server/internal/token"
)

func newAuthFixture(verifier identity.Verifier) (AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	issuer := token.NewIssuer("access-secret", "refresh-secret", time.Hour, 14*24*time.Hour)
	return NewAuthService(users, issuer, verifier), users
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	auth, users := newAuthFixture(nil)

	user, pair, err := auth.Register(ctx, "A@X.com", "p4ssword", "alice")
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "a@x.com", user.Email, "email is lowercase-normalized")
	assert.Empty(t, user.PasswordHash, "hash never leaves the service")
	assert.Len(t, users.activeTokens(user.ID), 1, "refresh token persisted before return")

	loggedIn, loginPair, err := auth.Login(ctx, "a@x.com", "p4ssword")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginPair.RefreshToken)
	assert.Len(t, users.activeTokens(user.ID), 2, "each login appends to the active set")
}

func TestAuthService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture(nil)

	_, _, err := auth.Register(ctx, "", "pw", "name")
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = auth.Register(ctx, "not-an-email", "pw", "name")
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = auth.Register(ctx, "a@x.com", "", "name")
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = auth.Register(ctx, "a@x.com", "   ", "name")
	assert.ErrorIs(t, err, ErrValidation, "whitespace-only password is blank after trimming")
	_, _, err = auth.Register(ctx, "a@x.com", "pw", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture(nil)

	_, _, err := auth.Register(ctx, "a@x.com", "pw", "alice")
	require.NoError(t, err)

	_, _, err = auth.Register(ctx, "A@x.COM", "other", "alice2")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture(nil)

	_, _, err := auth.Register(ctx, "a@x.com", "right", "alice")
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "missing@x.com", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = auth.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RefreshRotation(t *testing.T) {
	ctx := context.Background()
	auth, users := newAuthFixture(nil)

	user, pair, err := auth.Register(ctx, "a@x.com", "pw", "alice")
	require.NoError(t, err)

	rotated, err := auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.Len(t, users.activeTokens(user.ID), 1, "old token consumed, new token recorded")

	// The rotated-in token is redeemable exactly once as well.
	again, err := auth.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, rotated.RefreshToken, again.RefreshToken)
}

func TestAuthService_RefreshReplayRevokesFamily(t *testing.T) {
	ctx := context.Background()
	auth, users := newAuthFixture(nil)

	user, pair, err := auth.Register(ctx, "a@x.com", "pw", "alice")
	require.NoError(t, err)

	// A second session exists alongside the first.
	_, second, err := auth.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	_, err = auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// Replaying the rotated-out token is a detected compromise: every
	// outstanding session for the user dies with it.
	_, err = auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, users.activeTokens(user.ID))

	_, err = auth.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthService_RefreshRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture(nil)

	_, err := auth.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthService_RefreshRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture(nil)

	_, pair, err := auth.Register(ctx, "a@x.com", "pw", "alice")
	require.NoError(t, err)

	_, err = auth.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture(nil)

	_, pair, err := auth.Register(ctx, "a@x.com", "pw", "alice")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, pair.RefreshToken))

	// Repeating with the now-removed token fails, it does not succeed idempotently.
	assert.ErrorIs(t, auth.Logout(ctx, pair.RefreshToken), ErrForbidden)
	_, err = auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthService_LogoutLeavesAccessTokenValid(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture(nil)

	user, pair, err := auth.Register(ctx, "a@x.com", "pw", "alice")
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx, pair.RefreshToken))

	// Access tokens are trusted on signature+expiry alone; logout does not
	// retroactively invalidate them.
	userID, err := auth.Authenticate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestAuthService_GoogleLogin(t *testing.T) {
	ctx := context.Background()
	verifier := &fakeVerifier{identity: identity.Identity{
		Email:   "Fed@X.com",
		Name:    "Fed User",
		Picture: "https://example.com/p.jpg",
	}}
	auth, users := newAuthFixture(verifier)

	user, pair, err := auth.LoginWithGoogle(ctx, "credential")
	require.NoError(t, err)
	assert.Equal(t, "fed@x.com", user.Email)
	assert.Equal(t, "Fed User", user.Username)
	assert.NotEmpty(t, pair.RefreshToken)

	// Second federated login reuses the account.
	again, _, err := auth.LoginWithGoogle(ctx, "credential")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Len(t, users.activeTokens(user.ID), 2)

	// Federated accounts never hold a usable local password.
	_, _, err = auth.Login(ctx, "fed@x.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login(ctx, "fed@x.com", "guess")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GoogleLoginInvalidAssertion(t *testing.T) {
	ctx := context.Background()

	auth, _ := newAuthFixture(&fakeVerifier{err: errors.New("bad token")})
	_, _, err := auth.LoginWithGoogle(ctx, "credential")
	assert.ErrorIs(t, err, ErrInvalidAssertion)

	auth, _ = newAuthFixture(&fakeVerifier{identity: identity.Identity{Name: "no email"}})
	_, _, err = auth.LoginWithGoogle(ctx, "credential")
	assert.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestAuthService_PersistFailureReturnsNoTokens(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	issuer := token.NewIssuer("access-secret", "refresh-secret", time.Hour, time.Hour)
	auth := NewAuthService(users, issuer, nil)

	_, _, err := auth.Register(ctx, "a@x.com", "pw", "alice")
	require.NoError(t, err)

	users.failAddToken = true
	_, pair, err := auth.Login(ctx, "a@x.com", "pw")
	assert.Error(t, err)
	assert.Nil(t, pair, "no token escapes when it was never durably recorded")
}

func TestAuthService_Authenticate(t *testing.T) {
	auth, _ := newAuthFixture(nil)

	user, pair, err := auth.Register(context.Background(), "a@x.com", "pw", "alice")
	require.NoError(t, err)

	userID, err := auth.Authenticate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	_, err = auth.Authenticate("nope")
	assert.Error(t, err)

	// A refresh token is not an access token.
	_, err = auth.Authenticate(pair.RefreshToken)
	assert.Error(t, err)
}
