package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"coliver/internal/kvstore"
	"coliver/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sess, err := e.auth.Register(ctx, RegisterInput{
		FullName:    "  Olena Kovalenko ",
		Email:       " Olena@Example.com ",
		Password:    "secret123",
		PhoneNumber: "+380501234567",
		Bio:         "Designer",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "olena@example.com", sess.User.Email)
	assert.Equal(t, "Olena Kovalenko", sess.User.FullName)
	assert.NotEqual(t, "secret123", sess.User.Password)

	stored, err := e.users.GetByEmail(ctx, "olena@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, len(stored.Password) > 50, "password is stored as a bcrypt hash")

	_, err = e.auth.Register(ctx, RegisterInput{
		FullName:    "Someone Else",
		Email:       "OLENA@example.com",
		Password:    "another1",
		PhoneNumber: "+380501234568",
	})
	appErr := assertAppCode(t, err, models.CodeConflict)
	assert.Equal(t, "email", appErr.Field)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	e := newEnv(t)

	_, err := e.auth.Register(context.Background(), RegisterInput{
		FullName:    "Al",
		Email:       "not-an-email",
		Password:    "123",
		PhoneNumber: "0501234567",
	})
	appErr := assertAppCode(t, err, models.CodeValidation)
	assert.Contains(t, appErr.Fields, "fullName")
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "password")
	assert.Contains(t, appErr.Fields, "phoneNumber")
}

func TestAuthService_Login(t *testing.T) {
	e := newEnv(t)
	e.register(t, "a@example.com")
	ctx := context.Background()

	sess, err := e.auth.Login(ctx, "A@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)

	tests := []struct {
		name      string
		email     string
		password  string
		wantField string
	}{
		{name: "Unknown email", email: "nobody@example.com", password: "secret123", wantField: "email"},
		{name: "Wrong password", email: "a@example.com", password: "wrong-password", wantField: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.auth.Login(ctx, tt.email, tt.password)
			appErr := assertAppCode(t, err, models.CodeCredential)
			assert.Equal(t, tt.wantField, appErr.Field)
		})
	}
}

func TestAuthService_CheckSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "a@example.com")
	sess, err := e.auth.Login(ctx, "a@example.com", "secret123")
	require.NoError(t, err)

	l := e.createListing(t, owner.ID)
	_, err = e.favorites.Save(ctx, l.ID, owner.ID)
	require.NoError(t, err)

	state, err := e.auth.CheckSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.True(t, state.Authenticated)
	require.NotNil(t, state.User)
	assert.Equal(t, owner.ID, state.User.ID)
	assert.Equal(t, []string{l.ID}, state.SavedListings)
	assert.Equal(t, []string{l.ID}, state.Listings)

	for _, token := range []string{"", "garbage", sess.Token + "x"} {
		state, err := e.auth.CheckSession(ctx, token)
		require.NoError(t, err)
		assert.False(t, state.Authenticated)
		assert.Nil(t, state.User)
	}
}

func TestAuthService_CheckSessionEmptyListsSerializeAsArrays(t *testing.T) {
	e := newEnv(t)
	e.register(t, "fresh@example.com")
	sess, err := e.auth.Login(context.Background(), "fresh@example.com", "secret123")
	require.NoError(t, err)

	state, err := e.auth.CheckSession(context.Background(), sess.Token)
	require.NoError(t, err)
	require.True(t, state.Authenticated)

	body, err := json.Marshal(state)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"savedListings":[]`)
	assert.Contains(t, string(body), `"listings":[]`)
}

func TestAuthService_CheckSessionUnknownUser(t *testing.T) {
	e := newEnv(t)
	token, _, err := NewTokenManager(testSecret).Issue(&models.User{ID: "ghost", Email: "ghost@example.com"})
	require.NoError(t, err)

	state, err := e.auth.CheckSession(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, state.Authenticated)
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb, err := kvstore.Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	e := newEnv(t)
	e.auth = NewAuthService(e.users, e.listings, NewTokenManager(testSecret), kvstore.NewRevocationList(rdb))
	e.register(t, "a@example.com")
	ctx := context.Background()

	sess, err := e.auth.Login(ctx, "a@example.com", "secret123")
	require.NoError(t, err)
	_, err = e.auth.Authenticate(ctx, sess.Token)
	require.NoError(t, err)

	e.auth.Logout(ctx, sess.Token)

	_, err = e.auth.Authenticate(ctx, sess.Token)
	assertAppCode(t, err, models.CodeUnauthorized)
	state, err := e.auth.CheckSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.False(t, state.Authenticated)

	// Logout never fails, even for tokens it cannot read.
	e.auth.Logout(ctx, "garbage")
	e.auth.Logout(ctx, "")
}

func TestAuthService_AuthenticateFailsOpen(t *testing.T) {
	e := newEnv(t)
	e.auth = NewAuthService(e.users, e.listings, NewTokenManager(testSecret), &revokerStub{err: errors.New("redis down")})
	e.register(t, "a@example.com")

	sess, err := e.auth.Login(context.Background(), "a@example.com", "secret123")
	require.NoError(t, err)

	claims, err := e.auth.Authenticate(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)

	e.auth.Logout(context.Background(), sess.Token)
}
