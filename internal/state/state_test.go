package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosshub/client/internal/auth"
	"gosshub/client/internal/model"
)

func TestReduce(t *testing.T) {
	docs := []model.Document{{UUID: "d1"}}
	tests := []struct {
		name   string
		start  State
		action Action
		want   State
	}{
		{
			name:   "jwt set logs in",
			action: SetJWT("tok"),
			want:   State{LoggedIn: true, JWT: "tok"},
		},
		{
			name:   "login keeps token",
			start:  State{JWT: "tok"},
			action: Login(),
			want:   State{LoggedIn: true, JWT: "tok"},
		},
		{
			name:   "logout clears identity",
			start:  State{LoggedIn: true, JWT: "tok", User: Identity{Username: "avery"}, Documents: docs},
			action: Logout(),
			want:   State{Documents: docs},
		},
		{
			name:   "user set",
			action: SetUser(Identity{Username: "avery", Admin: true}),
			want:   State{User: Identity{Username: "avery", Admin: true}},
		},
		{
			name:   "documents set",
			action: SetDocuments(docs),
			want:   State{Documents: docs},
		},
		{
			name:   "unknown kind",
			start:  State{JWT: "tok"},
			action: Action{Kind: "nope"},
			want:   State{JWT: "tok"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Reduce(tc.start, tc.action))
		})
	}
}

func TestReduceDoesNotAliasDocuments(t *testing.T) {
	docs := []model.Document{{UUID: "d1"}}
	next := Reduce(State{}, SetDocuments(docs))
	docs[0].UUID = "changed"
	assert.Equal(t, "d1", next.Documents[0].UUID)
}

type fakeTokens struct {
	token   string
	expiry  time.Time
	cleared int
	saveErr error
}

func (f *fakeTokens) Load(context.Context) (string, error) {
	if f.token == "" {
		return "", ErrNoToken
	}
	return f.token, nil
}

func (f *fakeTokens) Save(_ context.Context, token string, expiresAt time.Time) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.token = token
	f.expiry = expiresAt
	return nil
}

func (f *fakeTokens) Clear(context.Context) error {
	f.token = ""
	f.cleared++
	return nil
}

func mint(t *testing.T, username string, admin bool, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Username:         username,
		Admin:            admin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestStoreDispatchPersistsToken(t *testing.T) {
	ctx := context.Background()
	tokens := &fakeTokens{}
	store := NewStore(tokens)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := mint(t, "avery", true, exp)

	got, err := store.Dispatch(ctx, SetJWT(token))
	require.NoError(t, err)
	assert.True(t, got.LoggedIn)
	assert.Equal(t, Identity{Username: "avery", Admin: true}, got.User)
	assert.Equal(t, token, tokens.token)
	assert.True(t, exp.Equal(tokens.expiry))

	got, err = store.Dispatch(ctx, Logout())
	require.NoError(t, err)
	assert.False(t, got.LoggedIn)
	assert.Empty(t, store.Token())
	assert.Equal(t, 1, tokens.cleared)
}

func TestStoreRejectsUnreadableToken(t *testing.T) {
	store := NewStore(&fakeTokens{})
	got, err := store.Dispatch(context.Background(), SetJWT("garbage"))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.False(t, got.LoggedIn)
	assert.Empty(t, got.JWT)
}

func TestStoreSaveFailure(t *testing.T) {
	boom := errors.New("disk full")
	store := NewStore(&fakeTokens{saveErr: boom})
	got, err := store.Dispatch(context.Background(), SetJWT(mint(t, "avery", false, time.Now().Add(time.Hour))))
	assert.ErrorIs(t, err, boom)
	assert.True(t, got.LoggedIn)
}

func TestStoreRestore(t *testing.T) {
	ctx := context.Background()
	token := mint(t, "avery", false, time.Now().Add(time.Hour))
	store := NewStore(&fakeTokens{token: token})
	require.NoError(t, store.Restore(ctx))

	got := store.State()
	assert.False(t, got.LoggedIn)
	assert.Equal(t, token, got.JWT)
	assert.Equal(t, "avery", got.User.Username)

	empty := NewStore(&fakeTokens{})
	require.NoError(t, empty.Restore(ctx))
	assert.Empty(t, empty.Token())

	broken := &fakeTokens{token: "garbage"}
	require.NoError(t, NewStore(broken).Restore(ctx))
	assert.Equal(t, 1, broken.cleared)
}

func TestStoreExpired(t *testing.T) {
	store := NewStore(nil)
	assert.False(t, store.Expired())

	_, err := store.Dispatch(context.Background(), SetJWT(mint(t, "avery", false, time.Now().Add(-time.Minute))))
	require.NoError(t, err)
	assert.True(t, store.Expired())
}
