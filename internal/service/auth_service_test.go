package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"blog_backend/internal/model"
	"blog_backend/internal/repository"
	"blog_backend/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(store *repository.MemoryStore, initialAdmin string) AuthService {
	return NewAuthService(store.Users(), plainHasher{}, stubTokens{}, quietLogger(), initialAdmin)
}

func TestAuthService_Register(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newAuthService(store, "")

	user, err := svc.Register(context.Background(), "  alice  ", "secret1")

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.True(t, user.Enabled)
	assert.NotEqual(t, "secret1", user.PasswordHash)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newAuthService(store, "")

	_, err := svc.Register(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice", "another1")
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	svc := newAuthService(repository.NewMemoryStore(), "")

	cases := map[string][2]string{
		"short username":   {"al", "secret1"},
		"long username":    {strings.Repeat("a", 21), "secret1"},
		"blank username":   {"   ", "secret1"},
		"short password":   {"alice", "12345"},
		"password too big": {"alice", strings.Repeat("p", 73)},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), c[0], c[1])
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAuthService_Register_InitialAdmin(t *testing.T) {
	svc := newAuthService(repository.NewMemoryStore(), "root")

	admin, err := svc.Register(context.Background(), "root", "secret1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	user, err := svc.Register(context.Background(), "rooty", "secret1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
}

func TestAuthService_Login(t *testing.T) {
	svc := newAuthService(repository.NewMemoryStore(), "")
	registered, err := svc.Register(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "alice", "secret1")

	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "token-for-alice", token)
}

func TestAuthService_Login_Failures(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newAuthService(store, "")
	alice, err := svc.Register(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "bob", "secret2")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, _, err = svc.Login(context.Background(), "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = store.Users().SetEnabled(context.Background(), alice.ID, false)
	require.NoError(t, err)
	_, _, err = svc.Login(context.Background(), "alice", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	// One message for every failure.
	assert.Equal(t, ErrInvalidLogin.Error(), err.Error())
}

func TestAuthService_Authenticate_RoundTrip(t *testing.T) {
	hasher, err := utils.NewPasswordHasher(utils.MinPasswordCost)
	require.NoError(t, err)
	svc := NewAuthService(repository.NewMemoryStore().Users(), hasher, stubTokens{}, quietLogger(), "")

	_, err = svc.Register(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	assert.True(t, svc.Authenticate(context.Background(), "alice", "secret1"))
	assert.False(t, svc.Authenticate(context.Background(), "alice", "secret2"))
	assert.False(t, svc.Authenticate(context.Background(), "bob", "secret1"))
}

func TestAuthService_LoginTokenCarriesUser(t *testing.T) {
	jwtUtil, err := utils.NewJWTUtil("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)
	svc := NewAuthService(repository.NewMemoryStore().Users(), plainHasher{}, jwtUtil, quietLogger(), "")

	registered, err := svc.Register(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	_, token, err := svc.Login(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	username, err := jwtUtil.ExtractUsername(token)
	require.NoError(t, err)
	userID, err := jwtUtil.ExtractUserID(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.Equal(t, registered.ID, userID)
}

func TestAuthService_Me(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newAuthService(store, "")
	alice := addUser(t, store, "alice")

	user, err := svc.Me(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.Me(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.Me(context.Background(), &model.Identity{UserID: 999})
	assert.ErrorIs(t, err, ErrNotFound)
}
