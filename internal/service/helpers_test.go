package service

import (
	"context"
	"testing"
	"time"

	"blog_backend/internal/logging"
	"blog_backend/internal/model"
	"blog_backend/internal/repository"

	"github.com/stretchr/testify/require"
)

// plainHasher keeps tests fast; bcrypt itself is covered in utils.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }
func (plainHasher) Verify(password, digest string) bool  { return digest == "plain:"+password }

type stubTokens struct{}

func (stubTokens) GenerateToken(username string, userID int64) (string, error) {
	return "token-for-" + username, nil
}

func addUser(t *testing.T, store *repository.MemoryStore, username string) *model.Identity {
	t.Helper()
	u := &model.User{Username: username, PasswordHash: "plain:pw", Role: model.RoleUser, Enabled: true, CreatedAt: time.Now()}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return &model.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func quietLogger() logging.Logger { return logging.Discard() }
