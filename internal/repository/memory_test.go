package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"blog_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *MemoryStore, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, PasswordHash: "h", Role: model.RoleUser, Enabled: true, CreatedAt: time.Now()}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestMemoryStore_UserDuplicate(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s, "alice")

	err := s.Users().Create(context.Background(), &model.User{Username: "alice"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryStore_PostLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	alice := seedUser(t, s, "alice")
	posts := s.Posts()

	p := &model.Post{Title: "Hello", Content: "World", AuthorID: alice.ID}
	require.NoError(t, posts.Create(ctx, p))

	found, err := posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.AuthorUsername)

	found.Title = "Hello again"
	require.NoError(t, posts.Update(ctx, found))
	assert.Equal(t, int64(1), found.Version)

	stale := *p
	stale.Title = "stale"
	assert.ErrorIs(t, posts.Update(ctx, &stale), ErrVersionConflict)

	c := &model.Comment{PostID: p.ID, AuthorID: alice.ID, Content: "first"}
	require.NoError(t, s.Comments().Create(ctx, c))

	require.NoError(t, posts.Delete(ctx, p.ID))
	assert.ErrorIs(t, posts.Delete(ctx, p.ID), ErrNotFound)

	gone, err := s.Comments().FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestMemoryStore_StoredHashIsCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	alice := seedUser(t, s, "alice")
	hash := "digest"
	p := &model.Post{Title: "t", Content: "c", AuthorID: alice.ID, IsSecret: true, SecretPasswordHash: &hash}
	require.NoError(t, s.Posts().Create(ctx, p))

	hash = "mutated"

	found, err := s.Posts().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "digest", *found.SecretPasswordHash)
}

func TestMemoryStore_ListAndSearch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	hash := "h"

	require.NoError(t, s.Posts().Create(ctx, &model.Post{Title: "Go tips", Content: "channels", AuthorID: alice.ID}))
	require.NoError(t, s.Posts().Create(ctx, &model.Post{Title: "Rust", Content: "borrowing", AuthorID: bob.ID}))
	require.NoError(t, s.Posts().Create(ctx, &model.Post{Title: "Go secret", Content: "hidden", AuthorID: bob.ID, IsSecret: true, SecretPasswordHash: &hash}))

	page, err := s.Posts().List(ctx, model.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Go secret", page[0].Title)

	page, err = s.Posts().List(ctx, model.Page{Number: 3, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, page)

	found, err := s.Posts().Search(ctx, model.SearchFilter{Keywords: []string{"go"}, PublicOnly: true})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Go tips", found[0].Title)

	found, err = s.Posts().Search(ctx, model.SearchFilter{Keywords: []string{"BOB", "rust"}, PublicOnly: true})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Rust", found[0].Title)
}

func TestMemoryStore_ConcurrentUpdatesOneWinner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	alice := seedUser(t, s, "alice")
	p := &model.Post{Title: "t", Content: "c", AuthorID: alice.ID}
	require.NoError(t, s.Posts().Create(ctx, p))

	const writers = 16
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cp := *p
			cp.Title = "edited"
			results <- s.Posts().Update(ctx, &cp)
		}()
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		switch err {
		case nil:
			wins++
		case ErrVersionConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, writers-1, conflicts)
}

func TestMemoryStore_SetEnabled(t *testing.T) {
	s := NewMemoryStore()
	alice := seedUser(t, s, "alice")

	u, err := s.Users().SetEnabled(context.Background(), alice.ID, false)
	require.NoError(t, err)
	assert.False(t, u.Enabled)

	_, err = s.Users().SetEnabled(context.Background(), 999, false)
	assert.ErrorIs(t, err, ErrNotFound)
}
