package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"blog_backend/internal/model"
	"blog_backend/internal/repository"

	"github.com/stretchr/testify/suite"
)

type PostServiceSuite struct {
	suite.Suite
	ctx   context.Context
	store *repository.MemoryStore
	svc   PostService
	alice *model.Identity
	bob   *model.Identity
}

func (s *PostServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	s.svc = NewPostService(s.store.Posts(), plainHasher{}, quietLogger())
	s.alice = addUser(s.T(), s.store, "alice")
	s.bob = addUser(s.T(), s.store, "bob")
}

func TestPostServiceSuite(t *testing.T) {
	suite.Run(t, new(PostServiceSuite))
}

func (s *PostServiceSuite) createPublic(title, content string) *model.PostResponse {
	p, err := s.svc.CreatePost(s.ctx, s.alice.UserID, model.CreatePostRequest{Title: title, Content: content})
	s.Require().NoError(err)
	return p
}

func (s *PostServiceSuite) createSecret(password string) *model.PostResponse {
	p, err := s.svc.CreatePost(s.ctx, s.alice.UserID, model.CreatePostRequest{
		Title: "A", Content: "B", IsSecret: true, SecretPassword: strPtr(password),
	})
	s.Require().NoError(err)
	return p
}

func (s *PostServiceSuite) TestCreatePost() {
	p := s.createPublic("  Hello  ", " World ")

	s.Equal("Hello", p.Title)
	s.Equal("World", p.Content)
	s.Equal("alice", p.AuthorUsername)
	s.Equal(s.alice.UserID, p.AuthorID)
	s.True(p.HasAccess)
	s.Equal(int64(0), p.Version)
}

func (s *PostServiceSuite) TestCreatePost_Validation() {
	cases := map[string]model.CreatePostRequest{
		"blank title":        {Title: "   ", Content: "B"},
		"long title":         {Title: strings.Repeat("t", 101), Content: "B"},
		"blank content":      {Title: "A", Content: " "},
		"long content":       {Title: "A", Content: strings.Repeat("c", 2001)},
		"secret no password": {Title: "A", Content: "B", IsSecret: true},
		"secret blank":       {Title: "A", Content: "B", IsSecret: true, SecretPassword: strPtr("  ")},
		"secret too long":    {Title: "A", Content: "B", IsSecret: true, SecretPassword: strPtr(strings.Repeat("x", 51))},
	}
	for name, req := range cases {
		_, err := s.svc.CreatePost(s.ctx, s.alice.UserID, req)
		s.ErrorIs(err, ErrInvalidInput, name)
	}
}

func (s *PostServiceSuite) TestCreatePost_RuneLimits() {
	_, err := s.svc.CreatePost(s.ctx, s.alice.UserID, model.CreatePostRequest{
		Title: strings.Repeat("글", 100), Content: "B",
	})
	s.NoError(err)
}

func (s *PostServiceSuite) TestGetPost_PublicAnonymous() {
	created := s.createPublic("A", "B")

	p, err := s.svc.GetPost(s.ctx, created.ID, nil)

	s.Require().NoError(err)
	s.Equal("A", p.Title)
	s.Equal("B", p.Content)
	s.True(p.HasAccess)
}

func (s *PostServiceSuite) TestGetPost_NotFound() {
	_, err := s.svc.GetPost(s.ctx, 999, nil)
	s.ErrorIs(err, ErrNotFound)
}

func (s *PostServiceSuite) TestGetPost_Secret() {
	created := s.createSecret("x")

	anon, err := s.svc.GetPost(s.ctx, created.ID, nil)
	s.Require().NoError(err)
	s.Equal("A", anon.Title)
	s.Equal(SecretContentPlaceholder, anon.Content)
	s.False(anon.HasAccess)

	other, err := s.svc.GetPost(s.ctx, created.ID, s.bob)
	s.Require().NoError(err)
	s.Equal(SecretContentPlaceholder, other.Content)
	s.False(other.HasAccess)

	author, err := s.svc.GetPost(s.ctx, created.ID, s.alice)
	s.Require().NoError(err)
	s.Equal("B", author.Content)
	s.True(author.HasAccess)
}

func (s *PostServiceSuite) TestVerifySecretPassword() {
	created := s.createSecret("x")

	unlocked, err := s.svc.VerifySecretPassword(s.ctx, created.ID, nil, " x ")
	s.Require().NoError(err)
	s.Equal("B", unlocked.Content)
	s.True(unlocked.HasAccess)

	_, err = s.svc.VerifySecretPassword(s.ctx, created.ID, s.bob, "y")
	s.ErrorIs(err, ErrInvalidCredential)

	_, err = s.svc.VerifySecretPassword(s.ctx, created.ID, nil, "   ")
	s.ErrorIs(err, ErrInvalidInput)

	_, err = s.svc.VerifySecretPassword(s.ctx, 999, nil, "x")
	s.ErrorIs(err, ErrNotFound)

	// Unlocking does not carry over to the next request.
	again, err := s.svc.GetPost(s.ctx, created.ID, nil)
	s.Require().NoError(err)
	s.Equal(SecretContentPlaceholder, again.Content)
	s.False(again.HasAccess)
}

func (s *PostServiceSuite) TestVerifySecretPassword_PublicPost() {
	created := s.createPublic("A", "B")

	p, err := s.svc.VerifySecretPassword(s.ctx, created.ID, nil, "anything")

	s.Require().NoError(err)
	s.Equal("B", p.Content)
	s.True(p.HasAccess)
}

func (s *PostServiceSuite) TestListPosts_MasksLockedTitles() {
	s.createPublic("Open", "visible")
	s.createSecret("x")

	anon, err := s.svc.ListPosts(s.ctx, nil, model.Page{Number: 1, Size: 20})
	s.Require().NoError(err)
	s.Require().Len(anon, 2)
	s.Equal(MaskedTitle, anon[0].Title)
	s.Equal(SecretContentPlaceholder, anon[0].Content)
	s.Equal("Open", anon[1].Title)
	s.Equal("visible", anon[1].Content)

	author, err := s.svc.ListPosts(s.ctx, s.alice, model.Page{Number: 1, Size: 20})
	s.Require().NoError(err)
	s.Equal("A", author[0].Title)
	s.Equal("B", author[0].Content)
}

func (s *PostServiceSuite) TestSearchPosts() {
	s.createPublic("Go concurrency", "channels and goroutines")
	s.createPublic("Rust", "ownership")
	s.createSecret("x")

	found, err := s.svc.SearchPosts(s.ctx, nil, "  go   channels ")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("Go concurrency", found[0].Title)

	byAuthor, err := s.svc.SearchPosts(s.ctx, nil, "ALICE")
	s.Require().NoError(err)
	s.Len(byAuthor, 2)
	for _, p := range byAuthor {
		s.False(p.IsSecret)
	}

	_, err = s.svc.SearchPosts(s.ctx, nil, " g ")
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *PostServiceSuite) TestNewPage() {
	p, err := NewPage(0, 0)
	s.Require().NoError(err)
	s.Equal(model.Page{Number: 1, Size: DefaultPageSize}, p)

	_, err = NewPage(-1, 10)
	s.ErrorIs(err, ErrInvalidInput)
	_, err = NewPage(1, MaxPageSize+1)
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *PostServiceSuite) TestUpdatePost() {
	created := s.createPublic("A", "B")

	updated, err := s.svc.UpdatePost(s.ctx, created.ID, s.alice.UserID, model.UpdatePostRequest{
		Title: "A2", Content: "B2", Version: int64Ptr(created.Version),
	})

	s.Require().NoError(err)
	s.Equal("A2", updated.Title)
	s.Equal("B2", updated.Content)
	s.Equal(created.Version+1, updated.Version)
}

func (s *PostServiceSuite) TestUpdatePost_StaleVersion() {
	created := s.createPublic("A", "B")
	_, err := s.svc.UpdatePost(s.ctx, created.ID, s.alice.UserID, model.UpdatePostRequest{Title: "A2", Content: "B2"})
	s.Require().NoError(err)

	_, err = s.svc.UpdatePost(s.ctx, created.ID, s.alice.UserID, model.UpdatePostRequest{
		Title: "A3", Content: "B3", Version: int64Ptr(created.Version),
	})
	s.ErrorIs(err, ErrConflict)
}

func (s *PostServiceSuite) TestOwnershipIsSymmetric() {
	created := s.createPublic("A", "B")
	carol := addUser(s.T(), s.store, "carol")

	for _, intruder := range []*model.Identity{s.bob, carol} {
		_, err := s.svc.UpdatePost(s.ctx, created.ID, intruder.UserID, model.UpdatePostRequest{Title: "X", Content: "Y"})
		s.ErrorIs(err, ErrForbidden)
		s.ErrorIs(s.svc.DeletePost(s.ctx, created.ID, intruder.UserID), ErrForbidden)
	}

	p, err := s.svc.GetPost(s.ctx, created.ID, nil)
	s.Require().NoError(err)
	s.Equal("A", p.Title)
}

func (s *PostServiceSuite) TestUpdatePost_KeepsSecretPasswordWhenOmitted() {
	created := s.createSecret("x")

	_, err := s.svc.UpdatePost(s.ctx, created.ID, s.alice.UserID, model.UpdatePostRequest{
		Title: "A2", Content: "B2", IsSecret: true,
	})
	s.Require().NoError(err)

	unlocked, err := s.svc.VerifySecretPassword(s.ctx, created.ID, nil, "x")
	s.Require().NoError(err)
	s.Equal("B2", unlocked.Content)
}

func (s *PostServiceSuite) TestUpdatePost_BlankPasswordKeepsStoredOne() {
	created := s.createSecret("x")

	for _, blank := range []string{"", "  "} {
		_, err := s.svc.UpdatePost(s.ctx, created.ID, s.alice.UserID, model.UpdatePostRequest{
			Title: "A2", Content: "B2", IsSecret: true, SecretPassword: strPtr(blank),
		})
		s.Require().NoError(err, "password %q", blank)

		unlocked, err := s.svc.VerifySecretPassword(s.ctx, created.ID, nil, "x")
		s.Require().NoError(err)
		s.Equal("B2", unlocked.Content)
	}
}

func (s *PostServiceSuite) TestCreatePost_BlankSecretPasswordRejected() {
	_, err := s.svc.CreatePost(s.ctx, s.alice.UserID, model.CreatePostRequest{
		Title: "A", Content: "B", IsSecret: true, SecretPassword: strPtr("  "),
	})
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *PostServiceSuite) TestUpdatePost_ChangesSecretPassword() {
	created := s.createSecret("x")

	_, err := s.svc.UpdatePost(s.ctx, created.ID, s.alice.UserID, model.UpdatePostRequest{
		Title: "A", Content: "B", IsSecret: true, SecretPassword: strPtr("z"),
	})
	s.Require().NoError(err)

	_, err = s.svc.VerifySecretPassword(s.ctx, created.ID, nil, "x")
	s.ErrorIs(err, ErrInvalidCredential)
	_, err = s.svc.VerifySecretPassword(s.ctx, created.ID, nil, "z")
	s.NoError(err)
}

func (s *PostServiceSuite) TestUpdatePost_MakePublicClearsPassword() {
	created := s.createSecret("x")

	_, err := s.svc.UpdatePost(s.ctx, created.ID, s.alice.UserID, model.UpdatePostRequest{Title: "A", Content: "B"})
	s.Require().NoError(err)

	stored, err := s.store.Posts().FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.False(stored.IsSecret)
	s.Nil(stored.SecretPasswordHash)

	p, err := s.svc.GetPost(s.ctx, created.ID, nil)
	s.Require().NoError(err)
	s.Equal("B", p.Content)
}

func (s *PostServiceSuite) TestUpdatePost_MakeSecretNeedsPassword() {
	created := s.createPublic("A", "B")

	_, err := s.svc.UpdatePost(s.ctx, created.ID, s.alice.UserID, model.UpdatePostRequest{
		Title: "A", Content: "B", IsSecret: true,
	})
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *PostServiceSuite) TestDeletePost() {
	created := s.createPublic("A", "B")

	s.Require().NoError(s.svc.DeletePost(s.ctx, created.ID, s.alice.UserID))

	_, err := s.svc.GetPost(s.ctx, created.ID, nil)
	s.ErrorIs(err, ErrNotFound)
	s.ErrorIs(s.svc.DeletePost(s.ctx, created.ID, s.alice.UserID), ErrNotFound)
}

func (s *PostServiceSuite) TestConcurrentReadsDoNotLeakUnlock() {
	created := s.createSecret("x")

	var wg sync.WaitGroup
	leaks := make(chan struct{}, 64)
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.svc.VerifySecretPassword(s.ctx, created.ID, nil, "x")
		}()
		go func() {
			defer wg.Done()
			p, err := s.svc.GetPost(s.ctx, created.ID, nil)
			if err == nil && p.HasAccess {
				leaks <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(leaks)

	s.Empty(leaks)
}
