package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"blog_backend/internal/logging"
	"blog_backend/internal/model"
	"blog_backend/internal/repository"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	maxTitleLength          = 100
	maxContentLength        = 2000
	maxSecretPasswordLength = 50
	minSearchQueryLength    = 2
	maxSearchKeywords       = 5
)

// PostService provides post reading and authoring
type PostService interface {
	ListPosts(ctx context.Context, viewer *model.Identity, page model.Page) ([]model.PostResponse, error)
	SearchPosts(ctx context.Context, viewer *model.Identity, query string) ([]model.PostResponse, error)
	GetPost(ctx context.Context, id int64, viewer *model.Identity) (*model.PostResponse, error)
	VerifySecretPassword(ctx context.Context, id int64, viewer *model.Identity, password string) (*model.PostResponse, error)
	CreatePost(ctx context.Context, authorID int64, req model.CreatePostRequest) (*model.PostResponse, error)
	UpdatePost(ctx context.Context, id, viewerID int64, req model.UpdatePostRequest) (*model.PostResponse, error)
	DeletePost(ctx context.Context, id, viewerID int64) error
}

type postService struct {
	postRepo repository.PostRepository
	hasher   CredentialStore
	log      logging.Logger
}

// NewPostService creates a new PostService
func NewPostService(postRepo repository.PostRepository, hasher CredentialStore, log logging.Logger) PostService {
	return &postService{postRepo: postRepo, hasher: hasher, log: log}
}

// NewPage validates a 1-based page request. Zero values select the defaults.
func NewPage(number, size int) (model.Page, error) {
	if number == 0 {
		number = 1
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if number < 1 {
		return model.Page{}, invalidInput("page must be at least 1")
	}
	if size < 1 || size > MaxPageSize {
		return model.Page{}, invalidInput(fmt.Sprintf("size must be between 1 and %d", MaxPageSize))
	}
	return model.Page{Number: number, Size: size}, nil
}

func (s *postService) ListPosts(ctx context.Context, viewer *model.Identity, page model.Page) ([]model.PostResponse, error) {
	posts, err := s.postRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return presentAll(posts, viewer, model.ViewList), nil
}

// SearchPosts returns public posts containing every whitespace separated
// keyword of query in the title, content or author name.
func (s *postService) SearchPosts(ctx context.Context, viewer *model.Identity, query string) ([]model.PostResponse, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchQueryLength {
		return nil, invalidInput(fmt.Sprintf("search query must be at least %d characters", minSearchQueryLength))
	}

	keywords := strings.Fields(query)
	if len(keywords) > maxSearchKeywords {
		keywords = keywords[:maxSearchKeywords]
	}

	posts, err := s.postRepo.Search(ctx, model.SearchFilter{Keywords: keywords, PublicOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return presentAll(posts, viewer, model.ViewSearch), nil
}

func (s *postService) find(ctx context.Context, id int64) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) GetPost(ctx context.Context, id int64, viewer *model.Identity) (*model.PostResponse, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := PresentPost(post, EvaluateAccess(post, viewer, false), model.ViewDetail)
	return &resp, nil
}

// VerifySecretPassword returns the post unlocked for this response only.
func (s *postService) VerifySecretPassword(ctx context.Context, id int64, viewer *model.Identity, password string) (*model.PostResponse, error) {
	password = strings.TrimSpace(password)
	if password == "" {
		return nil, invalidInput("password is required")
	}

	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !post.IsSecret {
		resp := PresentPost(post, EvaluateAccess(post, viewer, false), model.ViewDetail)
		return &resp, nil
	}

	if post.SecretPasswordHash == nil || !s.hasher.Verify(password, *post.SecretPasswordHash) {
		s.log.Warn(ctx, "secret post password mismatch", "post_id", id)
		return nil, ErrWrongSecretPassword
	}

	resp := PresentPost(post, EvaluateAccess(post, viewer, true), model.ViewDetail)
	return &resp, nil
}

func validatePostFields(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(title); n < 1 || n > maxTitleLength {
		return "", "", invalidInput(fmt.Sprintf("title must be 1-%d characters", maxTitleLength))
	}
	if n := utf8.RuneCountInString(content); n < 1 || n > maxContentLength {
		return "", "", invalidInput(fmt.Sprintf("content must be 1-%d characters", maxContentLength))
	}
	return title, content, nil
}

// hashSecret validates and hashes a new secret password. A nil result with
// a nil error means no password was supplied.
func (s *postService) hashSecret(password *string) (*string, error) {
	if password == nil {
		return nil, nil
	}
	p := strings.TrimSpace(*password)
	if n := utf8.RuneCountInString(p); n < 1 || n > maxSecretPasswordLength {
		return nil, invalidInput(fmt.Sprintf("secret password must be 1-%d characters", maxSecretPasswordLength))
	}
	hash, err := s.hasher.Hash(p)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret password: %w", err)
	}
	return &hash, nil
}

func (s *postService) CreatePost(ctx context.Context, authorID int64, req model.CreatePostRequest) (*model.PostResponse, error) {
	title, content, err := validatePostFields(req.Title, req.Content)
	if err != nil {
		return nil, err
	}

	var hash *string
	if req.IsSecret {
		if hash, err = s.hashSecret(req.SecretPassword); err != nil {
			return nil, err
		}
		if hash == nil {
			return nil, invalidInput("secret posts require a password")
		}
	}

	now := time.Now()
	post := &model.Post{
		Title:              title,
		Content:            content,
		AuthorID:           authorID,
		IsSecret:           req.IsSecret,
		SecretPasswordHash: hash,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	s.log.Info(ctx, "post created", "post_id", post.ID, "author_id", authorID, "is_secret", post.IsSecret)

	// Reload for the joined author name.
	stored, err := s.find(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	resp := PresentPost(stored, EvaluateAccess(stored, &model.Identity{UserID: authorID}, false), model.ViewDetail)
	return &resp, nil
}

func (s *postService) UpdatePost(ctx context.Context, id, viewerID int64, req model.UpdatePostRequest) (*model.PostResponse, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(post, viewerID, "edit this post"); err != nil {
		s.log.Warn(ctx, "forbidden post update", "post_id", id, "user_id", viewerID)
		return nil, err
	}
	if req.Version != nil && *req.Version != post.Version {
		return nil, ErrStaleVersion
	}

	title, content, err := validatePostFields(req.Title, req.Content)
	if err != nil {
		return nil, err
	}

	// A blank password on update means the stored one is kept.
	newPassword := req.SecretPassword
	if newPassword != nil && strings.TrimSpace(*newPassword) == "" {
		newPassword = nil
	}

	hash := post.SecretPasswordHash
	if req.IsSecret {
		newHash, err := s.hashSecret(newPassword)
		if err != nil {
			return nil, err
		}
		if newHash != nil {
			hash = newHash
		}
		if hash == nil {
			return nil, invalidInput("secret posts require a password")
		}
	} else {
		hash = nil
	}

	post.Title = title
	post.Content = content
	post.IsSecret = req.IsSecret
	post.SecretPasswordHash = hash
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, storeError(err, ErrPostNotFound, "update post")
	}
	s.log.Info(ctx, "post updated", "post_id", id, "version", post.Version)

	resp := PresentPost(post, EvaluateAccess(post, &model.Identity{UserID: viewerID}, false), model.ViewDetail)
	return &resp, nil
}

func (s *postService) DeletePost(ctx context.Context, id, viewerID int64) error {
	post, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := AssertOwner(post, viewerID, "delete this post"); err != nil {
		s.log.Warn(ctx, "forbidden post delete", "post_id", id, "user_id", viewerID)
		return err
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return storeError(err, ErrPostNotFound, "delete post")
	}
	s.log.Info(ctx, "post deleted", "post_id", id)
	return nil
}
