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

const maxCommentLength = 1000

// CommentService provides comment operations scoped to a post
type CommentService interface {
	ListComments(ctx context.Context, postID int64, viewer *model.Identity) ([]model.Comment, error)
	AddComment(ctx context.Context, postID, authorID int64, content string) (*model.Comment, error)
	UpdateComment(ctx context.Context, postID, commentID, viewerID int64, content string, version *int64) (*model.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID, viewerID int64) error
}

type commentService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	log         logging.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, log logging.Logger) CommentService {
	return &commentService{postRepo: postRepo, commentRepo: commentRepo, log: log}
}

func validateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n < 1 || n > maxCommentLength {
		return "", invalidInput(fmt.Sprintf("comment must be 1-%d characters", maxCommentLength))
	}
	return content, nil
}

func (s *commentService) findPost(ctx context.Context, postID int64) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// findComment loads a comment that must belong to postID.
func (s *commentService) findComment(ctx context.Context, postID, commentID int64) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	if comment == nil || comment.PostID != postID {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

// ListComments returns the comments of a post, oldest first. Comments of a
// secret post the viewer cannot read are withheld.
func (s *commentService) ListComments(ctx context.Context, postID int64, viewer *model.Identity) ([]model.Comment, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !EvaluateAccess(post, viewer, false).HasAccess {
		return []model.Comment{}, nil
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *commentService) AddComment(ctx context.Context, postID, authorID int64, content string) (*model.Comment, error) {
	content, err := validateCommentContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}

	now := time.Now()
	comment := &model.Comment{
		PostID:    postID,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, storeError(err, ErrPostNotFound, "create comment")
	}
	s.log.Info(ctx, "comment created", "comment_id", comment.ID, "post_id", postID, "author_id", authorID)

	return s.findComment(ctx, postID, comment.ID)
}

func (s *commentService) UpdateComment(ctx context.Context, postID, commentID, viewerID int64, content string, version *int64) (*model.Comment, error) {
	comment, err := s.findComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(comment, viewerID, "edit this comment"); err != nil {
		s.log.Warn(ctx, "forbidden comment update", "comment_id", commentID, "user_id", viewerID)
		return nil, err
	}
	if version != nil && *version != comment.Version {
		return nil, ErrStaleVersion
	}

	content, err = validateCommentContent(content)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, storeError(err, ErrCommentNotFound, "update comment")
	}
	return comment, nil
}

func (s *commentService) DeleteComment(ctx context.Context, postID, commentID, viewerID int64) error {
	comment, err := s.findComment(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if err := AssertOwner(comment, viewerID, "delete this comment"); err != nil {
		s.log.Warn(ctx, "forbidden comment delete", "comment_id", commentID, "user_id", viewerID)
		return err
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return storeError(err, ErrCommentNotFound, "delete comment")
	}
	return nil
}
