package repository

import (
	"context"
	"errors"
	"fmt"

	"blog_backend/internal/model"

	"github.com/jackc/pgx/v5"
)

// CommentRepository defines operations for comment data
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id int64) (*model.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id int64) error
}

type commentRepository struct {
	db DBTX
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepository{db: db}
}

const commentSelect = `SELECT c.id, c.post_id, c.content, c.author_id, u.username, c.version, c.created_at, c.updated_at
            FROM comments c JOIN users u ON u.id = c.author_id`

func scanComment(row pgx.Row) (*model.Comment, error) {
	c := &model.Comment{}
	if err := row.Scan(&c.ID, &c.PostID, &c.Content, &c.AuthorID, &c.AuthorUsername, &c.Version, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new comment
func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	sql := `INSERT INTO comments (post_id, author_id, content, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5) RETURNING id, version`
	err := r.db.QueryRow(ctx, sql, c.PostID, c.AuthorID, c.Content, c.CreatedAt, c.UpdatedAt).Scan(&c.ID, &c.Version)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// FindByID retrieves a comment, or nil when absent
func (r *commentRepository) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find comment by ID: %w", err)
	}
	return c, nil
}

// ListByPost returns the comments of a post, oldest first
func (r *commentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	rows, err := r.db.Query(ctx, commentSelect+` WHERE c.post_id = $1 ORDER BY c.id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}
	return comments, nil
}

// Update rewrites the content if the stored version still matches
func (r *commentRepository) Update(ctx context.Context, c *model.Comment) error {
	return WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql := `UPDATE comments SET content = $1, version = version + 1, updated_at = NOW()
                WHERE id = $2 AND version = $3 RETURNING version, updated_at`
		err := tx.QueryRow(ctx, sql, c.Content, c.ID, c.Version).Scan(&c.Version, &c.UpdatedAt)
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to update comment: %w", err)
		}
		return missingOrConflict(ctx, tx, "comments", c.ID)
	})
}

// Delete removes a comment
func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
