package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blog_backend/internal/model"

	"github.com/jackc/pgx/v5"
)

// MaxSearchResults caps the rows returned by a keyword search.
const MaxSearchResults = 100

// PostRepository defines operations for post data
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context, page model.Page) ([]model.Post, error)
	Search(ctx context.Context, filter model.SearchFilter) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
}

type postRepository struct {
	db DBTX
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db DBTX) PostRepository {
	return &postRepository{db: db}
}

const postSelect = `SELECT p.id, p.title, p.content, p.author_id, u.username, p.is_secret,
            COALESCE(p.secret_password_hash, ''), p.version, p.created_at, p.updated_at
            FROM posts p JOIN users u ON u.id = p.author_id`

func scanPost(row pgx.Row) (*model.Post, error) {
	p := &model.Post{}
	var hash string
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.AuthorUsername, &p.IsSecret,
		&hash, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if hash != "" {
		p.SecretPasswordHash = &hash
	}
	return p, nil
}

func collectPosts(rows pgx.Rows) ([]model.Post, error) {
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}
	return posts, nil
}

// Create inserts a new post
func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	sql := `INSERT INTO posts (title, content, author_id, is_secret, secret_password_hash, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, version`
	err := r.db.QueryRow(ctx, sql, p.Title, p.Content, p.AuthorID, p.IsSecret, p.SecretPasswordHash, p.CreatedAt, p.UpdatedAt).
		Scan(&p.ID, &p.Version)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// FindByID retrieves a post with its author, or nil when absent
func (r *postRepository) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	p, err := scanPost(r.db.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}
	return p, nil
}

// List returns one page of posts, newest first
func (r *postRepository) List(ctx context.Context, page model.Page) ([]model.Post, error) {
	rows, err := r.db.Query(ctx, postSelect+` ORDER BY p.id DESC LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	return collectPosts(rows)
}

// Search returns posts where every keyword appears in the title, the content
// or the author's username, ignoring case.
func (r *postRepository) Search(ctx context.Context, filter model.SearchFilter) ([]model.Post, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(postSelect)

	var conditions []string
	args := []interface{}{}
	argCount := 1

	if filter.PublicOnly {
		conditions = append(conditions, "p.is_secret = FALSE")
	}
	for _, kw := range filter.Keywords {
		conditions = append(conditions, fmt.Sprintf("(p.title ILIKE $%d OR p.content ILIKE $%d OR u.username ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, containsPattern(kw))
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY p.id DESC LIMIT %d", MaxSearchResults))

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return collectPosts(rows)
}

// Update writes title, content and secret settings if the stored version
// still equals post.Version. On success post.Version is the new version.
func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	return WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql := `UPDATE posts
                SET title = $1, content = $2, is_secret = $3, secret_password_hash = $4,
                    version = version + 1, updated_at = NOW()
                WHERE id = $5 AND version = $6 RETURNING version, updated_at`
		err := tx.QueryRow(ctx, sql, p.Title, p.Content, p.IsSecret, p.SecretPasswordHash, p.ID, p.Version).
			Scan(&p.Version, &p.UpdatedAt)
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to update post: %w", err)
		}
		return missingOrConflict(ctx, tx, "posts", p.ID)
	})
}

// Delete removes a post; its comments go with it
func (r *postRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
