package model

import "time"

type Comment struct {
	ID             int64     `json:"id"`
	PostID         int64     `json:"post_id"`
	Content        string    `json:"content"`
	AuthorID       int64     `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c *Comment) OwnerID() int64 { return c.AuthorID }

type CommentRequest struct {
	Content string `json:"content" binding:"required,notblank"`
	Version *int64 `json:"version,omitempty"`
}
