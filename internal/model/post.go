package model

import "time"

// Post is a blog entry. A secret post always carries a password hash and a
// public one never does.
type Post struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Content            string    `json:"content"`
	AuthorID           int64     `json:"author_id"`
	AuthorUsername     string    `json:"author_username"`
	IsSecret           bool      `json:"is_secret"`
	SecretPasswordHash *string   `json:"-"`
	Version            int64     `json:"version"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (p *Post) OwnerID() int64 { return p.AuthorID }

// VisibilityState is the outcome of evaluating a (post, viewer) pair.
type VisibilityState int

const (
	StatePublic VisibilityState = iota
	StateSecretAsAuthor
	StateSecretUnlocked
	StateSecretLocked
)

func (s VisibilityState) String() string {
	switch s {
	case StatePublic:
		return "PUBLIC"
	case StateSecretAsAuthor:
		return "SECRET_AS_AUTHOR"
	case StateSecretUnlocked:
		return "SECRET_UNLOCKED"
	case StateSecretLocked:
		return "SECRET_LOCKED"
	default:
		return "UNKNOWN"
	}
}

// AccessDecision is computed per request and never stored.
type AccessDecision struct {
	ViewerID  *int64
	IsAuthor  bool
	HasAccess bool
	State     VisibilityState
}

// PostView selects how a locked secret post is presented.
type PostView int

const (
	ViewList PostView = iota
	ViewDetail
	ViewSearch
)

// PostResponse is a post shaped for one viewer.
type PostResponse struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	AuthorID       int64     `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	IsSecret       bool      `json:"is_secret"`
	HasAccess      bool      `json:"has_access"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreatePostRequest struct {
	Title          string  `json:"title" binding:"required,notblank"`
	Content        string  `json:"content" binding:"required,notblank"`
	IsSecret       bool    `json:"is_secret"`
	SecretPassword *string `json:"secret_password,omitempty"`
}

// UpdatePostRequest replaces title and content. A nil SecretPassword on a
// secret post keeps the stored one. Version, when set, must match.
type UpdatePostRequest struct {
	Title          string  `json:"title" binding:"required,notblank"`
	Content        string  `json:"content" binding:"required,notblank"`
	IsSecret       bool    `json:"is_secret"`
	SecretPassword *string `json:"secret_password,omitempty"`
	Version        *int64  `json:"version,omitempty"`
}

type VerifyPasswordRequest struct {
	Password string `json:"password" binding:"required,max=50"`
}

// Page is a 1-based pagination window.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// SearchFilter holds the keywords that every matching post must contain.
type SearchFilter struct {
	Keywords   []string
	PublicOnly bool
}
