package model

import "time"

// Role is the coarse route-gating role of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never exposed
	Role         Role      `json:"role"`
	Enabled      bool      `json:"enabled"`
	Version      int64     `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the caller resolved from a valid token for one request.
type Identity struct {
	UserID   int64
	Username string
	Role     Role
}

// ID returns the caller id, or nil for an anonymous caller.
func (i *Identity) ID() *int64 {
	if i == nil {
		return nil
	}
	id := i.UserID
	return &id
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,notblank,min=3,max=20"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public projection of a user
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type SetUserEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type UserStatusResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Enabled  bool   `json:"enabled"`
}
