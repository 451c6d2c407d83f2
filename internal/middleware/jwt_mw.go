package middleware

import (
	"context"
	"net/http"

	"blog_backend/internal/logging"
	"blog_backend/internal/model"
	"blog_backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key holding the *model.Identity of the caller.
const IdentityKey = "identity"

// TokenValidator is the part of utils.JWTUtil the access filter needs.
type TokenValidator interface {
	ValidateToken(tokenString string) bool
	ExtractUsername(tokenString string) (string, error)
	ExtractUserID(tokenString string) (int64, error)
}

// UserLookup loads an account by id. Absent users are (nil, nil).
type UserLookup interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// AccessFilter resolves the caller from a bearer token. It never rejects a
// request: a missing, malformed or expired token, an unknown user or a
// disabled user all mean an anonymous caller. Routes that need a caller
// add RequireAuth.
func AccessFilter(tokens TokenValidator, users UserLookup, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity := resolveIdentity(c, tokens, users, log); identity != nil {
			c.Set(IdentityKey, identity)
		}
		c.Next()
	}
}

func resolveIdentity(c *gin.Context, tokens TokenValidator, users UserLookup, log logging.Logger) *model.Identity {
	token := utils.ParseBearer(c.GetHeader("Authorization"))
	if token == "" || !tokens.ValidateToken(token) {
		return nil
	}

	username, err := tokens.ExtractUsername(token)
	if err != nil {
		return nil
	}
	userID, err := tokens.ExtractUserID(token)
	if err != nil {
		return nil
	}

	ctx := c.Request.Context()
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		log.Warn(ctx, "identity lookup failed", "request_id", c.GetString(RequestIDKey), "user_id", userID, "error", err)
		return nil
	}
	if user == nil || !user.Enabled || user.Username != username {
		return nil
	}

	return &model.Identity{UserID: user.ID, Username: user.Username, Role: user.Role}
}

// CurrentIdentity returns the caller resolved by AccessFilter, or nil.
func CurrentIdentity(c *gin.Context) *model.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*model.Identity)
	return identity
}

// RequireAuth rejects requests without a resolved identity
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.NewErrorResponse(model.CodeUnauthorized, "Authentication required"))
			return
		}
		c.Next()
	}
}
