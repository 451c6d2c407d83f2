package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSigningKeyLength is the minimum HS256 key size in bytes.
const MinSigningKeyLength = 32

// DefaultTokenValidity is used when no validity window is configured.
const DefaultTokenValidity = 86400000 * time.Millisecond

const bearerPrefix = "Bearer "

var (
	ErrSigningKeyTooShort = fmt.Errorf("jwt signing key must be at least %d bytes", MinSigningKeyLength)
	ErrInvalidToken       = errors.New("invalid token")
)

// JWTClaims custom claims for JWT. Subject carries the username.
type JWTClaims struct {
	UserID *int64 `json:"userId"`
	jwt.RegisteredClaims
}

// JWTUtil issues and validates identity tokens. It is immutable after
// construction and safe for concurrent use.
type JWTUtil struct {
	secretKey []byte
	validity  time.Duration
	now       func() time.Time
}

type JWTOption func(*JWTUtil)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) JWTOption {
	return func(ju *JWTUtil) { ju.now = now }
}

// NewJWTUtil creates a new JWTUtil. A short key is a configuration error.
func NewJWTUtil(secretKey string, validity time.Duration, opts ...JWTOption) (*JWTUtil, error) {
	if len(secretKey) < MinSigningKeyLength {
		return nil, ErrSigningKeyTooShort
	}
	if validity <= 0 {
		return nil, fmt.Errorf("jwt validity must be positive, got %v", validity)
	}
	ju := &JWTUtil{
		secretKey: []byte(secretKey),
		validity:  validity,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(ju)
	}
	return ju, nil
}

// Validity returns the configured token lifetime.
func (ju *JWTUtil) Validity() time.Duration {
	return ju.validity
}

// GenerateToken generates a new JWT token for the given user
func (ju *JWTUtil) GenerateToken(username string, userID int64) (string, error) {
	now := ju.now()
	claims := &JWTClaims{
		UserID: &userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ju.validity)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ju.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ParseToken verifies signature, expiry and the required claims.
func (ju *JWTUtil) ParseToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ju.secretKey, nil
	}, jwt.WithTimeFunc(ju.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.UserID == nil {
		return nil, fmt.Errorf("%w: missing userId", ErrInvalidToken)
	}
	return claims, nil
}

// ValidateToken reports whether the token is usable. It never fails loudly.
func (ju *JWTUtil) ValidateToken(tokenString string) bool {
	if tokenString == "" {
		return false
	}
	_, err := ju.ParseToken(tokenString)
	return err == nil
}

// ExtractUsername returns the subject of a valid token.
func (ju *JWTUtil) ExtractUsername(tokenString string) (string, error) {
	claims, err := ju.ParseToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractUserID returns the userId claim of a valid token.
func (ju *JWTUtil) ExtractUserID(tokenString string) (int64, error) {
	claims, err := ju.ParseToken(tokenString)
	if err != nil {
		return 0, err
	}
	return *claims.UserID, nil
}

// ParseBearer returns the token from an Authorization header value, or ""
// when the exact "Bearer " prefix is missing.
func ParseBearer(header string) string {
	if len(header) <= len(bearerPrefix) || !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
