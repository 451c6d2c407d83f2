package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"blog_backend/internal/logging"
	"blog_backend/internal/model"
	"blog_backend/internal/repository"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 20
	minPasswordLength = 6
	maxPasswordBytes  = 72
)

// CredentialStore hashes and checks passwords. utils.PasswordHasher is the
// production implementation.
type CredentialStore interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenIssuer signs access tokens for a user.
type TokenIssuer interface {
	GenerateToken(username string, userID int64) (string, error)
}

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, string, error)
	Authenticate(ctx context.Context, username, password string) bool
	Me(ctx context.Context, identity *model.Identity) (*model.User, error)
}

type authService struct {
	userRepo     repository.UserRepository
	hasher       CredentialStore
	tokens       TokenIssuer
	log          logging.Logger
	initialAdmin string
}

// NewAuthService creates a new AuthService. A user registering with the
// initialAdmin username gets the ADMIN role.
func NewAuthService(userRepo repository.UserRepository, hasher CredentialStore, tokens TokenIssuer, log logging.Logger, initialAdmin string) AuthService {
	return &authService{
		userRepo:     userRepo,
		hasher:       hasher,
		tokens:       tokens,
		log:          log,
		initialAdmin: strings.TrimSpace(initialAdmin),
	}
}

func validateCredentials(username, password string) error {
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return invalidInput(fmt.Sprintf("username must be %d-%d characters", minUsernameLength, maxUsernameLength))
	}
	if len(password) < minPasswordLength {
		return invalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return invalidInput(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

// Register creates a new user account
func (s *authService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := model.RoleUser
	if s.initialAdmin != "" && username == s.initialAdmin {
		role = model.RoleAdmin
		s.log.Info(ctx, "registering initial admin", "username", username)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         role,
		Enabled:      true,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// verify returns the enabled user matching the credentials, or nil.
func (s *authService) verify(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || len(password) > maxPasswordBytes {
		return nil, nil
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error finding user by username: %w", err)
	}
	if user == nil || !user.Enabled {
		return nil, nil
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}

// Login authenticates a user and returns a signed token
func (s *authService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	user, err := s.verify(ctx, username, password)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		s.log.Warn(ctx, "login failed", "username", strings.TrimSpace(username))
		return nil, "", ErrInvalidLogin
	}

	token, err := s.tokens.GenerateToken(user.Username, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return user, token, nil
}

// Authenticate reports whether the credentials belong to an enabled user.
func (s *authService) Authenticate(ctx context.Context, username, password string) bool {
	user, err := s.verify(ctx, username, password)
	if err != nil {
		s.log.Error(ctx, "authentication lookup failed", "error", err)
		return false
	}
	return user != nil
}

// Me returns the account behind a resolved identity
func (s *authService) Me(ctx context.Context, identity *model.Identity) (*model.User, error) {
	if identity == nil {
		return nil, ErrInvalidLogin
	}
	user, err := s.userRepo.FindByID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
