package service

import (
	"context"

	"blog_backend/internal/logging"
	"blog_backend/internal/model"
	"blog_backend/internal/repository"
)

// UserAdminService holds account management used by administrators
type UserAdminService interface {
	SetUserEnabled(ctx context.Context, userID int64, enabled bool) (*model.User, error)
}

type userAdminService struct {
	userRepo repository.UserRepository
	log      logging.Logger
}

func NewUserAdminService(userRepo repository.UserRepository, log logging.Logger) UserAdminService {
	return &userAdminService{userRepo: userRepo, log: log}
}

// SetUserEnabled enables or disables an account. A disabled account keeps
// its data but cannot log in and its tokens resolve to no identity.
func (s *userAdminService) SetUserEnabled(ctx context.Context, userID int64, enabled bool) (*model.User, error) {
	user, err := s.userRepo.SetEnabled(ctx, userID, enabled)
	if err != nil {
		return nil, storeError(err, ErrUserNotFound, "update user")
	}
	s.log.Info(ctx, "user status changed", "user_id", userID, "enabled", enabled)
	return user, nil
}
