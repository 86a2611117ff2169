package service

import (
	"context"
	"fmt"
	"strings"

	"chefin-server/internal/domain"
	"chefin-server/internal/repository"
)

// UserService exposes profile-level operations over user records. Results are
// always sanitized; password hashes never leave this package.
type UserService interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id int64, username, profileImageURL string) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	sanitized := make([]domain.User, len(users))
	for i := range users {
		sanitized[i] = *sanitizeUser(&users[i])
	}
	return sanitized, nil
}

// UpdateProfile changes the display name and, when non-empty, the profile
// image reference. Email and password are not touched here.
func (s *userService) UpdateProfile(ctx context.Context, id int64, username, profileImageURL string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" && profileImageURL == "" {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if username != "" {
		user.Username = username
	}
	if profileImageURL != "" {
		user.ProfileImageURL = profileImageURL
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
