package repository

import (
	"context"

	"chefin-server/internal/domain"
)

// UserRepository defines persistence operations for User entities and their
// active refresh-token sets.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error

	// AddRefreshToken appends a token to the user's active set.
	AddRefreshToken(ctx context.Context, userID int64, token string) error
	// ConsumeRefreshToken removes the token from the user's active set in a
	// single conditional operation. It reports whether the token was present;
	// two concurrent calls for the same token cannot both observe true.
	ConsumeRefreshToken(ctx context.Context, userID int64, token string) (bool, error)
	// RevokeRefreshTokens clears the user's entire active set.
	RevokeRefreshTokens(ctx context.Context, userID int64) error
}
