package repository

import (
	"context"

	"chefin-server/internal/domain"
)

// PostFilter narrows post listings. A nil UserID means all posts.
type PostFilter struct {
	UserID *int64
}

// PostRepository exposes persistence operations for Post aggregates.
// Reviews are embedded in the post record.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, filter PostFilter) ([]domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id int64) error
	AppendReview(ctx context.Context, postID int64, review domain.Review) error
}
