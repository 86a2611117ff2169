package service

import (
	"context"
	"fmt"
	"strings"

	"chefin-server/internal/domain"
	"chefin-server/internal/repository"
)

// PostInput carries the client-controlled fields of a post. The owning user
// id is deliberately absent: it is always stamped from the authenticated
// caller, never taken from the payload.
type PostInput struct {
	Title         string
	Description   string
	ImageURL      string
	Labels        []string
	WhatsIncluded []string
	Overview      string
	MeetingPoint  domain.MeetingPoint
}

// PostService owns post lifecycle and the ownership rules around it.
type PostService interface {
	Create(ctx context.Context, ownerID int64, input PostInput) (*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, filter repository.PostFilter) ([]domain.Post, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Post, error)
	Update(ctx context.Context, callerID, id int64, input PostInput) (*domain.Post, error)
	Delete(ctx context.Context, callerID, id int64) error
	AddReview(ctx context.Context, callerID, postID int64, rating int, comment string) (*domain.Post, error)
}

type postService struct {
	posts repository.PostRepository
	users repository.UserRepository
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository) PostService {
	return &postService{
		posts: posts,
		users: users,
	}
}

func (s *postService) Create(ctx context.Context, ownerID int64, input PostInput) (*domain.Post, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	post := &domain.Post{
		UserID:          owner.ID,
		Username:        owner.Username,
		ProfileImageURL: owner.ProfileImageURL,
		Title:           input.Title,
		Description:     input.Description,
		ImageURL:        input.ImageURL,
		Labels:          input.Labels,
		WhatsIncluded:   input.WhatsIncluded,
		Overview:        input.Overview,
		MeetingPoint:    input.MeetingPoint,
		Reviews:         []domain.Review{},
	}

	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, filter repository.PostFilter) ([]domain.Post, error) {
	return s.posts.List(ctx, filter)
}

func (s *postService) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Post, error) {
	return s.posts.List(ctx, repository.PostFilter{UserID: &ownerID})
}

func (s *postService) Update(ctx context.Context, callerID, id int64, input PostInput) (*domain.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != callerID {
		return nil, ErrNotOwner
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	post.Title = input.Title
	post.Description = input.Description
	post.ImageURL = input.ImageURL
	post.Labels = input.Labels
	post.WhatsIncluded = input.WhatsIncluded
	post.Overview = input.Overview
	post.MeetingPoint = input.MeetingPoint

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, callerID, id int64) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != callerID {
		return ErrNotOwner
	}
	return s.posts.Delete(ctx, id)
}

func (s *postService) AddReview(ctx context.Context, callerID, postID int64, rating int, comment string) (*domain.Post, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	reviewer, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.Get(ctx, postID); err != nil {
		return nil, err
	}

	review := domain.Review{
		User:    reviewer.Username,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.posts.AppendReview(ctx, postID, review); err != nil {
		return nil, err
	}
	return s.Get(ctx, postID)
}
