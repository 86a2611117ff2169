package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"chefin-server/internal/domain"
	"chefin-server/internal/identity"
	"chefin-server/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository for service tests.
type fakeUserRepo struct {
	mu           sync.Mutex
	nextID       int64
	users        map[int64]*domain.User
	tokens       map[int64][]string
	failAddToken bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[int64]*domain.User),
		tokens: make(map[int64][]string),
	}
}

func (f *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return 0, fmt.Errorf("user already exists")
		}
	}
	f.nextID++
	user.ID = f.nextID
	clone := *user
	f.users[user.ID] = &clone
	return user.ID, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []domain.User
	for id := int64(1); id <= f.nextID; id++ {
		if user, ok := f.users[id]; ok {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return fmt.Errorf("user not found")
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return fmt.Errorf("user not found")
	}
	delete(f.users, id)
	delete(f.tokens, id)
	return nil
}

func (f *fakeUserRepo) AddRefreshToken(ctx context.Context, userID int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAddToken {
		return errors.New("store unavailable")
	}
	f.tokens[userID] = append(f.tokens[userID], token)
	return nil
}

func (f *fakeUserRepo) ConsumeRefreshToken(ctx context.Context, userID int64, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	active := f.tokens[userID]
	idx := slices.Index(active, token)
	if idx < 0 {
		return false, nil
	}
	f.tokens[userID] = slices.Delete(active, idx, idx+1)
	return true, nil
}

func (f *fakeUserRepo) RevokeRefreshTokens(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[userID] = nil
	return nil
}

func (f *fakeUserRepo) activeTokens(userID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tokens[userID])
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// fakePostRepo is an in-memory PostRepository for service tests.
type fakePostRepo struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]*domain.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*domain.Post)}
}

func (f *fakePostRepo) Init(ctx context.Context) error { return nil }

func (f *fakePostRepo) Create(ctx context.Context, post *domain.Post) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	post.ID = f.nextID
	clone := *post
	f.posts[post.ID] = &clone
	return post.ID, nil
}

func (f *fakePostRepo) Get(ctx context.Context, id int64) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return nil, fmt.Errorf("post not found")
	}
	clone := *post
	clone.Reviews = slices.Clone(post.Reviews)
	return &clone, nil
}

func (f *fakePostRepo) List(ctx context.Context, filter repository.PostFilter) ([]domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var posts []domain.Post
	for id := int64(1); id <= f.nextID; id++ {
		post, ok := f.posts[id]
		if !ok {
			continue
		}
		if filter.UserID != nil && post.UserID != *filter.UserID {
			continue
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

func (f *fakePostRepo) Update(ctx context.Context, post *domain.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[post.ID]; !ok {
		return fmt.Errorf("post not found")
	}
	clone := *post
	f.posts[post.ID] = &clone
	return nil
}

func (f *fakePostRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return fmt.Errorf("post not found")
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) AppendReview(ctx context.Context, postID int64, review domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[postID]
	if !ok {
		return fmt.Errorf("post not found")
	}
	post.Reviews = append(post.Reviews, review)
	return nil
}

var _ repository.PostRepository = (*fakePostRepo)(nil)

// fakeVerifier returns a canned identity, or an error when set.
type fakeVerifier struct {
	identity identity.Identity
	err      error
}

func (f *fakeVerifier) Verify(ctx context.Context, credential string) (*identity.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	id := f.identity
	return &id, nil
}
