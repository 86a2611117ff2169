package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"chefin-server/internal/domain"
	"chefin-server/internal/identity"
	"chefin-server/internal/repository"
	"chefin-server/internal/token"
)

// TokenPair is the result of a successful authentication. The refresh token
// is already persisted in the user's active set when a pair is returned.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService orchestrates registration, login, federated login and the
// refresh-token rotation protocol.
type AuthService interface {
	Register(ctx context.Context, email, password, username string) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)
	LoginWithGoogle(ctx context.Context, credential string) (*domain.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	// Authenticate verifies an access token by signature and expiry alone;
	// no store lookup. Revocation only takes effect at refresh granularity.
	Authenticate(accessToken string) (int64, error)
}

type authService struct {
	users    repository.UserRepository
	tokens   *token.Issuer
	verifier identity.Verifier
}

func NewAuthService(users repository.UserRepository, tokens *token.Issuer, verifier identity.Verifier) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		verifier: verifier,
	}
}

func (s *authService) Register(ctx context.Context, email, password, username string) (*domain.User, *TokenPair, error) {
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)
	username = strings.TrimSpace(username)

	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if password == "" {
		return nil, nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if username == "" {
		return nil, nil, fmt.Errorf("%w: username is required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Username:     username,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil, nil, ErrEmailExists
		}
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return sanitizeUser(user), pair, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	// Federated accounts carry no usable local password.
	if user.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return sanitizeUser(user), pair, nil
}

func (s *authService) LoginWithGoogle(ctx context.Context, credential string) (*domain.User, *TokenPair, error) {
	if s.verifier == nil {
		return nil, nil, errors.New("federated login is not configured")
	}
	if strings.TrimSpace(credential) == "" {
		return nil, nil, ErrInvalidAssertion
	}

	id, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, nil, ErrInvalidAssertion
	}
	email := normalizeEmail(id.Email)
	if email == "" {
		return nil, nil, ErrInvalidAssertion
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, nil, err
		}
		user = &domain.User{
			Email:           email,
			Username:        id.Name,
			ProfileImageURL: id.Picture,
		}
		if _, err := s.users.Create(ctx, user); err != nil {
			return nil, nil, err
		}
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return sanitizeUser(user), pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrForbidden
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, ErrForbidden
	}

	consumed, err := s.users.ConsumeRefreshToken(ctx, userID, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}
	if !consumed {
		// A validly signed token that is no longer in the active set means it
		// was already rotated out: treat as a detected replay and invalidate
		// every outstanding session for this user.
		if err := s.users.RevokeRefreshTokens(ctx, userID); err != nil {
			return nil, fmt.Errorf("revoke refresh tokens: %w", err)
		}
		return nil, ErrForbidden
	}

	// The old token is dead from here on. If issuing the new pair fails the
	// client has to log in again; the consumed token is never resurrected.
	return s.issueTokens(ctx, userID)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return ErrForbidden
	}

	consumed, err := s.users.ConsumeRefreshToken(ctx, userID, refreshToken)
	if err != nil {
		return fmt.Errorf("consume refresh token: %w", err)
	}
	if !consumed {
		return ErrForbidden
	}
	return nil
}

func (s *authService) Authenticate(accessToken string) (int64, error) {
	return s.tokens.VerifyAccess(accessToken)
}

// issueTokens mints an access+refresh pair and persists the refresh token
// into the user's active set. Nothing is returned unless the refresh token
// was durably recorded; an unrecorded token would never survive the replay
// check on its first redemption.
func (s *authService) issueTokens(ctx context.Context, userID int64) (*TokenPair, error) {
	access, err := s.tokens.AccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.RefreshToken(userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.AddRefreshToken(ctx, userID, refresh); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:              user.ID,
		Email:           user.Email,
		Username:        user.Username,
		ProfileImageURL: user.ProfileImageURL,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}
