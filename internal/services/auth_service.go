package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
	"expensetracker/internal/token"
)

// AuthService orchestrates signup and login against the credential store and
// the token service.
type AuthService struct {
	store      *storage.Repository
	tokens     *token.Service
	bcryptCost int
}

func NewAuthService(store *storage.Repository, tokens *token.Service, bcryptCost int) *AuthService {
	return &AuthService{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Signup validates the password policy, checks username uniqueness and
// persists the new user with a bcrypt password hash. No token is issued:
// the user logs in separately.
func (s *AuthService) Signup(ctx context.Context, actualName, username, password string) error {
	if strings.TrimSpace(actualName) == "" {
		return fmt.Errorf("%w: actual_name must not be empty", core.ErrInvalidInput)
	}
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username must not be empty", core.ErrInvalidInput)
	}
	if err := core.ValidatePassword(password); err != nil {
		return err
	}

	_, err := s.store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %q", core.ErrUsernameTaken, username)
	case !storage.IsNotFound(err):
		return fmt.Errorf("check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, actualName, username, string(hash))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "Signup completed", "user_id", user.ID, "username", username)
	return nil
}

// LoginResult is what a successful login hands back to the API surface.
type LoginResult struct {
	User        core.User
	AccessToken string
	TokenType   string
}

// Login checks credentials and issues a bearer token. Unknown usernames and
// wrong passwords deliberately collapse into the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if storage.IsNotFound(err) {
			return LoginResult{}, core.ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("look up user: %w", err)
	}

	// bcrypt comparison is constant-time.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, core.ErrInvalidCredentials
	}

	accessToken, err := s.tokens.Issue(user.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID, "username", username)

	return LoginResult{
		User:        user,
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, nil
}
