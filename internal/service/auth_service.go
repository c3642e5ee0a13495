package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blogsite/internal/models"
	"blogsite/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// Domain errors for auth flows.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmptyPassword      = errors.New("password is empty")
)

// Messages attached to duplicate fields on registration.
const (
	MsgUsernameTaken = "Username is already taken, please choose another"
	MsgEmailTaken    = "Email is already registered, please use another"
)

// AuthService handles user auth logic.
type AuthService struct {
	users repository.Users
}

func NewAuthService(users repository.Users) *AuthService {
	return &AuthService{users: users}
}

// Register checks the field rules and uniqueness, hashes the password and
// creates the user. Rule failures and duplicates come back as FieldErrors.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (int, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	fields := FieldErrors{}

	existing, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		fields["username"] = MsgUsernameTaken
	}

	existing, err = s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		fields["email"] = MsgEmailTaken
	}
	if len(fields) > 0 {
		return 0, fields
	}

	hash, err := hashPassword(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		// multi-byte passwords can pass the character limit
		return 0, FieldErrors{"password": MsgPasswordTooLong}
	}
	if err != nil {
		return 0, err
	}

	id, err := s.users.Create(ctx, models.User{
		Name:         strings.TrimSpace(in.Name),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	})
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		// lost a race with a concurrent registration
		return 0, FieldErrors{"username": MsgUsernameTaken}
	case errors.Is(err, repository.ErrDuplicateEmail):
		return 0, FieldErrors{"email": MsgEmailTaken}
	case err != nil:
		return 0, err
	}
	return id, nil
}

// Authenticate returns the user when the password matches its stored hash.
// Both an unknown user and a wrong password match ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrUserNotFound)
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrInvalidPassword)
	}
	return u, nil
}

// helper: hash password with a per-hash random salt
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
