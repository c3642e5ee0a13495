package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"blogsite/internal/models"
	"blogsite/internal/repository"
)

// mockUsersRepo is a lightweight in-test mock for repository.Users.
type mockUsersRepo struct {
	CreateFn        func(u models.User) (int, error)
	GetByUsernameFn func(username string) (*models.User, error)
	GetByEmailFn    func(email string) (*models.User, error)

	created []models.User
}

func (m *mockUsersRepo) Create(_ context.Context, u models.User) (int, error) {
	m.created = append(m.created, u)
	return m.CreateFn(u)
}

func (m *mockUsersRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFn == nil {
		return nil, nil
	}
	return m.GetByUsernameFn(username)
}

func (m *mockUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if m.GetByEmailFn == nil {
		return nil, nil
	}
	return m.GetByEmailFn(email)
}

func validRegistration() RegisterInput {
	return RegisterInput{Name: " Alice ", Username: "alice", Email: "alice@example.com", Password: "s3cr3t"}
}

// --- Register tests ---

func TestAuthService_Register_SuccessHashesPassword(t *testing.T) {
	mock := &mockUsersRepo{
		CreateFn: func(u models.User) (int, error) { return 42, nil },
	}
	svc := NewAuthService(mock)

	id, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}
	if len(mock.created) != 1 {
		t.Fatalf("expected 1 Create call, got %d", len(mock.created))
	}

	u := mock.created[0]
	if u.Name != "Alice" || u.Username != "alice" || u.Email != "alice@example.com" {
		t.Errorf("unexpected user passed to repo: %+v", u)
	}
	if u.PasswordHash == "s3cr3t" {
		t.Errorf("expected hashed password not equal to raw password")
	}
	if err := verifyPassword(u.PasswordHash, "s3cr3t"); err != nil {
		t.Errorf("stored hash does not verify with plain password: %v", err)
	}
}

func TestAuthService_Register_SaltsEachHash(t *testing.T) {
	a, err := hashPassword("same")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	b, err := hashPassword("same")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if a == b {
		t.Fatalf("expected different hashes for the same password")
	}
}

func TestAuthService_Register_DuplicateFields(t *testing.T) {
	taken := &models.User{ID: 1}
	tests := []struct {
		name       string
		byUsername *models.User
		byEmail    *models.User
		want       FieldErrors
	}{
		{"username", taken, nil, FieldErrors{"username": MsgUsernameTaken}},
		{"email", nil, taken, FieldErrors{"email": MsgEmailTaken}},
		{"both", taken, taken, FieldErrors{"username": MsgUsernameTaken, "email": MsgEmailTaken}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockUsersRepo{
				GetByUsernameFn: func(string) (*models.User, error) { return tt.byUsername, nil },
				GetByEmailFn:    func(string) (*models.User, error) { return tt.byEmail, nil },
				CreateFn: func(models.User) (int, error) {
					t.Fatal("Create should not be called for duplicates")
					return 0, nil
				},
			}
			_, err := NewAuthService(mock).Register(context.Background(), validRegistration())

			var fields FieldErrors
			if !errors.As(err, &fields) {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
			if len(fields) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, fields)
			}
			for k, v := range tt.want {
				if fields[k] != v {
					t.Errorf("field %q: expected %q, got %q", k, v, fields[k])
				}
			}
		})
	}
}

func TestAuthService_Register_UniqueViolationFromRepo(t *testing.T) {
	mock := &mockUsersRepo{
		CreateFn: func(models.User) (int, error) {
			return 0, fmt.Errorf("insert user: %w", repository.ErrDuplicateEmail)
		},
	}
	_, err := NewAuthService(mock).Register(context.Background(), validRegistration())

	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if fields["email"] != MsgEmailTaken {
		t.Fatalf("expected email field error, got %v", fields)
	}
}

func TestAuthService_Register_EmptyPassword(t *testing.T) {
	mock := &mockUsersRepo{
		CreateFn: func(models.User) (int, error) {
			t.Fatal("Create should not be called for empty password")
			return 0, nil
		},
	}
	in := validRegistration()
	in.Password = "   "

	_, err := NewAuthService(mock).Register(context.Background(), in)
	if !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestAuthService_Register_FieldRules(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(in *RegisterInput)
		field string
		want  string
	}{
		{"short username", func(in *RegisterInput) { in.Username = "ab" }, "username", "Field must be at least 4 characters long."},
		{"long username", func(in *RegisterInput) { in.Username = strings.Repeat("u", 26) }, "username", "Field cannot be longer than 25 characters."},
		{"missing name", func(in *RegisterInput) { in.Name = "" }, "name", MsgRequired},
		{"long name", func(in *RegisterInput) { in.Name = strings.Repeat("n", 51) }, "name", "Field cannot be longer than 50 characters."},
		{"short email", func(in *RegisterInput) { in.Email = "e" }, "email", "Field must be at least 6 characters long."},
		{"long password", func(in *RegisterInput) { in.Password = strings.Repeat("p", 73) }, "password", "Field cannot be longer than 72 characters."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &mockUsersRepo{
				CreateFn: func(models.User) (int, error) {
					t.Fatal("Create should not be called for an invalid registration")
					return 0, nil
				},
				GetByUsernameFn: func(string) (*models.User, error) {
					t.Fatal("uniqueness should not be checked for an invalid registration")
					return nil, nil
				},
			}
			in := validRegistration()
			tc.edit(&in)

			_, err := NewAuthService(mock).Register(context.Background(), in)
			var fields FieldErrors
			if !errors.As(err, &fields) {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
			if fields[tc.field] != tc.want {
				t.Fatalf("field %s: got %q, want %q (all: %v)", tc.field, fields[tc.field], tc.want, fields)
			}
		})
	}
}

func TestAuthService_Register_PasswordOverBcryptLimit(t *testing.T) {
	mock := &mockUsersRepo{
		CreateFn: func(models.User) (int, error) {
			t.Fatal("Create should not be called when the password cannot be hashed")
			return 0, nil
		},
	}
	in := validRegistration()
	// 40 characters, 80 bytes
	in.Password = strings.Repeat("é", 40)

	_, err := NewAuthService(mock).Register(context.Background(), in)
	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if fields["password"] != MsgPasswordTooLong {
		t.Fatalf("expected password field error, got %v", fields)
	}
}

func TestAuthService_Register_RepoError(t *testing.T) {
	mock := &mockUsersRepo{
		GetByUsernameFn: func(string) (*models.User, error) { return nil, errors.New("db down") },
	}
	_, err := NewAuthService(mock).Register(context.Background(), validRegistration())
	if err == nil {
		t.Fatalf("expected repo error, got nil")
	}
}

// --- Authenticate tests ---

func TestAuthService_Authenticate_Success(t *testing.T) {
	hash, err := hashPassword("letmein")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	mock := &mockUsersRepo{
		GetByUsernameFn: func(username string) (*models.User, error) {
			if username != "diana" {
				t.Fatalf("expected username 'diana', got %q", username)
			}
			return &models.User{ID: 7, Username: "diana", PasswordHash: hash}, nil
		},
	}

	u, err := NewAuthService(mock).Authenticate(context.Background(), "diana", "letmein")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if u.ID != 7 {
		t.Fatalf("expected user 7, got %d", u.ID)
	}
}

func TestAuthService_Authenticate_UserNotFound(t *testing.T) {
	mock := &mockUsersRepo{}

	_, err := NewAuthService(mock).Authenticate(context.Background(), "ghost", "pw")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestAuthService_Authenticate_InvalidPassword(t *testing.T) {
	correctHash, err := hashPassword("correct")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	mock := &mockUsersRepo{
		GetByUsernameFn: func(string) (*models.User, error) {
			return &models.User{ID: 1, Username: "eve", PasswordHash: correctHash}, nil
		},
	}

	_, err = NewAuthService(mock).Authenticate(context.Background(), "eve", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got: %v", err)
	}
}

func TestAuthService_Authenticate_RepoError(t *testing.T) {
	mock := &mockUsersRepo{
		GetByUsernameFn: func(string) (*models.User, error) { return nil, errors.New("query failed") },
	}

	_, err := NewAuthService(mock).Authenticate(context.Background(), "john", "pw")
	if err == nil {
		t.Fatalf("expected repo error, got nil")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("repo failure must not look like bad credentials")
	}
}
