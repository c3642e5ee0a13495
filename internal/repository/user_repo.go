package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"blogsite/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository struct {
	sqlBase
}

func NewUserRepository(db *sql.DB, driver string) *UserRepository {
	return &UserRepository{sqlBase{db: db, driver: driver}}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserRepository)(nil)

const (
	insertUserSQL = `INSERT INTO users (name, username, email, password, register_date) VALUES (?, ?, ?, ?, ?) RETURNING id`

	selectUserColumns    = `SELECT id, name, username, email, password, register_date FROM users`
	selectUserByUsername = selectUserColumns + ` WHERE username = ?`
	selectUserByEmail    = selectUserColumns + ` WHERE email = ?`

	pgUniqueViolation = "23505"
)

// Create inserts a new user and returns its ID. A zero RegisteredAt is set to now.
func (r *UserRepository) Create(ctx context.Context, u models.User) (int, error) {
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = time.Now().UTC()
	}

	var id int
	err := r.db.QueryRowContext(ctx, r.q(insertUserSQL),
		u.Name, u.Username, u.Email, u.PasswordHash, u.RegisteredAt.UTC(),
	).Scan(&id)
	if err != nil {
		if dup := userConflict(err); dup != nil {
			return 0, fmt.Errorf("insert user %q: %w", u.Username, dup)
		}
		return 0, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	return id, nil
}

// GetByUsername fetches a user by username. Returns (nil, nil) if not found.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := r.getOne(ctx, selectUserByUsername, username)
	if err != nil {
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return u, nil
}

// GetByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := r.getOne(ctx, selectUserByEmail, email)
	if err != nil {
		return nil, fmt.Errorf("select user by email %q: %w", email, err)
	}
	return u, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, r.q(query), arg).Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.RegisteredAt = u.RegisteredAt.UTC()
	return &u, nil
}

// userConflict maps a unique-constraint failure on users to a sentinel error, or nil.
func userConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return nil
		}
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return ErrDuplicateUsername
		case strings.Contains(pgErr.ConstraintName, "email"):
			return ErrDuplicateEmail
		}
		return nil
	}

	// sqlite: "UNIQUE constraint failed: users.username"
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "users.username"):
		return ErrDuplicateUsername
	case strings.Contains(msg, "users.email"):
		return ErrDuplicateEmail
	}
	return nil
}
