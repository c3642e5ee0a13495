package repository

import (
	"context"
	"database/sql"
	"errors"

	"blogsite/internal/models"
	dbx "blogsite/internal/repository/db"
)

// Unique-column conflicts reported by Users.Create.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

type Users interface {
	Create(ctx context.Context, u models.User) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type Posts interface {
	Create(ctx context.Context, p models.BlogPost) (int, error)
	CreateMany(ctx context.Context, posts []models.BlogPost) (int, error)
	GetByID(ctx context.Context, id int) (*models.BlogPost, error)
	// List returns posts newest first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]models.BlogPost, error)
	// Update and Delete report false when no row has the given id.
	Update(ctx context.Context, p models.BlogPost) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type Repository struct {
	Users Users
	Posts Posts
}

// NewRepository builds SQL repositories; driver selects placeholder style
// (see db.DriverSQLite, db.DriverPostgres).
func NewRepository(db *sql.DB, driver string) *Repository {
	return &Repository{
		Users: NewUserRepository(db, driver),
		Posts: NewPostRepository(db, driver),
	}
}

// sqlBase carries the handle and dialect shared by the SQL repositories.
type sqlBase struct {
	db     *sql.DB
	driver string
}

func (b sqlBase) q(query string) string {
	return dbx.Rebind(b.driver, query)
}
