package service

import (
	"context"
	"io"

	"blogsite/internal/models"
	"blogsite/internal/repository"
	"blogsite/internal/storage"
)

// Authorization covers registration and credential checks.
type Authorization interface {
	Register(ctx context.Context, in RegisterInput) (int, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// Blog is CRUD over posts plus the read models built on top of it.
type Blog interface {
	ListPosts(ctx context.Context, limit int) ([]models.BlogPost, error)
	ListSummaries(ctx context.Context, limit int) ([]models.PostSummary, error)
	GetPost(ctx context.Context, id int) (*models.BlogPost, error)
	CreatePost(ctx context.Context, in PostInput) (int, error)
	UpdatePost(ctx context.Context, id int, in PostInput) error
	DeletePost(ctx context.Context, id int) error
	SeedPosts(ctx context.Context, count int) (int, error)
}

// Uploads stores editor images and returns the URL they are served from.
type Uploads interface {
	SaveImage(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Blog
	Uploads
}

func NewService(repos *repository.Repository, store storage.Store) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users),
		Blog:          NewBlogService(repos.Posts),
		Uploads:       NewUploadService(store),
	}
}
