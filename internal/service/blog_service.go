package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blogsite/internal/models"
	"blogsite/internal/render"
	"blogsite/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
)

// ErrPostNotFound is returned when no post has the requested id.
var ErrPostNotFound = errors.New("post not found")

const excerptLength = 200

// BlogService implements Blog on top of a posts repository.
type BlogService struct {
	posts repository.Posts
	now   func() time.Time
	faker *gofakeit.Faker
}

// NewBlogService uses the wall clock and a randomly seeded faker for SeedPosts.
func NewBlogService(posts repository.Posts) *BlogService {
	return &BlogService{
		posts: posts,
		now:   time.Now,
		faker: gofakeit.New(0),
	}
}

// ListPosts returns posts newest first; limit <= 0 means all.
func (s *BlogService) ListPosts(ctx context.Context, limit int) ([]models.BlogPost, error) {
	return s.posts.List(ctx, limit)
}

// ListSummaries returns the newest posts with their bodies reduced to a text excerpt.
func (s *BlogService) ListSummaries(ctx context.Context, limit int) ([]models.PostSummary, error) {
	posts, err := s.posts.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.PostSummary, 0, len(posts))
	for _, p := range posts {
		out = append(out, Summarize(p))
	}
	return out, nil
}

// Summarize builds the list form of p with a plain-text excerpt of its body.
func Summarize(p models.BlogPost) models.PostSummary {
	return models.PostSummary{
		ID:         p.ID,
		Title:      p.Title,
		Subtitle:   p.Subtitle,
		Author:     p.Author,
		Excerpt:    render.Excerpt(p.Content, excerptLength),
		DatePosted: p.DatePosted,
	}
}

func (s *BlogService) GetPost(ctx context.Context, id int) (*models.BlogPost, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPostNotFound
	}
	return p, nil
}

func (s *BlogService) CreatePost(ctx context.Context, in PostInput) (int, error) {
	return s.posts.Create(ctx, postFromInput(in, s.now()))
}

// UpdatePost replaces the post's fields and bumps its date to now.
func (s *BlogService) UpdatePost(ctx context.Context, id int, in PostInput) error {
	p := postFromInput(in, s.now())
	p.ID = id

	ok, err := s.posts.Update(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPostNotFound
	}
	return nil
}

func (s *BlogService) DeletePost(ctx context.Context, id int) error {
	ok, err := s.posts.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPostNotFound
	}
	return nil
}

// SeedPosts inserts count fake posts dated within the current year.
func (s *BlogService) SeedPosts(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		return 0, fmt.Errorf("seed count must be positive, got %d", count)
	}

	now := s.now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	posts := make([]models.BlogPost, 0, count)
	for i := 0; i < count; i++ {
		posts = append(posts, models.BlogPost{
			Title:      s.faker.Sentence(6),
			Subtitle:   s.faker.Sentence(10),
			Author:     s.faker.Name(),
			Content:    s.faker.Paragraph(4, 5, 12, "\n\n"),
			DatePosted: s.faker.DateRange(yearStart, now),
		})
	}
	return s.posts.CreateMany(ctx, posts)
}

func postFromInput(in PostInput, now time.Time) models.BlogPost {
	return models.BlogPost{
		Title:      in.Title,
		Subtitle:   in.Subtitle,
		Author:     in.Author,
		Content:    in.Content,
		DatePosted: now.UTC(),
	}
}
