package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blogsite/internal/models"
)

type PostRepository struct {
	sqlBase
}

func NewPostRepository(db *sql.DB, driver string) *PostRepository {
	return &PostRepository{sqlBase{db: db, driver: driver}}
}

var _ Posts = (*PostRepository)(nil)

const (
	insertPostSQL = `INSERT INTO blog_posts (title, subtitle, author, content, date_posted) VALUES (?, ?, ?, ?, ?) RETURNING id`

	selectPostColumns = `SELECT id, title, subtitle, author, content, date_posted FROM blog_posts`
	selectPostByIDSQL = selectPostColumns + ` WHERE id = ?`
	listPostsSQL      = selectPostColumns + ` ORDER BY date_posted DESC, id DESC`
	listPostsLimitSQL = listPostsSQL + ` LIMIT ?`

	updatePostSQL = `UPDATE blog_posts SET title = ?, subtitle = ?, author = ?, content = ?, date_posted = ? WHERE id = ?`
	deletePostSQL = `DELETE FROM blog_posts WHERE id = ?`
)

// Create inserts a post and returns its ID. A zero DatePosted is set to now.
func (r *PostRepository) Create(ctx context.Context, p models.BlogPost) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, r.q(insertPostSQL), postInsertArgs(p)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert post %q: %w", p.Title, err)
	}
	return id, nil
}

// CreateMany inserts all posts in a single transaction and returns how many were written.
func (r *PostRepository) CreateMany(ctx context.Context, posts []models.BlogPost) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert posts: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, r.q(insertPostSQL))
	if err != nil {
		return 0, fmt.Errorf("prepare insert post: %w", err)
	}
	defer stmt.Close()

	for i, p := range posts {
		var id int
		if err := stmt.QueryRowContext(ctx, postInsertArgs(p)...).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert post %d of %d: %w", i+1, len(posts), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert posts: %w", err)
	}
	return len(posts), nil
}

func postInsertArgs(p models.BlogPost) []any {
	if p.DatePosted.IsZero() {
		p.DatePosted = time.Now()
	}
	return []any{p.Title, p.Subtitle, p.Author, p.Content, p.DatePosted.UTC()}
}

// GetByID fetches a post. Returns (nil, nil) if not found.
func (r *PostRepository) GetByID(ctx context.Context, id int) (*models.BlogPost, error) {
	var p models.BlogPost
	err := r.db.QueryRowContext(ctx, r.q(selectPostByIDSQL), id).Scan(
		&p.ID, &p.Title, &p.Subtitle, &p.Author, &p.Content, &p.DatePosted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select post %d: %w", id, err)
	}
	p.DatePosted = p.DatePosted.UTC()
	return &p, nil
}

func (r *PostRepository) List(ctx context.Context, limit int) ([]models.BlogPost, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, r.q(listPostsLimitSQL), limit)
	} else {
		rows, err = r.db.QueryContext(ctx, r.q(listPostsSQL))
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	out := make([]models.BlogPost, 0, 16)
	for rows.Next() {
		var p models.BlogPost
		if err := rows.Scan(&p.ID, &p.Title, &p.Subtitle, &p.Author, &p.Content, &p.DatePosted); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.DatePosted = p.DatePosted.UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return out, nil
}

func (r *PostRepository) Update(ctx context.Context, p models.BlogPost) (bool, error) {
	if p.DatePosted.IsZero() {
		p.DatePosted = time.Now()
	}
	res, err := r.db.ExecContext(ctx, r.q(updatePostSQL),
		p.Title, p.Subtitle, p.Author, p.Content, p.DatePosted.UTC(), p.ID,
	)
	if err != nil {
		return false, fmt.Errorf("update post %d: %w", p.ID, err)
	}
	return affectedOne(res, "update post", p.ID)
}

func (r *PostRepository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.q(deletePostSQL), id)
	if err != nil {
		return false, fmt.Errorf("delete post %d: %w", id, err)
	}
	return affectedOne(res, "delete post", id)
}

func affectedOne(res sql.Result, op string, id int) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s %d rows affected: %w", op, id, err)
	}
	return n > 0, nil
}
