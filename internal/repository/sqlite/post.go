package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/model"
	"github.com/yukio/micropost/internal/repository"
)

// PostStore implements repository.PostRepository.
type PostStore struct {
	conn *sql.DB
}

var _ repository.PostRepository = (*PostStore)(nil)

// postViewQuery selects a post joined with its author and the read-time
// counters. The counters are correlated subqueries — computed on every read,
// never stored denormalized, so they can't drift from the likes/comments
// tables.
const postViewQuery = `
	SELECT p.id, p.user_id, p.content, p.created_at, p.updated_at,
	       u.name,
	       (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
	       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)
	FROM posts p
	JOIN users u ON u.id = p.user_id`

// Create inserts a new post and fills in its generated ID and timestamps.
func (s *PostStore) Create(ctx context.Context, post *model.Post) error {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO posts (user_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`,
		post.UserID, post.Content, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	post.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted post id: %w", err)
	}
	return nil
}

// GetByID retrieves the bare post row — enough for existence and owner
// checks without paying for the joined view.
func (s *PostStore) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, user_id, content, created_at, updated_at
		 FROM posts WHERE id = ?`, id,
	).Scan(&p.ID, &p.UserID, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}
	return &p, nil
}

// GetView retrieves a single post as its API projection (author name and
// counters filled; viewer flags left zero for the service to set).
func (s *PostStore) GetView(ctx context.Context, id int64) (*model.PostView, error) {
	row := s.conn.QueryRowContext(ctx, postViewQuery+` WHERE p.id = ?`, id)

	var v model.PostView
	err := row.Scan(
		&v.ID, &v.UserID, &v.Content, &v.CreatedAt, &v.UpdatedAt,
		&v.UserName, &v.LikesCount, &v.CommentsCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post view %d: %w", id, err)
	}
	return &v, nil
}

// List returns all posts, newest first.
func (s *PostStore) List(ctx context.Context) ([]model.PostView, error) {
	return s.queryViews(ctx,
		postViewQuery+` ORDER BY p.created_at DESC, p.id DESC`)
}

// ListByUser returns one user's posts, newest first.
func (s *PostStore) ListByUser(ctx context.Context, userID int64) ([]model.PostView, error) {
	return s.queryViews(ctx,
		postViewQuery+` WHERE p.user_id = ? ORDER BY p.created_at DESC, p.id DESC`,
		userID)
}

func (s *PostStore) queryViews(ctx context.Context, query string, args ...any) ([]model.PostView, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	views := []model.PostView{}
	for rows.Next() {
		var v model.PostView
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.Content, &v.CreatedAt, &v.UpdatedAt,
			&v.UserName, &v.LikesCount, &v.CommentsCount,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return views, nil
}

// Delete removes a post. Likes and comments cascade at the storage layer.
func (s *PostStore) Delete(ctx context.Context, id int64) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("post", id)
	}
	return nil
}
