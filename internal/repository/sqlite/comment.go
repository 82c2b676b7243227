package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yukio/micropost/internal/model"
	"github.com/yukio/micropost/internal/repository"
)

// CommentStore implements repository.CommentRepository.
type CommentStore struct {
	conn *sql.DB
}

var _ repository.CommentRepository = (*CommentStore)(nil)

// Create inserts a comment and fills in its generated ID and timestamps.
func (s *CommentStore) Create(ctx context.Context, comment *model.Comment) error {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO comments (post_id, user_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.PostID, comment.UserID, comment.Content,
		comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	comment.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted comment id: %w", err)
	}
	return nil
}

// ListByPost returns a post's comments joined with author names, newest
// first. The is_owner flag is left for the service to stamp.
func (s *CommentStore) ListByPost(ctx context.Context, postID int64) ([]model.CommentView, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, c.updated_at, u.name
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.post_id = ?
		 ORDER BY c.created_at DESC, c.id DESC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %d: %w", postID, err)
	}
	defer rows.Close()

	views := []model.CommentView{}
	for rows.Next() {
		var v model.CommentView
		if err := rows.Scan(
			&v.ID, &v.PostID, &v.UserID, &v.Content,
			&v.CreatedAt, &v.UpdatedAt, &v.UserName,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return views, nil
}

// CountForPost returns the current comment count for a post.
func (s *CommentStore) CountForPost(ctx context.Context, postID int64) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting comments for post %d: %w", postID, err)
	}
	return count, nil
}
