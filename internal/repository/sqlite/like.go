package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/repository"
)

// LikeStore implements repository.LikeRepository.
type LikeStore struct {
	conn *sql.DB
}

var _ repository.LikeRepository = (*LikeStore)(nil)

// Create inserts a like for (postID, userID) inside a transaction.
//
// The UNIQUE(post_id, user_id) constraint is the real correctness boundary:
// the service's existence check is a friendly fast path, but two concurrent
// requests can both pass it. Whichever insert loses the race hits the
// constraint, and that violation is reported as AlreadyLiked — the same
// answer the loser would have gotten had it run second.
func (s *LikeStore) Create(ctx context.Context, postID, userID int64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning like transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO likes (post_id, user_id, created_at) VALUES (?, ?, ?)`,
		postID, userID, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyLiked(postID)
		}
		return fmt.Errorf("sqlite: inserting like (post=%d user=%d): %w", postID, userID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing like: %w", err)
	}
	return nil
}

// Delete removes the like for (postID, userID) inside a transaction.
// Zero rows affected means there was nothing to remove: NotLiked.
func (s *LikeStore) Delete(ctx context.Context, postID, userID int64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning unlike transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM likes WHERE post_id = ? AND user_id = ?`,
		postID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting like (post=%d user=%d): %w", postID, userID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotLiked(postID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing unlike: %w", err)
	}
	return nil
}

// Exists reports whether (postID, userID) has a like.
func (s *LikeStore) Exists(ctx context.Context, postID, userID int64) (bool, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = ? AND user_id = ?`,
		postID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking like existence: %w", err)
	}
	return count > 0, nil
}

// CountForPost returns the current like count for a post.
func (s *LikeStore) CountForPost(ctx context.Context, postID int64) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting likes for post %d: %w", postID, err)
	}
	return count, nil
}

// PostIDsLikedBy returns, as a set, which of the given posts the user has
// liked. Used to stamp user_liked across a feed with one query instead of
// one per post.
func (s *LikeStore) PostIDsLikedBy(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool, len(postIDs))
	if len(postIDs) == 0 {
		return liked, nil
	}

	// Build the IN (?, ?, ...) placeholder list; args are still bound, never
	// concatenated into the SQL.
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(postIDs)), ",")

	args := make([]any, 0, len(postIDs)+1)
	args = append(args, userID)
	for _, id := range postIDs {
		args = append(args, id)
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT post_id FROM likes WHERE user_id = ? AND post_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing liked posts for user %d: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID int64
		if err := rows.Scan(&postID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning liked post id: %w", err)
		}
		liked[postID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating liked posts: %w", err)
	}

	return liked, nil
}
