package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yukio/micropost/internal/repository"
)

// DemoStore implements repository.DemoRepository.
type DemoStore struct {
	conn *sql.DB
}

var _ repository.DemoRepository = (*DemoStore)(nil)

// ResetUser removes everything a demo user generated: their likes and
// comments everywhere, then their posts (whose own likes/comments cascade).
// One transaction so a half-reset is never observable.
func (s *DemoStore) ResetUser(ctx context.Context, userID int64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning reset transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM likes WHERE user_id = ?`,
		`DELETE FROM comments WHERE user_id = ?`,
		`DELETE FROM posts WHERE user_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return fmt.Errorf("sqlite: resetting user %d: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing reset: %w", err)
	}
	return nil
}
