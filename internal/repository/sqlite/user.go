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

// UserStore implements repository.UserRepository.
type UserStore struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserStore)(nil)

// SyncIdentity upserts a user row keyed by the external UID.
//
// First login inserts; later logins refresh name and email in case they
// changed at the provider. The existing numeric ID is always kept — posts,
// likes, and comments reference it.
func (s *UserStore) SyncIdentity(ctx context.Context, identity *model.Identity) (*model.User, error) {
	if identity == nil || identity.UID == "" {
		return nil, fmt.Errorf("sqlite: identity with a UID is required")
	}

	var existingID int64
	err := s.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE external_uid = ?`, identity.UID,
	).Scan(&existingID)

	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: looking up user by external uid: %w", err)
	}

	now := time.Now()
	if err == nil {
		_, err = s.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
			identity.Name, identity.Email, now, existingID,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: updating user %d: %w", existingID, err)
		}
		return s.GetByID(ctx, existingID)
	}

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (external_uid, name, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		identity.UID, identity.Name, identity.Email, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading inserted user id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID retrieves a user by their internal numeric ID.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(s.conn.QueryRowContext(ctx,
		`SELECT id, external_uid, name, email, password_hash, created_at, updated_at
		 FROM users WHERE id = ?`, id,
	), fmt.Sprintf("user %d", id))
}

// GetByExternalUID retrieves a user by their provider subject ID.
func (s *UserStore) GetByExternalUID(ctx context.Context, uid string) (*model.User, error) {
	return scanUser(s.conn.QueryRowContext(ctx,
		`SELECT id, external_uid, name, email, password_hash, created_at, updated_at
		 FROM users WHERE external_uid = ?`, uid,
	), fmt.Sprintf("user with uid %s", uid))
}

// GetByEmail retrieves a user by email. Only meaningful for dev-mode local
// accounts — provider accounts may share or omit emails.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(s.conn.QueryRowContext(ctx,
		`SELECT id, external_uid, name, email, password_hash, created_at, updated_at
		 FROM users WHERE email = ?`, email,
	), fmt.Sprintf("user with email %s", email))
}

func scanUser(row *sql.Row, what string) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.ExternalUID, &u.Name, &u.Email, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: what + " not found",
			}
		}
		return nil, fmt.Errorf("sqlite: getting %s: %w", what, err)
	}
	return &u, nil
}

// CreateLocal inserts a dev-mode account. A duplicate email surfaces as a
// conflict so the register handler can report it as such.
func (s *UserStore) CreateLocal(ctx context.Context, user *model.User) error {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, user.Email,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("sqlite: checking email uniqueness: %w", err)
	}
	if count > 0 {
		return apperror.Conflict("user", "email is already registered")
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (external_uid, name, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ExternalUID, user.Name, user.Email, user.PasswordHash,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "account already exists")
		}
		return fmt.Errorf("sqlite: inserting local user: %w", err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted user id: %w", err)
	}
	return nil
}
