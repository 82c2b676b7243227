// Package repository defines the persistence interfaces consumed by the
// service layer. The sqlite subpackage provides the concrete implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/yukio/micropost/internal/model"
)

// UserRepository manages local user rows backing external identities.
type UserRepository interface {
	// SyncIdentity upserts a user row for a verified identity, keyed by the
	// external UID: first touch inserts, later touches refresh name/email.
	// Returns the canonical row either way.
	SyncIdentity(ctx context.Context, identity *model.Identity) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByExternalUID(ctx context.Context, uid string) (*model.User, error)
	// CreateLocal inserts a dev-mode account with a password hash. Fails with
	// a conflict if the email is already registered.
	CreateLocal(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// PostRepository manages posts. View-returning methods fill user_name and the
// read-time counters (likes_count, comments_count); the viewer-relative flags
// (is_owner, user_liked) are the service layer's job.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	GetView(ctx context.Context, id int64) (*model.PostView, error)
	List(ctx context.Context) ([]model.PostView, error)
	ListByUser(ctx context.Context, userID int64) ([]model.PostView, error)
	// Delete removes the post; dependent likes and comments go with it
	// (ON DELETE CASCADE at the storage layer).
	Delete(ctx context.Context, id int64) error
}

// LikeRepository manages the (post, user) like relation.
//
// Create and Delete are the idempotency boundaries for the client's
// retry-free design: Create fails with apperror.ErrAlreadyLiked when the pair
// already exists — including when a concurrent request wins the race, via the
// storage-level UNIQUE(post_id, user_id) constraint — and Delete fails with
// apperror.ErrNotLiked when there is nothing to remove.
type LikeRepository interface {
	Create(ctx context.Context, postID, userID int64) error
	Delete(ctx context.Context, postID, userID int64) error
	Exists(ctx context.Context, postID, userID int64) (bool, error)
	CountForPost(ctx context.Context, postID int64) (int, error)
	// PostIDsLikedBy reports which of the given posts the user has liked, as
	// a set. One query, used to fill user_liked across a whole feed.
	PostIDsLikedBy(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
}

// CommentRepository manages comments on posts.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListByPost(ctx context.Context, postID int64) ([]model.CommentView, error)
	CountForPost(ctx context.Context, postID int64) (int, error)
}

// DemoRepository supports the demo-reset endpoint: wiping one user's
// generated content without touching anyone else's.
type DemoRepository interface {
	ResetUser(ctx context.Context, userID int64) error
}
