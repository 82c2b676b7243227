package model

import "time"

// MaxContentLength is the maximum length, in characters, of a post or
// comment body. Counted in runes, not bytes — "こんにちは" is 5 characters.
const MaxContentLength = 120

// Post is a micro-post as stored. Like and comment counts are intentionally
// absent here: they are derived at read time (see PostView), never
// denormalized onto the row.
type Post struct {
	ID        int64     `json:"id"         db:"id"`
	UserID    int64     `json:"user_id"    db:"user_id"`
	Content   string    `json:"content"    db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Like marks that a user liked a post. At most one Like exists per
// (post, user) pair — enforced by a UNIQUE constraint at the storage layer,
// not just by the application-level existence check.
type Like struct {
	ID        int64     `json:"id"         db:"id"`
	PostID    int64     `json:"post_id"    db:"post_id"`
	UserID    int64     `json:"user_id"    db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PostView is the API projection of a Post: the stored row plus the author's
// display name, read-time counters, and two viewer-relative flags computed
// per request from the caller's identity. It is never persisted.
type PostView struct {
	Post
	UserName      string `json:"user_name"`
	LikesCount    int    `json:"likes_count"`
	CommentsCount int    `json:"comments_count"`
	IsOwner       bool   `json:"is_owner"`
	UserLiked     bool   `json:"user_liked"`
}

// LikeStatus reports whether the viewer has liked a post and the post's
// current like count. Returned by GET /api/posts/{id}/like/status and by the
// like/unlike mutations (likes_count only).
type LikeStatus struct {
	IsLiked    bool `json:"is_liked"`
	LikesCount int  `json:"likes_count"`
}
