package model

import "time"

// Comment is a reply attached to a post.
type Comment struct {
	ID        int64     `json:"id"         db:"id"`
	PostID    int64     `json:"post_id"    db:"post_id"`
	UserID    int64     `json:"user_id"    db:"user_id"`
	Content   string    `json:"content"    db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CommentView is the API projection of a Comment: the stored row plus the
// author's display name and the viewer-relative is_owner flag.
type CommentView struct {
	Comment
	UserName string `json:"user_name"`
	IsOwner  bool   `json:"is_owner"`
}
