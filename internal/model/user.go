// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account as stored locally.
//
// Identity lives with the external provider (Firebase) — the local row exists
// so posts, likes, and comments can reference a stable numeric ID. The row is
// created or refreshed the first time a verified identity touches the API
// (see service.AuthService.CurrentUser).
//
// PasswordHash is only populated for local dev-mode accounts created through
// /api/auth/register; provider-backed accounts never have one. It is excluded
// from JSON so it can never leak through an API response.
type User struct {
	ID           int64     `json:"id"           db:"id"`
	ExternalUID  string    `json:"external_uid" db:"external_uid"` // provider subject ID, opaque
	Name         string    `json:"name"         db:"name"`
	Email        string    `json:"email"        db:"email"`
	PasswordHash string    `json:"-"            db:"password_hash"`
	CreatedAt    time.Time `json:"created_at"   db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"   db:"updated_at"`
}
