package model

// Identity is the verified representation of an external user, reconstructed
// from a bearer credential on every request (or served from the token cache).
//
// It is ephemeral — never persisted, not a system of record. The UID is the
// provider's opaque subject identifier and is the only field trusted for
// authorization decisions; name and email are display data from the
// provider's user record.
type Identity struct {
	UID           string `json:"uid"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}
