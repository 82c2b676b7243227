// Package auth turns inbound bearer credentials into trusted identities.
//
// AUTHENTICATION FLOW:
//  1. The client obtains an ID token from the identity provider (Firebase in
//     production, the local TokenService in dev mode).
//  2. Every API call carries it as "Authorization: Bearer <token>".
//  3. The middleware extracts the token, consults the TokenCache, and on a
//     miss verifies it against the provider, caching the result for 10 minutes.
//  4. The verified Identity is attached to the request context for handlers.
//
// The raw token is never stored or logged — the cache is keyed by a SHA-256
// digest of it.
package auth

import (
	"context"

	"github.com/yukio/micropost/internal/model"
)

// Verifier is the external identity-provider boundary: it turns a raw bearer
// credential into a verified Identity, or fails with an error wrapping
// apperror.ErrUnauthenticated.
//
// Implementations must not retry internally — a failed verification is final
// for the request that triggered it. Caching happens above this interface.
type Verifier interface {
	Verify(ctx context.Context, token string) (*model.Identity, error)
}
