package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/model"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the identity value.
type contextKey string

const identityKey contextKey = "identity"

// Authenticator owns the verification pipeline: credential extraction, cache
// lookup, provider verification, cache write. It exposes two explicit
// middleware modes rather than a flag:
//
//   - RequireAuth: any failure halts the request with 401 before the handler.
//   - OptionalAuth: the same pipeline, but every failure is swallowed and the
//     request proceeds anonymous. Used for endpoints that personalize output
//     for logged-in viewers but also serve anonymous ones (GET /api/posts).
//
// Keeping the modes as two named middlewares makes it impossible for a caught
// verification error to silently downgrade a protected endpoint.
type Authenticator struct {
	verifier Verifier
	cache    *TokenCache
	logger   *slog.Logger
}

// NewAuthenticator wires a Verifier and a TokenCache together.
func NewAuthenticator(verifier Verifier, cache *TokenCache, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		cache:    cache,
		logger:   logger,
	}
}

// RequireAuth enforces authentication. On failure it writes 401 and stops the
// chain — no handler, service, or repository code runs for the request.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.authenticate(r)
		if err != nil {
			// Error detail is for the log only; the response body never
			// carries provider internals.
			a.logger.Warn("authentication failed",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status":"error","error":"unauthenticated","message":"valid authentication required"}`))
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
	})
}

// OptionalAuth attaches an identity if a valid bearer token is present, and
// proceeds anonymous otherwise. It never writes an error response.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, err := a.authenticate(r); err == nil {
			r = r.WithContext(withIdentity(r.Context(), identity))
		} else if !errors.Is(err, errNoCredential) {
			// A present-but-bad token is worth a log line even when tolerated.
			a.logger.Debug("optional authentication failed",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
		}
		next.ServeHTTP(w, r)
	})
}

// errNoCredential distinguishes "no token at all" from "token present but
// rejected" so OptionalAuth doesn't log noise for anonymous requests.
var errNoCredential = errors.New("no bearer credential")

// authenticate is the single verification core shared by both modes:
// extract the bearer token, try the cache, verify on miss, cache on success.
//
// A provider failure is never retried within the request; the caller decides
// whether it is fatal (RequireAuth) or tolerable (OptionalAuth).
func (a *Authenticator) authenticate(r *http.Request) (*model.Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, fmt.Errorf("%w: %w", apperror.Unauthenticated("authorization header missing"), errNoCredential)
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, apperror.Unauthenticated("authorization header must use the Bearer scheme")
	}

	if identity, ok := a.cache.Get(token); ok {
		return identity, nil
	}

	identity, err := a.verifier.Verify(r.Context(), token)
	if err != nil {
		// No cache write on failure — the next request re-verifies.
		return nil, err
	}

	a.cache.Put(token, identity)
	return identity, nil
}

func withIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext retrieves the authenticated identity from the request
// context. Returns (nil, false) if the request is anonymous.
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*model.Identity)
	return identity, ok && identity != nil
}
