// Package handler is the HTTP layer: it parses requests, calls services, and
// writes the JSON envelope. No business rules live here.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/auth"
	"github.com/yukio/micropost/internal/model"
	"github.com/yukio/micropost/internal/service"
)

// validate checks request DTOs against their struct tags. One instance is
// shared by all handlers; it caches struct metadata internally.
var validate = validator.New(validator.WithRequiredStructEnabled())

// requireViewer resolves the authenticated identity on the request to its
// local user row. The auth middleware guarantees an identity is present on
// required routes, so a missing one here is a wiring bug surfaced as 401.
func requireViewer(r *http.Request, authSvc *service.AuthService) (*model.User, error) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil, apperror.Unauthenticated("authentication required")
	}
	return authSvc.CurrentUser(r.Context(), identity)
}

// optionalViewer resolves the viewer if the request carries an identity, and
// returns nil for anonymous requests. A failing user sync is still an error:
// the identity was valid, the database just misbehaved.
func optionalViewer(r *http.Request, authSvc *service.AuthService) (*model.User, error) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil, nil
	}
	return authSvc.CurrentUser(r.Context(), identity)
}

// postIDParam extracts the {id} route parameter as a post ID.
func postIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("id", "post ID must be a positive integer")
	}
	return id, nil
}

// maxBodyBytes caps request bodies; the largest legitimate payload is a
// 120-character comment, so 64 KiB is generous.
const maxBodyBytes = 64 << 10

// decodeValid decodes a JSON body into dst and validates its struct tags.
func decodeValid(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("", "request body must be valid JSON")
	}
	if err := validate.Struct(dst); err != nil {
		return apperror.ValidationFailed("", err.Error())
	}
	return nil
}
