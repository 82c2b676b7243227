package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/model"
)

// FirebaseVerifier verifies Firebase ID tokens via the Admin SDK.
//
// Verification is two calls: VerifyIDToken checks the token's signature and
// expiry against Google's public keys (the SDK caches those keys itself), and
// GetUser fetches the user record for the token's subject so the Identity
// carries the current display name and email, not whatever was baked into the
// token at issue time.
type FirebaseVerifier struct {
	client *fbauth.Client
}

var _ Verifier = (*FirebaseVerifier)(nil)

// NewFirebaseVerifier initializes the Firebase Admin SDK from a service
// account credentials file. credentialsFile may be empty, in which case the
// SDK falls back to application default credentials.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth: initializing firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: creating firebase auth client: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

// Verify checks the ID token and resolves its subject to an Identity.
//
// All failures — expired, tampered, revoked, provider unreachable — collapse
// into ErrUnauthenticated. The underlying error stays on the chain for
// diagnostics but is never used to make a different security decision.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*model.Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("auth: verifying id token: %w: %w", apperror.ErrUnauthenticated, err)
	}

	record, err := v.client.GetUser(ctx, decoded.UID)
	if err != nil {
		return nil, fmt.Errorf("auth: fetching user %s: %w: %w", decoded.UID, apperror.ErrUnauthenticated, err)
	}

	return &model.Identity{
		UID:           record.UID,
		Name:          record.DisplayName,
		Email:         record.Email,
		EmailVerified: record.EmailVerified,
	}, nil
}
