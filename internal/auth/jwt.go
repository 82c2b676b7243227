package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/model"
)

const tokenIssuer = "micropost"

// defaultTokenLifetime matches the identity provider's ID token lifetime, so
// dev-mode clients exercise the same expiry behavior as production ones.
const defaultTokenLifetime = time.Hour

// TokenService issues and verifies local HS256 ID tokens.
//
// It stands in for the external identity provider when Firebase credentials
// are not configured (local development, demos, CI). Tokens carry the same
// identity claims a provider token would — subject, name, email,
// email_verified — so the rest of the pipeline (cache, middleware, handlers)
// cannot tell the difference. TokenService therefore implements Verifier.
type TokenService struct {
	secret []byte
}

var _ Verifier = (*TokenService)(nil)

// NewTokenService creates a TokenService with the given HMAC secret.
// The secret should be at least 32 bytes of random data in production-like
// environments: JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// identityClaims is the JWT payload: registered claims plus the identity
// fields needed to rebuild a model.Identity without a database lookup.
type identityClaims struct {
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

// Generate signs a token for the given identity with the default lifetime.
func (s *TokenService) Generate(identity *model.Identity) (string, error) {
	return s.GenerateWithDuration(identity, defaultTokenLifetime)
}

// GenerateWithDuration signs a token with a custom lifetime. Used by tests to
// mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(identity *model.Identity, d time.Duration) (string, error) {
	if identity == nil || identity.UID == "" {
		return "", errors.New("auth: identity with a UID is required")
	}

	now := time.Now()
	claims := identityClaims{
		Name:          identity.Name,
		Email:         identity.Email,
		EmailVerified: identity.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    tokenIssuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token and rebuilds the Identity it encodes.
//
// The signature, expiry, issuer, and algorithm are all checked; restricting
// the algorithm to HS256 prevents algorithm-confusion attacks. Any failure
// wraps apperror.ErrUnauthenticated, same as the Firebase verifier.
func (s *TokenService) Verify(_ context.Context, tokenStr string) (*model.Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&identityClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: %w: token expired", apperror.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("auth: %w: invalid token: %w", apperror.ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*identityClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: %w: invalid token claims", apperror.ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("auth: %w: token has no subject", apperror.ErrUnauthenticated)
	}

	return &model.Identity{
		UID:           claims.Subject,
		Name:          claims.Name,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}
