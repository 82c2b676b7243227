// Package service contains the business logic layer: validation, permission
// rules, and orchestration between repositories. Services know nothing about
// HTTP — handlers translate their domain errors to status codes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/auth"
	"github.com/yukio/micropost/internal/model"
	"github.com/yukio/micropost/internal/repository"
)

const minPasswordLength = 8

// AuthService bridges verified identities to local user rows, and — in dev
// mode — handles email/password registration and login with locally issued
// tokens.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService. tokens and passwords may be nil
// when the server runs against a real identity provider; Register and Login
// are only routed in dev mode, where both are set.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// CurrentUser resolves a verified identity to its local user row, creating
// or refreshing the row on the way (sync-on-first-touch). Every handler that
// needs a viewer goes through here.
func (s *AuthService) CurrentUser(ctx context.Context, identity *model.Identity) (*model.User, error) {
	if identity == nil {
		return nil, apperror.Unauthenticated("authentication required")
	}

	user, err := s.users.SyncIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("service/auth: syncing identity %s: %w", identity.UID, err)
	}
	return user, nil
}

// AuthResult bundles the account and the issued token so the handler can
// respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a local dev-mode account and issues a token for it.
// The external UID is generated here — local accounts live in the same
// namespace as provider accounts but can never collide with them.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		ExternalUID:  "local-" + xid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateLocal(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating local account: %w", err)
	}

	s.logger.Info("local account registered",
		slog.Int64("userID", user.ID),
		slog.String("uid", user.ExternalUID),
	)

	return s.issueToken(user)
}

// Login verifies a local account's password and issues a token.
// A wrong password and an unknown email both come back Unauthenticated —
// never reveal which one it was.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.Unauthenticated("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}
	if user.PasswordHash == "" {
		// Provider-backed account; it has no local password to check.
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	s.logger.Info("local account logged in", slog.Int64("userID", user.ID))
	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(&model.Identity{
		UID:   user.ExternalUID,
		Name:  user.Name,
		Email: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
