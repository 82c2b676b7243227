package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/repository"
)

// DemoService wipes a demo account's generated content so shared demo
// environments can be reset between sessions.
type DemoService struct {
	users  repository.UserRepository
	demo   repository.DemoRepository
	logger *slog.Logger
}

// NewDemoService creates a DemoService.
func NewDemoService(users repository.UserRepository, demo repository.DemoRepository, logger *slog.Logger) *DemoService {
	return &DemoService{
		users:  users,
		demo:   demo,
		logger: logger,
	}
}

// Reset removes all posts, comments, and likes created by the user with the
// given external UID. An empty UID or an unknown user is a no-op, not an
// error — resetting nothing is a successful reset.
func (s *DemoService) Reset(ctx context.Context, externalUID string) error {
	if externalUID == "" {
		return nil
	}

	user, err := s.users.GetByExternalUID(ctx, externalUID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("service/demo: looking up user: %w", err)
	}

	if err := s.demo.ResetUser(ctx, user.ID); err != nil {
		return fmt.Errorf("service/demo: resetting user %d: %w", user.ID, err)
	}

	s.logger.Info("demo user reset", slog.Int64("userID", user.ID))
	return nil
}
