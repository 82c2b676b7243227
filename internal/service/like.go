package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/model"
	"github.com/yukio/micropost/internal/repository"
)

// LikeService handles the like/unlike mutations and the like-status read.
//
// Like and Unlike are the server-side half of the client's optimistic
// toggle: each is a check-then-act sequence whose conflict outcomes
// (AlreadyLiked, NotLiked) tell the client to resync rather than retry. The
// existence check here is a fast path; the storage-level unique constraint
// settles concurrent races (see LikeRepository).
//
// Both mutations return the refreshed like count so the client can reconcile
// its optimistic guess against server truth without a second read.
type LikeService struct {
	posts  repository.PostRepository
	likes  repository.LikeRepository
	logger *slog.Logger
}

// NewLikeService creates a LikeService.
func NewLikeService(posts repository.PostRepository, likes repository.LikeRepository, logger *slog.Logger) *LikeService {
	return &LikeService{
		posts:  posts,
		likes:  likes,
		logger: logger,
	}
}

// Like records that the viewer liked the post and returns the refreshed
// like count. Fails with NotFound if the post is gone and AlreadyLiked if a
// like already exists — whether observed by the check or by losing the
// insert race.
func (s *LikeService) Like(ctx context.Context, viewer *model.User, postID int64) (int, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return 0, err
	}

	exists, err := s.likes.Exists(ctx, postID, viewer.ID)
	if err != nil {
		return 0, fmt.Errorf("service/like: checking existing like: %w", err)
	}
	if exists {
		return 0, apperror.AlreadyLiked(postID)
	}

	if err := s.likes.Create(ctx, postID, viewer.ID); err != nil {
		return 0, err
	}

	count, err := s.likes.CountForPost(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("service/like: counting likes: %w", err)
	}

	s.logger.Info("post liked",
		slog.Int64("postID", postID),
		slog.Int64("userID", viewer.ID),
		slog.Int("likes", count),
	)
	return count, nil
}

// Unlike removes the viewer's like from the post and returns the refreshed
// like count. Fails with NotFound if the post is gone and NotLiked if there
// is no like to remove.
func (s *LikeService) Unlike(ctx context.Context, viewer *model.User, postID int64) (int, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return 0, err
	}

	if err := s.likes.Delete(ctx, postID, viewer.ID); err != nil {
		return 0, err
	}

	count, err := s.likes.CountForPost(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("service/like: counting likes: %w", err)
	}

	s.logger.Info("post unliked",
		slog.Int64("postID", postID),
		slog.Int64("userID", viewer.ID),
		slog.Int("likes", count),
	)
	return count, nil
}

// Status reports whether the viewer has liked the post, plus the post's
// current like count.
func (s *LikeService) Status(ctx context.Context, viewer *model.User, postID int64) (*model.LikeStatus, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	isLiked, err := s.likes.Exists(ctx, postID, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("service/like: checking like status: %w", err)
	}

	count, err := s.likes.CountForPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("service/like: counting likes: %w", err)
	}

	return &model.LikeStatus{
		IsLiked:    isLiked,
		LikesCount: count,
	}, nil
}
