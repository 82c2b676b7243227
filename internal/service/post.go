package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/model"
	"github.com/yukio/micropost/internal/repository"
)

// PostService handles post and comment business logic: validation, owner
// checks, and stamping viewer-relative flags onto the repository's views.
type PostService struct {
	posts    repository.PostRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
	logger   *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	comments repository.CommentRepository,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:    posts,
		likes:    likes,
		comments: comments,
		logger:   logger,
	}
}

// validateContent enforces the shared content rules for posts and comments:
// required after trimming, at most 120 characters (runes, not bytes).
func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperror.ValidationFailed("content", "content is required")
	}
	if utf8.RuneCountInString(content) > model.MaxContentLength {
		return "", apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", model.MaxContentLength))
	}
	return content, nil
}

// List returns the feed, newest first. When a viewer is present, is_owner
// and user_liked are filled from their perspective; anonymous viewers get
// both flags false. The user_liked flags come from one bulk query.
func (s *PostService) List(ctx context.Context, viewer *model.User) ([]model.PostView, error) {
	views, err := s.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts: %w", err)
	}

	if viewer == nil || len(views) == 0 {
		return views, nil
	}

	ids := make([]int64, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}

	liked, err := s.likes.PostIDsLikedBy(ctx, viewer.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("service/post: resolving viewer likes: %w", err)
	}

	for i := range views {
		views[i].IsOwner = views[i].UserID == viewer.ID
		views[i].UserLiked = liked[views[i].ID]
	}
	return views, nil
}

// Create validates and saves a new post, returning its view. The counters
// start at zero and the viewer owns what they just wrote, so no extra reads
// are needed.
func (s *PostService) Create(ctx context.Context, viewer *model.User, content string) (*model.PostView, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:  viewer.ID,
		Content: content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.Int64("userID", viewer.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("postID", post.ID),
		slog.Int64("userID", viewer.ID),
	)

	return &model.PostView{
		Post:      *post,
		UserName:  viewer.Name,
		IsOwner:   true,
		UserLiked: false,
	}, nil
}

// GetWithComments returns a single post and its comments, with viewer flags
// stamped on both. viewer may be nil.
func (s *PostService) GetWithComments(ctx context.Context, viewer *model.User, id int64) (*model.PostView, []model.CommentView, error) {
	view, err := s.posts.GetView(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	comments, err := s.comments.ListByPost(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("service/post: listing comments: %w", err)
	}

	if viewer != nil {
		view.IsOwner = view.UserID == viewer.ID

		liked, err := s.likes.Exists(ctx, id, viewer.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("service/post: resolving viewer like: %w", err)
		}
		view.UserLiked = liked

		for i := range comments {
			comments[i].IsOwner = comments[i].UserID == viewer.ID
		}
	}

	return view, comments, nil
}

// ListByUser returns one user's posts. Viewer flags stay false — the
// endpoint serves profile pages that don't personalize.
func (s *PostService) ListByUser(ctx context.Context, userID int64) ([]model.PostView, error) {
	views, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts for user %d: %w", userID, err)
	}
	return views, nil
}

// Delete removes a post after checking the viewer owns it. Dependent likes
// and comments go with it.
func (s *PostService) Delete(ctx context.Context, viewer *model.User, id int64) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if post.UserID != viewer.ID {
		return apperror.Forbidden("cannot delete another user's post")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("post deleted",
		slog.Int64("postID", id),
		slog.Int64("userID", viewer.ID),
	)
	return nil
}

// CreateComment validates and saves a comment on a post, returning its view.
// The post must exist — commenting on a deleted post is NotFound, not a
// silent orphan row.
func (s *PostService) CreateComment(ctx context.Context, viewer *model.User, postID int64, content string) (*model.CommentView, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:  postID,
		UserID:  viewer.ID,
		Content: content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.Int64("postID", postID),
			slog.Int64("userID", viewer.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/post: creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.Int64("commentID", comment.ID),
		slog.Int64("postID", postID),
	)

	return &model.CommentView{
		Comment:  *comment,
		UserName: viewer.Name,
		IsOwner:  true,
	}, nil
}

// Comments returns a post's comments, newest first. The post must exist.
func (s *PostService) Comments(ctx context.Context, viewer *model.User, postID int64) ([]model.CommentView, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing comments: %w", err)
	}

	if viewer != nil {
		for i := range comments {
			comments[i].IsOwner = comments[i].UserID == viewer.ID
		}
	}
	return comments, nil
}
