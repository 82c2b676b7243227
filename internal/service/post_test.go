package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yukio/micropost/internal/apperror"
)

func TestCreatePost_Valid(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.addUser("alice")

	view, err := env.postSvc.Create(context.Background(), alice, "  hello world  ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if view.Content != "hello world" {
		t.Errorf("Create() content = %q, want trimmed %q", view.Content, "hello world")
	}
	if !view.IsOwner {
		t.Error("Create() should mark the author as owner")
	}
	if view.UserName != "alice" {
		t.Errorf("Create() user_name = %q, want alice", view.UserName)
	}
	if view.LikesCount != 0 || view.CommentsCount != 0 {
		t.Errorf("new post counters = %d/%d, want 0/0", view.LikesCount, view.CommentsCount)
	}
}

func TestCreatePost_Empty(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.addUser("alice")

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := env.postSvc.Create(context.Background(), alice, content)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Create(%q) error = %v, want ErrValidation", content, err)
		}
	}
}

func TestCreatePost_LengthLimit(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.addUser("alice")
	ctx := context.Background()

	// Exactly at the limit is fine.
	if _, err := env.postSvc.Create(ctx, alice, strings.Repeat("a", 120)); err != nil {
		t.Errorf("Create() at limit error = %v", err)
	}

	// One over is not.
	_, err := env.postSvc.Create(ctx, alice, strings.Repeat("a", 121))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() over limit error = %v, want ErrValidation", err)
	}

	// The limit counts characters, not bytes: 120 multibyte runes pass even
	// though they are 360 bytes.
	if _, err := env.postSvc.Create(ctx, alice, strings.Repeat("あ", 120)); err != nil {
		t.Errorf("Create() with 120 multibyte runes error = %v", err)
	}
}

func TestListPosts_ViewerFlags(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.addUser("alice")
	bob := env.users.addUser("bob")
	ctx := context.Background()

	alicePost := seedPost(t, env, alice, "from alice")
	bobPost := seedPost(t, env, bob, "from bob")
	if err := env.likes.Create(ctx, bobPost.ID, alice.ID); err != nil {
		t.Fatalf("seeding like: %v", err)
	}

	views, err := env.postSvc.List(ctx, alice)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("List() returned %d posts, want 2", len(views))
	}

	byID := map[int64]int{}
	for i, v := range views {
		byID[v.ID] = i
	}

	mine := views[byID[alicePost.ID]]
	if !mine.IsOwner || mine.UserLiked {
		t.Errorf("own unliked post flags = owner:%v liked:%v, want owner:true liked:false", mine.IsOwner, mine.UserLiked)
	}
	theirs := views[byID[bobPost.ID]]
	if theirs.IsOwner || !theirs.UserLiked {
		t.Errorf("liked foreign post flags = owner:%v liked:%v, want owner:false liked:true", theirs.IsOwner, theirs.UserLiked)
	}
}

func TestListPosts_AnonymousViewer(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.addUser("alice")
	seedPost(t, env, alice, "public post")

	views, err := env.postSvc.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, v := range views {
		if v.IsOwner || v.UserLiked {
			t.Errorf("anonymous viewer got personalized flags on post %d", v.ID)
		}
	}
}

func TestDeletePost_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.addUser("alice")
	bob := env.users.addUser("bob")
	post := seedPost(t, env, alice, "mine")
	ctx := context.Background()

	err := env.postSvc.Delete(ctx, bob, post.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Delete() by non-owner error = %v, want ErrForbidden", err)
	}
	if _, err := env.posts.GetByID(ctx, post.ID); err != nil {
		t.Error("post vanished after a forbidden delete attempt")
	}

	if err := env.postSvc.Delete(ctx, alice, post.ID); err != nil {
		t.Fatalf("Delete() by owner error = %v", err)
	}
	if _, err := env.posts.GetByID(ctx, post.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Error("post still present after owner delete")
	}
}

func TestDeletePost_Missing(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.addUser("alice")

	err := env.postSvc.Delete(context.Background(), alice, 999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() of missing post error = %v, want ErrNotFound", err)
	}
}

func TestCreateComment_Valid(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.addUser("alice")
	bob := env.users.addUser("bob")
	post := seedPost(t, env, alice, "hello")

	view, err := env.postSvc.CreateComment(context.Background(), bob, post.ID, "nice post")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if view.Content != "nice post" || view.UserName != "bob" || !view.IsOwner {
		t.Errorf("CreateComment() view = %+v", view)
	}
}

func TestCreateComment_MissingPost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.addUser("alice")

	_, err := env.postSvc.CreateComment(context.Background(), alice, 999, "into the void")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("CreateComment() error = %v, want ErrNotFound", err)
	}
}

func TestCreateComment_SameValidationAsPosts(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.addUser("alice")
	post := seedPost(t, env, alice, "hello")

	_, err := env.postSvc.CreateComment(context.Background(), alice, post.ID, strings.Repeat("x", 121))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("CreateComment() over limit error = %v, want ErrValidation", err)
	}
}

func TestGetWithComments_StampsFlags(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.addUser("alice")
	bob := env.users.addUser("bob")
	post := seedPost(t, env, alice, "hello")
	ctx := context.Background()

	if _, err := env.postSvc.CreateComment(ctx, alice, post.ID, "first"); err != nil {
		t.Fatalf("seeding comment: %v", err)
	}
	if _, err := env.postSvc.CreateComment(ctx, bob, post.ID, "second"); err != nil {
		t.Fatalf("seeding comment: %v", err)
	}
	if err := env.likes.Create(ctx, post.ID, bob.ID); err != nil {
		t.Fatalf("seeding like: %v", err)
	}

	view, comments, err := env.postSvc.GetWithComments(ctx, bob, post.ID)
	if err != nil {
		t.Fatalf("GetWithComments() error = %v", err)
	}
	if view.IsOwner {
		t.Error("bob marked as owner of alice's post")
	}
	if !view.UserLiked {
		t.Error("bob's like not reflected in the view")
	}
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	for _, c := range comments {
		wantOwner := c.UserID == bob.ID
		if c.IsOwner != wantOwner {
			t.Errorf("comment %d is_owner = %v, want %v", c.ID, c.IsOwner, wantOwner)
		}
	}
}
