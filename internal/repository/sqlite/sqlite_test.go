package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/model"
)

// newTestDB opens an in-memory database that lives for one test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:): %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *DB, name string) *model.User {
	t.Helper()
	user, err := db.Users.SyncIdentity(context.Background(), &model.Identity{
		UID:   "uid-" + name,
		Name:  name,
		Email: name + "@example.com",
	})
	if err != nil {
		t.Fatalf("seeding user %s: %v", name, err)
	}
	return user
}

func seedPost(t *testing.T, db *DB, author *model.User, content string) *model.Post {
	t.Helper()
	post := &model.Post{UserID: author.ID, Content: content}
	if err := db.Posts.Create(context.Background(), post); err != nil {
		t.Fatalf("seeding post: %v", err)
	}
	return post
}

func TestSyncIdentity_Upsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, err := db.Users.SyncIdentity(ctx, &model.Identity{UID: "uid-1", Name: "Alice", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("SyncIdentity() error = %v", err)
	}

	second, err := db.Users.SyncIdentity(ctx, &model.Identity{UID: "uid-1", Name: "Alice Cooper", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("SyncIdentity() second error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("re-sync created a new row: %d vs %d", second.ID, first.ID)
	}
	if second.Name != "Alice Cooper" {
		t.Errorf("Name = %q, refresh did not apply", second.Name)
	}
}

func TestLikeCreate_DuplicateHitsConstraint(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, alice, "hello")

	if err := db.Likes.Create(ctx, post.ID, alice.ID); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	// The duplicate insert trips UNIQUE(post_id, user_id); the store must
	// surface it as the domain conflict, not a raw driver error.
	err := db.Likes.Create(ctx, post.ID, alice.ID)
	if !errors.Is(err, apperror.ErrAlreadyLiked) {
		t.Errorf("duplicate Create() error = %v, want ErrAlreadyLiked", err)
	}

	count, err := db.Likes.CountForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("CountForPost() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestLikeDelete_MissingRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, alice, "hello")

	err := db.Likes.Delete(ctx, post.ID, alice.ID)
	if !errors.Is(err, apperror.ErrNotLiked) {
		t.Errorf("Delete() with no like error = %v, want ErrNotLiked", err)
	}
}

func TestLike_SameUserDifferentPosts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	p1 := seedPost(t, db, alice, "one")
	p2 := seedPost(t, db, alice, "two")

	if err := db.Likes.Create(ctx, p1.ID, alice.ID); err != nil {
		t.Fatalf("Create() p1 error = %v", err)
	}
	// The uniqueness is per (post, user) pair, not per user.
	if err := db.Likes.Create(ctx, p2.ID, alice.ID); err != nil {
		t.Errorf("Create() p2 error = %v", err)
	}

	liked, err := db.Likes.PostIDsLikedBy(ctx, alice.ID, []int64{p1.ID, p2.ID, 999})
	if err != nil {
		t.Fatalf("PostIDsLikedBy() error = %v", err)
	}
	if !liked[p1.ID] || !liked[p2.ID] || liked[999] {
		t.Errorf("PostIDsLikedBy() = %v", liked)
	}
}

func TestPostDelete_CascadesToLikesAndComments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, alice, "doomed")

	if err := db.Likes.Create(ctx, post.ID, bob.ID); err != nil {
		t.Fatalf("Create() like error = %v", err)
	}
	if err := db.Comments.Create(ctx, &model.Comment{PostID: post.ID, UserID: bob.ID, Content: "rip"}); err != nil {
		t.Fatalf("Create() comment error = %v", err)
	}

	if err := db.Posts.Delete(ctx, post.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	likes, _ := db.Likes.CountForPost(ctx, post.ID)
	comments, _ := db.Comments.CountForPost(ctx, post.ID)
	if likes != 0 || comments != 0 {
		t.Errorf("after delete: likes=%d comments=%d, want 0/0", likes, comments)
	}
}

func TestPostViews_CountersAndOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	older := seedPost(t, db, alice, "older")
	newer := seedPost(t, db, bob, "newer")

	if err := db.Likes.Create(ctx, older.ID, bob.ID); err != nil {
		t.Fatalf("Create() like error = %v", err)
	}
	if err := db.Comments.Create(ctx, &model.Comment{PostID: older.ID, UserID: bob.ID, Content: "hey"}); err != nil {
		t.Fatalf("Create() comment error = %v", err)
	}

	views, err := db.Posts.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("List() returned %d views, want 2", len(views))
	}
	if views[0].ID != newer.ID {
		t.Errorf("List() first post = %d, want newest %d", views[0].ID, newer.ID)
	}
	if views[1].LikesCount != 1 || views[1].CommentsCount != 1 {
		t.Errorf("older post counters = %d/%d, want 1/1", views[1].LikesCount, views[1].CommentsCount)
	}
	if views[1].UserName != "alice" {
		t.Errorf("older post user_name = %q, want alice", views[1].UserName)
	}
	// Viewer-relative flags are not the store's job; they must come back zero.
	if views[1].IsOwner || views[1].UserLiked {
		t.Error("store filled viewer-relative flags")
	}
}

func TestCreateLocal_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.User{ExternalUID: "local-1", Name: "Bob", Email: "bob@example.com", PasswordHash: "x"}
	if err := db.Users.CreateLocal(ctx, first); err != nil {
		t.Fatalf("CreateLocal() error = %v", err)
	}

	dup := &model.User{ExternalUID: "local-2", Name: "Bobby", Email: "bob@example.com", PasswordHash: "y"}
	err := db.Users.CreateLocal(ctx, dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateLocal() duplicate email error = %v, want ErrConflict", err)
	}
}

func TestDemoResetUser_OnlyTouchesTarget(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	alicePost := seedPost(t, db, alice, "alice post")
	bobPost := seedPost(t, db, bob, "bob post")
	if err := db.Likes.Create(ctx, bobPost.ID, alice.ID); err != nil {
		t.Fatalf("Create() like error = %v", err)
	}
	if err := db.Comments.Create(ctx, &model.Comment{PostID: bobPost.ID, UserID: alice.ID, Content: "hi"}); err != nil {
		t.Fatalf("Create() comment error = %v", err)
	}

	if err := db.Demo.ResetUser(ctx, alice.ID); err != nil {
		t.Fatalf("ResetUser() error = %v", err)
	}

	if _, err := db.Posts.GetByID(ctx, alicePost.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Error("alice's post survived the reset")
	}
	if _, err := db.Posts.GetByID(ctx, bobPost.ID); err != nil {
		t.Error("bob's post was deleted by alice's reset")
	}
	likes, _ := db.Likes.CountForPost(ctx, bobPost.ID)
	if likes != 0 {
		t.Errorf("alice's like on bob's post survived the reset: count=%d", likes)
	}
}
