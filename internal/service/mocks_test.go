package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/model"
)

// In-memory repository fakes. They implement the same interfaces as the
// sqlite stores, including the error contracts (NotFound, AlreadyLiked,
// NotLiked), so services can't tell the difference.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User)}
}

func (m *mockUserRepo) addUser(name string) *model.User {
	m.nextID++
	u := &model.User{
		ID:          m.nextID,
		ExternalUID: "uid-" + name,
		Name:        name,
		Email:       name + "@example.com",
		CreatedAt:   time.Now(),
	}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepo) SyncIdentity(_ context.Context, identity *model.Identity) (*model.User, error) {
	for _, u := range m.users {
		if u.ExternalUID == identity.UID {
			u.Name = identity.Name
			u.Email = identity.Email
			return u, nil
		}
	}
	m.nextID++
	u := &model.User{
		ID:          m.nextID,
		ExternalUID: identity.UID,
		Name:        identity.Name,
		Email:       identity.Email,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func (m *mockUserRepo) GetByExternalUID(_ context.Context, uid string) (*model.User, error) {
	for _, u := range m.users {
		if u.ExternalUID == uid {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", 0)
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", 0)
}

func (m *mockUserRepo) CreateLocal(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", "email already registered")
		}
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

type mockPostRepo struct {
	posts  map[int64]*model.Post
	users  *mockUserRepo
	nextID int64
}

func newMockPostRepo(users *mockUserRepo) *mockPostRepo {
	return &mockPostRepo{posts: make(map[int64]*model.Post), users: users}
}

func (m *mockPostRepo) Create(_ context.Context, post *model.Post) error {
	m.nextID++
	post.ID = m.nextID
	post.CreatedAt = time.Now()
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id int64) (*model.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	result := *p
	return &result, nil
}

func (m *mockPostRepo) view(p *model.Post) model.PostView {
	name := ""
	if u, ok := m.users.users[p.UserID]; ok {
		name = u.Name
	}
	return model.PostView{Post: *p, UserName: name}
}

func (m *mockPostRepo) GetView(_ context.Context, id int64) (*model.PostView, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	v := m.view(p)
	return &v, nil
}

func (m *mockPostRepo) List(_ context.Context) ([]model.PostView, error) {
	views := make([]model.PostView, 0, len(m.posts))
	// Newest first, matching the sqlite store's ordering.
	for id := m.nextID; id > 0; id-- {
		if p, ok := m.posts[id]; ok {
			views = append(views, m.view(p))
		}
	}
	return views, nil
}

func (m *mockPostRepo) ListByUser(_ context.Context, userID int64) ([]model.PostView, error) {
	var views []model.PostView
	for id := m.nextID; id > 0; id-- {
		if p, ok := m.posts[id]; ok && p.UserID == userID {
			views = append(views, m.view(p))
		}
	}
	return views, nil
}

func (m *mockPostRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.posts[id]; !ok {
		return apperror.NotFound("post", id)
	}
	delete(m.posts, id)
	return nil
}

type likeKey struct {
	postID, userID int64
}

// mockLikeRepo is safe for concurrent use, like the real store: the mutex
// plays the role of the database's unique constraint in race tests.
type mockLikeRepo struct {
	mu    sync.Mutex
	likes map[likeKey]bool
}

func newMockLikeRepo() *mockLikeRepo {
	return &mockLikeRepo{likes: make(map[likeKey]bool)}
}

func (m *mockLikeRepo) Create(_ context.Context, postID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := likeKey{postID, userID}
	if m.likes[key] {
		return apperror.AlreadyLiked(postID)
	}
	m.likes[key] = true
	return nil
}

func (m *mockLikeRepo) Delete(_ context.Context, postID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := likeKey{postID, userID}
	if !m.likes[key] {
		return apperror.NotLiked(postID)
	}
	delete(m.likes, key)
	return nil
}

func (m *mockLikeRepo) Exists(_ context.Context, postID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.likes[likeKey{postID, userID}], nil
}

func (m *mockLikeRepo) CountForPost(_ context.Context, postID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for key := range m.likes {
		if key.postID == postID {
			count++
		}
	}
	return count, nil
}

func (m *mockLikeRepo) PostIDsLikedBy(_ context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[int64]bool)
	for _, id := range postIDs {
		if m.likes[likeKey{id, userID}] {
			result[id] = true
		}
	}
	return result, nil
}

type mockCommentRepo struct {
	comments map[int64]*model.Comment
	users    *mockUserRepo
	nextID   int64
}

func newMockCommentRepo(users *mockUserRepo) *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[int64]*model.Comment), users: users}
}

func (m *mockCommentRepo) Create(_ context.Context, comment *model.Comment) error {
	m.nextID++
	comment.ID = m.nextID
	comment.CreatedAt = time.Now()
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *mockCommentRepo) ListByPost(_ context.Context, postID int64) ([]model.CommentView, error) {
	var views []model.CommentView
	for id := m.nextID; id > 0; id-- {
		c, ok := m.comments[id]
		if !ok || c.PostID != postID {
			continue
		}
		name := ""
		if u, ok := m.users.users[c.UserID]; ok {
			name = u.Name
		}
		views = append(views, model.CommentView{Comment: *c, UserName: name})
	}
	return views, nil
}

func (m *mockCommentRepo) CountForPost(_ context.Context, postID int64) (int, error) {
	count := 0
	for _, c := range m.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count, nil
}

// testEnv bundles the fakes and services most tests need.
type testEnv struct {
	users    *mockUserRepo
	posts    *mockPostRepo
	likes    *mockLikeRepo
	comments *mockCommentRepo

	postSvc *PostService
	likeSvc *LikeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users := newMockUserRepo()
	posts := newMockPostRepo(users)
	likes := newMockLikeRepo()
	comments := newMockCommentRepo(users)
	logger := testLogger()
	return &testEnv{
		users:    users,
		posts:    posts,
		likes:    likes,
		comments: comments,
		postSvc:  NewPostService(posts, likes, comments, logger),
		likeSvc:  NewLikeService(posts, likes, logger),
	}
}
