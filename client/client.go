// Package client is a Go client for the micropost API. It speaks the JSON
// envelope the server writes, translates error reasons back into the domain
// sentinels from internal/apperror, and carries bearer credentials through an
// oauth2.TokenSource so any token supplier (static dev token, Firebase
// refresh flow) plugs in unchanged.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/model"
)

const defaultTimeout = 10 * time.Second

// Client calls the micropost API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the API at baseURL. src supplies the bearer token
// for each request; pass nil for an unauthenticated client (the public feed
// and demo reset still work).
func New(baseURL string, src oauth2.TokenSource) *Client {
	// oauth2.NewClient(ctx, nil) hands back http.DefaultClient, which must
	// not be mutated; build a fresh one for the unauthenticated case.
	httpClient := &http.Client{Timeout: defaultTimeout}
	if src != nil {
		httpClient = oauth2.NewClient(context.Background(), src)
		httpClient.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// StaticToken wraps a fixed token string as a TokenSource, for dev-mode
// tokens from /api/auth/login.
func StaticToken(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	})
}

// envelope mirrors the server's response shape. Data stays raw until the
// caller knows what type to decode it into.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// apiError converts an error envelope back into the matching domain error so
// callers can branch with errors.Is exactly as server-side code does.
func apiError(reason, message string) error {
	sentinel := map[string]error{
		"validation_error": apperror.ErrValidation,
		"already_liked":    apperror.ErrAlreadyLiked,
		"not_liked":        apperror.ErrNotLiked,
		"unauthenticated":  apperror.ErrUnauthenticated,
		"forbidden":        apperror.ErrForbidden,
		"not_found":        apperror.ErrNotFound,
		"conflict":         apperror.ErrConflict,
		"transient":        apperror.ErrTransient,
	}[reason]
	if sentinel == nil {
		return fmt.Errorf("client: server error %q: %s", reason, message)
	}
	return fmt.Errorf("client: %w: %s", sentinel, message)
}

// do executes one API call. Transport failures come back wrapped in
// ErrTransient — the caller cannot tell whether the server acted, so the
// only safe reaction is to refetch.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encoding request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("client: building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %w: %v", apperror.ErrTransient, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("client: %w: decoding response: %v", apperror.ErrTransient, err)
	}

	if resp.StatusCode >= 400 || env.Status == "error" {
		return apiError(env.Error, env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("client: decoding data: %w", err)
		}
	}
	return nil
}

// Me returns the account behind the client's token.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/api/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AuthResult is the account and token returned by Register and Login.
type AuthResult struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// Register creates a dev-mode account. Only available when the server runs
// with local JWT auth.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates a dev-mode account.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Posts returns the feed, newest first.
func (c *Client) Posts(ctx context.Context) ([]model.PostView, error) {
	var views []model.PostView
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// PostsByUser returns one user's posts.
func (c *Client) PostsByUser(ctx context.Context, userID int64) ([]model.PostView, error) {
	var views []model.PostView
	path := fmt.Sprintf("/api/posts/user/%d", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// CreatePost publishes a new post.
func (c *Client) CreatePost(ctx context.Context, content string) (*model.PostView, error) {
	var view model.PostView
	err := c.do(ctx, http.MethodPost, "/api/posts", map[string]string{"content": content}, &view)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// postWithComments matches the GET /api/posts/{id} data shape.
type postWithComments struct {
	Post     model.PostView      `json:"post"`
	Comments []model.CommentView `json:"comments"`
}

// PostWithComments returns a single post and its comments.
func (c *Client) PostWithComments(ctx context.Context, id int64) (*model.PostView, []model.CommentView, error) {
	var data postWithComments
	path := fmt.Sprintf("/api/posts/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, nil, err
	}
	return &data.Post, data.Comments, nil
}

// DeletePost deletes the viewer's own post.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), nil, nil)
}

// likeCount matches the like/unlike data shape.
type likeCount struct {
	LikesCount int `json:"likes_count"`
}

// Like records a like and returns the post's refreshed like count.
func (c *Client) Like(ctx context.Context, postID int64) (int, error) {
	var data likeCount
	path := fmt.Sprintf("/api/posts/%d/like", postID)
	if err := c.do(ctx, http.MethodPost, path, nil, &data); err != nil {
		return 0, err
	}
	return data.LikesCount, nil
}

// Unlike removes a like and returns the post's refreshed like count.
func (c *Client) Unlike(ctx context.Context, postID int64) (int, error) {
	var data likeCount
	path := fmt.Sprintf("/api/posts/%d/like", postID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &data); err != nil {
		return 0, err
	}
	return data.LikesCount, nil
}

// LikeStatus reports whether the viewer liked the post and its like count.
func (c *Client) LikeStatus(ctx context.Context, postID int64) (*model.LikeStatus, error) {
	var status model.LikeStatus
	path := fmt.Sprintf("/api/posts/%d/like/status", postID)
	if err := c.do(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Comments returns a post's comments, newest first.
func (c *Client) Comments(ctx context.Context, postID int64) ([]model.CommentView, error) {
	var comments []model.CommentView
	path := fmt.Sprintf("/api/posts/%d/comments", postID)
	if err := c.do(ctx, http.MethodGet, path, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment adds a comment to a post.
func (c *Client) CreateComment(ctx context.Context, postID int64, content string) (*model.CommentView, error) {
	var view model.CommentView
	path := fmt.Sprintf("/api/posts/%d/comments", postID)
	err := c.do(ctx, http.MethodPost, path, map[string]string{"content": content}, &view)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ResetDemo wipes all content created by the account with the given external
// UID. Unknown UIDs succeed without doing anything.
func (c *Client) ResetDemo(ctx context.Context, externalUID string) error {
	return c.do(ctx, http.MethodPost, "/api/demo/reset", map[string]string{
		"external_uid": externalUID,
	}, nil)
}
