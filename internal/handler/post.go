package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yukio/micropost/internal/apperror"
	"github.com/yukio/micropost/internal/service"
)

// PostHandler serves the post and comment endpoints.
type PostHandler struct {
	posts *service.PostService
	auth  *service.AuthService
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, auth *service.AuthService) *PostHandler {
	return &PostHandler{posts: posts, auth: auth}
}

type createPostRequest struct {
	Content string `json:"content" validate:"required"`
}

type createCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// List handles GET /api/posts. The route is behind optional auth: anonymous
// viewers get the feed with is_owner and user_liked false.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer, err := optionalViewer(r, h.auth)
	if err != nil {
		writeError(w, err)
		return
	}

	views, err := h.posts.List(r.Context(), viewer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", views)
}

// Create handles POST /api/posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	viewer, err := requireViewer(r, h.auth)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createPostRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.posts.Create(r.Context(), viewer, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "post created", view)
}

// Get handles GET /api/posts/{id}: the post plus its comments.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewer, err := requireViewer(r, h.auth)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := postIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	view, comments, err := h.posts.GetWithComments(r.Context(), viewer, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"post":     view,
		"comments": comments,
	})
}

// ListByUser handles GET /api/posts/user/{userID}.
func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	if _, err := requireViewer(r, h.auth); err != nil {
		writeError(w, err)
		return
	}

	raw := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, apperror.ValidationFailed("userID", "user ID must be a positive integer"))
		return
	}

	views, err := h.posts.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", views)
}

// Delete handles DELETE /api/posts/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	viewer, err := requireViewer(r, h.auth)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := postIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.posts.Delete(r.Context(), viewer, id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "post deleted", nil)
}

// Comments handles GET /api/posts/{id}/comments.
func (h *PostHandler) Comments(w http.ResponseWriter, r *http.Request) {
	viewer, err := requireViewer(r, h.auth)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := postIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	comments, err := h.posts.Comments(r.Context(), viewer, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", comments)
}

// CreateComment handles POST /api/posts/{id}/comments.
func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	viewer, err := requireViewer(r, h.auth)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := postIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createCommentRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.posts.CreateComment(r.Context(), viewer, id, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "comment created", view)
}
