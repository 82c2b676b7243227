package handler

import (
	"net/http"

	"github.com/yukio/micropost/internal/service"
)

// LikeHandler serves the like toggle endpoints. Both mutations return the
// refreshed count in the body so optimistic clients can reconcile without a
// follow-up read.
type LikeHandler struct {
	likes *service.LikeService
	auth  *service.AuthService
}

// NewLikeHandler creates a LikeHandler.
func NewLikeHandler(likes *service.LikeService, auth *service.AuthService) *LikeHandler {
	return &LikeHandler{likes: likes, auth: auth}
}

// Like handles POST /api/posts/{id}/like.
func (h *LikeHandler) Like(w http.ResponseWriter, r *http.Request) {
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

	count, err := h.likes.Like(r.Context(), viewer, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "post liked", map[string]int{"likes_count": count})
}

// Unlike handles DELETE /api/posts/{id}/like.
func (h *LikeHandler) Unlike(w http.ResponseWriter, r *http.Request) {
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

	count, err := h.likes.Unlike(r.Context(), viewer, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "post unliked", map[string]int{"likes_count": count})
}

// Status handles GET /api/posts/{id}/like/status.
func (h *LikeHandler) Status(w http.ResponseWriter, r *http.Request) {
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

	status, err := h.likes.Status(r.Context(), viewer, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", status)
}
