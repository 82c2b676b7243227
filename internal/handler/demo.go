package handler

import (
	"net/http"

	"github.com/yukio/micropost/internal/service"
)

// DemoHandler serves the unauthenticated demo reset endpoint.
type DemoHandler struct {
	demo *service.DemoService
}

// NewDemoHandler creates a DemoHandler.
func NewDemoHandler(demo *service.DemoService) *DemoHandler {
	return &DemoHandler{demo: demo}
}

type resetRequest struct {
	ExternalUID string `json:"external_uid" validate:"required,max=128"`
}

// Reset handles POST /api/demo/reset. Unknown UIDs reset nothing and still
// succeed, so the endpoint leaks no information about which accounts exist.
func (h *DemoHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeValid(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.demo.Reset(r.Context(), req.ExternalUID); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "demo data reset", nil)
}
