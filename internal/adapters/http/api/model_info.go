package api

import (
	"net/http"

	service "github.com/okian/icexg/internal/app"
)

// ModelInfoDependencies exposes model metadata.
type ModelInfoDependencies interface {
	ModelInfo() service.ModelInfo
}

// ModelInfoHandler handles model metadata requests.
type ModelInfoHandler struct {
	deps ModelInfoDependencies
}

// NewModelInfoHandler creates a new model info handler.
func NewModelInfoHandler(deps ModelInfoDependencies) *ModelInfoHandler {
	return &ModelInfoHandler{deps: deps}
}

// HandleModelInfo handles GET /model/info requests.
func (h *ModelInfoHandler) HandleModelInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ModelInfo())
}
