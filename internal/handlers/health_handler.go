package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// HealthHandler reports service liveness
type HealthHandler struct {
	BaseHandler
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	return &HealthHandler{BaseHandler: BaseHandler{Logger: logger}}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
