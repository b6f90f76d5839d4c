package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plcassist/backend/internal/models"
	"go.uber.org/zap"
)

// LookupService is the interface that wraps read-only queries against the error catalog.
type LookupService interface {
	// Method Search returns up to 10 error texts containing "query" ignoring letter case. An empty query returns an empty list.
	Search(query string) []string
	// Method ListAll returns all error texts sorted lexicographically.
	ListAll() []string
	// Method RemedyAndParts returns the remedy and parts of the exact error text, or the "no data" default.
	RemedyAndParts(errorText string) models.RemedyResponse
	// Method SchematicFor returns the schematic filename of "part", false if the part is unknown.
	SchematicFor(part string) (string, bool)
}

// LookupHandler handles error catalog HTTP requests
type LookupHandler struct {
	BaseHandler
	service LookupService
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(svc LookupService, logger *zap.Logger) *LookupHandler {
	return &LookupHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all lookup routes behind authMiddleware
// Note: This assumes the router is already scoped to /api
func (h *LookupHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/search_errors", h.SearchErrors)
		r.Get("/all_errors", h.AllErrors)
		r.Post("/parts", h.Parts)
		r.Post("/schematic", h.Schematic)
	})
}

// SearchErrors handles GET /api/search_errors
// @Summary Search error texts
// @Description Case-insensitive substring search over known controller errors, at most 10 results in catalog order
// @Tags lookup
// @Produce json
// @Param query query string false "Part of the error text"
// @Success 200 {array} string
// @Failure 401 {object} map[string]string
// @Security ApiKeyAuth
// @Router /search_errors [get]
func (h *LookupHandler) SearchErrors(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, h.service.Search(r.URL.Query().Get("query")))
}

// AllErrors handles GET /api/all_errors
// @Summary List all error texts
// @Tags lookup
// @Produce json
// @Success 200 {array} string
// @Failure 401 {object} map[string]string
// @Security ApiKeyAuth
// @Router /all_errors [get]
func (h *LookupHandler) AllErrors(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, h.service.ListAll())
}

// Parts handles POST /api/parts
// @Summary Get remedy and parts
// @Description Exact-match lookup of an error text. Unknown errors return a default remedy with no parts.
// @Tags lookup
// @Accept json
// @Produce json
// @Param request body models.PartsRequest true "Error text"
// @Success 200 {object} models.RemedyResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Security ApiKeyAuth
// @Router /parts [post]
func (h *LookupHandler) Parts(w http.ResponseWriter, r *http.Request) {
	var req models.PartsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.RespondJSON(w, http.StatusOK, h.service.RemedyAndParts(req.Error))
}

// Schematic handles POST /api/schematic
// @Summary Get schematic of a part
// @Description Exact-match lookup of a part. Unknown parts return a null schematic.
// @Tags lookup
// @Accept json
// @Produce json
// @Param request body models.SchematicRequest true "Part identifier"
// @Success 200 {object} models.SchematicResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Security ApiKeyAuth
// @Router /schematic [post]
func (h *LookupHandler) Schematic(w http.ResponseWriter, r *http.Request) {
	var req models.SchematicRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var resp models.SchematicResponse
	if schematic, ok := h.service.SchematicFor(req.Part); ok {
		resp.Schematic = &schematic
	}
	h.RespondJSON(w, http.StatusOK, resp)
}
