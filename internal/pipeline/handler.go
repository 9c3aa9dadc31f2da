package pipeline

import (
	"net/http"
	"strings"

	"prospecta_backend/platform/httpkit"
	"prospecta_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles pipeline HTTP requests.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates a new pipeline handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// MoveLeadRequest is the request body for a stage transition.
type MoveLeadRequest struct {
	FromStage string `json:"fromStage" validate:"required"`
	ToStage   string `json:"toStage" validate:"required"`
}

// HandleBoard returns the full kanban projection.
// GET /api/v1/pipeline/board
func (h *Handler) HandleBoard(c *gin.Context) {
	if strings.EqualFold(c.Query("refresh"), "true") {
		if err := h.service.Refresh(c.Request.Context()); httpkit.HandleError(c, err) {
			return
		}
	}

	board, err := h.service.Board(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, board)
}

// HandleListStage returns one board column.
// GET /api/v1/pipeline/stages/:stage
func (h *Handler) HandleListStage(c *gin.Context) {
	leads, err := h.service.ListByStage(c.Request.Context(), c.Param("stage"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, leads)
}

// HandleMoveLead transitions a lead to a new stage.
// POST /api/v1/pipeline/leads/:leadId/move
func (h *Handler) HandleMoveLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead ID", nil)
		return
	}

	var req MoveLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	result, err := h.service.MoveLead(c.Request.Context(), leadID, req.FromStage, req.ToStage)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
