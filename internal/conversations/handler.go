package conversations

import (
	"crypto/subtle"
	"net/http"

	"prospecta_backend/platform/httpkit"
	"prospecta_backend/platform/logger"
	"prospecta_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// WebhookResponse is the acknowledgment returned to the chat provider.
// Recoverable outcomes (no-match, empty body, unsupported event, duplicate)
// are successful no-ops, not errors.
type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler handles conversations HTTP requests.
type Handler struct {
	service      *Service
	val          *validator.Validator
	webhookToken string
	log          *logger.Logger
}

// NewHandler creates a new conversations handler. webhookToken may be empty,
// which disables the shared-token check on the provider route.
func NewHandler(service *Service, val *validator.Validator, webhookToken string, log *logger.Logger) *Handler {
	return &Handler{service: service, val: val, webhookToken: webhookToken, log: log}
}

// HandleProviderEvent ingests one provider event.
// POST /api/v1/webhook/evolution
func (h *Handler) HandleProviderEvent(c *gin.Context) {
	if !h.checkToken(c) {
		return
	}

	var payload WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		// malformed payload: no partial processing
		c.JSON(http.StatusInternalServerError, WebhookResponse{Success: false, Error: "malformed payload"})
		return
	}

	if payload.Event == EventMessagesUpsert && payload.Data.Key.ID == "" {
		c.JSON(http.StatusInternalServerError, WebhookResponse{Success: false, Error: "missing message id"})
		return
	}

	outcome, err := h.service.Record(c.Request.Context(), payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, WebhookResponse{Success: false, Error: err.Error()})
		return
	}

	switch outcome.Kind {
	case OutcomeRecorded:
		c.JSON(http.StatusOK, WebhookResponse{Success: true, Message: "message recorded"})
	case OutcomeDuplicate:
		c.JSON(http.StatusOK, WebhookResponse{Success: true, Message: "duplicate delivery ignored"})
	default:
		c.JSON(http.StatusOK, WebhookResponse{Success: true, Message: outcome.Reason})
	}
}

// HandleListThreads returns the per-contact thread summaries.
// GET /api/v1/conversations/threads
func (h *Handler) HandleListThreads(c *gin.Context) {
	threads, err := h.service.Threads(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, threads)
}

// HandleStats returns the cross-contact statistics rollup.
// GET /api/v1/conversations/stats
func (h *Handler) HandleStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, stats)
}

// HandleThreadMessages returns the ordered log for one contact.
// GET /api/v1/conversations/threads/:phone/messages
func (h *Handler) HandleThreadMessages(c *gin.Context) {
	entries, err := h.service.ThreadMessages(c.Request.Context(), c.Param("phone"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, entries)
}

// checkToken verifies the shared webhook token when one is configured.
// The provider sends it as a query parameter on the callback URL.
func (h *Handler) checkToken(c *gin.Context) bool {
	if h.webhookToken == "" {
		return true
	}

	presented := c.Query("token")
	if subtle.ConstantTimeCompare([]byte(presented), []byte(h.webhookToken)) != 1 {
		httpkit.Error(c, http.StatusUnauthorized, "invalid webhook token", nil)
		return false
	}
	return true
}
