// Package conversations provides the inbound message bounded context module.
// This file defines the module that encapsulates setup and route registration.
package conversations

import (
	"prospecta_backend/internal/events"
	apphttp "prospecta_backend/internal/http"
	"prospecta_backend/platform/config"
	"prospecta_backend/platform/logger"
	"prospecta_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the conversations bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
	repo    *Repository
}

// NewModule creates and initializes the conversations module with all its
// dependencies. cache may be nil when redis is not configured.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, cache StatsCache, cfg config.WebhookConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, repo, cache, eventBus, log)
	handler := NewHandler(service, val, cfg.GetWebhookToken(), log)

	return &Module{
		handler: handler,
		service: service,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversations"
}

// Service exposes the conversations service for other composition-root wiring.
func (m *Module) Service() *Service {
	return m.service
}

// Repository exposes the repository for the background worker.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts conversations routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public provider webhook (shared-token auth, rate limited, no JWT)
	webhookGroup := ctx.V1.Group("/webhook")
	webhookGroup.Use(ctx.WebhookRateLimiter.RateLimit())
	webhookGroup.POST("/evolution", m.handler.HandleProviderEvent)

	// UI-facing reads (JWT auth)
	convGroup := ctx.Protected.Group("/conversations")
	convGroup.GET("/threads", m.handler.HandleListThreads)
	convGroup.GET("/threads/:phone/messages", m.handler.HandleThreadMessages)
	convGroup.GET("/stats", m.handler.HandleStats)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
