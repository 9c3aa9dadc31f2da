// Package pipeline provides the lead funnel bounded context module.
// This file defines the module that encapsulates setup and route registration.
package pipeline

import (
	"prospecta_backend/internal/events"
	apphttp "prospecta_backend/internal/http"
	"prospecta_backend/platform/logger"
	"prospecta_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the pipeline bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the pipeline module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, eventBus, log)
	handler := NewHandler(service, val)

	return &Module{
		handler: handler,
		service: service,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipeline"
}

// Service exposes the pipeline service for composition-root wiring.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts pipeline routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/pipeline")
	group.GET("/board", m.handler.HandleBoard)
	group.GET("/stages/:stage", m.handler.HandleListStage)
	group.POST("/leads/:leadId/move", m.handler.HandleMoveLead)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
