package notification

import (
	"context"
	"fmt"

	"prospecta_backend/internal/events"
	"prospecta_backend/internal/pipeline"
	"prospecta_backend/platform/config"
	"prospecta_backend/platform/logger"
)

// Module wires email alerts to domain events. It has no HTTP surface.
type Module struct {
	sender EmailSender
	cfg    config.EmailConfig
	log    *logger.Logger
}

// New creates the notification module.
func New(sender EmailSender, cfg config.EmailConfig, log *logger.Logger) *Module {
	return &Module{sender: sender, cfg: cfg, log: log}
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.InboundMessageRecorded{}.EventName(), events.HandlerFunc(m.handleInboundMessage))
	bus.Subscribe(events.PipelineStageChanged{}.EventName(), events.HandlerFunc(m.handleStageChanged))
}

func (m *Module) handleInboundMessage(ctx context.Context, event events.Event) error {
	e, ok := event.(events.InboundMessageRecorded)
	if !ok {
		return nil
	}

	to, ok := m.deliverable()
	if !ok {
		return nil
	}

	subject, body := buildReplyAlert(e.LeadName, e.Phone, e.Message)
	if err := m.sender.Send(ctx, to, subject, body); err != nil {
		m.log.Error("failed to send reply alert", "error", err, "phone", e.Phone)
		return err
	}
	return nil
}

func (m *Module) handleStageChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(events.PipelineStageChanged)
	if !ok {
		return nil
	}

	// Only closed deals are worth an email; ordinary moves stay on the board.
	if e.NewStage != pipeline.StageWon {
		return nil
	}

	to, ok := m.deliverable()
	if !ok {
		return nil
	}

	subject, body := buildDealWonAlert(e.LeadName, e.OldStage)
	if err := m.sender.Send(ctx, to, subject, body); err != nil {
		m.log.Error("failed to send deal-won alert", "error", err, "leadId", e.LeadID)
		return err
	}
	return nil
}

func (m *Module) deliverable() (string, bool) {
	if !m.cfg.GetEmailEnabled() {
		return "", false
	}
	to := m.cfg.GetReplyNotifyAddress()
	if to == "" {
		return "", false
	}
	return to, true
}

func buildReplyAlert(leadName, phone, message string) (subject, body string) {
	name := leadName
	if name == "" {
		name = phone
	}
	subject = fmt.Sprintf("New reply from %s", name)
	body = fmt.Sprintf("%s (%s) replied:\n\n%s\n", name, phone, message)
	return subject, body
}

func buildDealWonAlert(leadName, oldStage string) (subject, body string) {
	subject = fmt.Sprintf("Deal won: %s", leadName)
	body = fmt.Sprintf("%s moved from %s to %s.\n", leadName, oldStage, pipeline.StageWon)
	return subject, body
}
