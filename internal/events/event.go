// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"prospecta_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Conversations Domain Events
// =============================================================================

// InboundMessageRecorded is published when a reply from a contact is appended
// to the conversation log. Duplicate deliveries never publish this event.
type InboundMessageRecorded struct {
	BaseEvent
	EntryID   uuid.UUID `json:"entryId"`
	Phone     string    `json:"phone"`
	LeadName  string    `json:"leadName"`
	Message   string    `json:"message"`
	Instance  string    `json:"instance"`
	MessageID string    `json:"messageId"`
}

func (e InboundMessageRecorded) EventName() string { return "conversations.message.inbound" }

// OutboundMessageRecorded is published when a delivery receipt for one of our
// own messages is appended to the conversation log.
type OutboundMessageRecorded struct {
	BaseEvent
	EntryID  uuid.UUID `json:"entryId"`
	Phone    string    `json:"phone"`
	LeadName string    `json:"leadName"`
	Instance string    `json:"instance"`
}

func (e OutboundMessageRecorded) EventName() string { return "conversations.message.outbound" }

// =============================================================================
// Pipeline Domain Events
// =============================================================================

// PipelineStageChanged is published when a lead moves between funnel stages.
type PipelineStageChanged struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	LeadName string    `json:"leadName"`
	OldStage string    `json:"oldStage"`
	NewStage string    `json:"newStage"`
}

func (e PipelineStageChanged) EventName() string { return "pipeline.stage.changed" }
