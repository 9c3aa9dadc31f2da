// Package conversations provides the inbound message correlation bounded context.
// It ingests delivery and reply events from the chat provider, correlates them
// to previously scheduled outreach dispatches, and maintains the append-only
// conversation log plus its derived thread and statistics views.
package conversations

import (
	"time"

	"github.com/google/uuid"
)

// EventMessagesUpsert is the only provider event type this core processes.
// Everything else acknowledged as a no-op.
const EventMessagesUpsert = "messages.upsert"

// WebhookPayload is the JSON body the chat provider posts to the webhook.
type WebhookPayload struct {
	Event    string      `json:"event" validate:"required"`
	Instance string      `json:"instance"`
	Data     WebhookData `json:"data"`
}

// WebhookData carries the message envelope of a messages.upsert event.
type WebhookData struct {
	Key              WebhookKey     `json:"key"`
	Status           string         `json:"status"`
	Message          WebhookMessage `json:"message"`
	MessageType      string         `json:"messageType"`
	MessageTimestamp int64          `json:"messageTimestamp"`
	InstanceID       string         `json:"instanceId"`
}

// WebhookKey identifies a message within the provider.
type WebhookKey struct {
	RemoteJID string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

// WebhookMessage holds the message content. Media-only messages arrive with
// an empty conversation field.
type WebhookMessage struct {
	Conversation string `json:"conversation"`
}

// Dispatch is a scheduled-outreach record linking a lead to the raw channel
// identifier the message was sent to. Created by the campaign scheduler
// (an external collaborator); read-only here.
type Dispatch struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	CompanyPhone string // raw provider format, exactly as stored at schedule time
	LeadName     string
	Status       string
	CreatedAt    time.Time
}

// Entry is one immutable conversation-log row.
type Entry struct {
	ID                uuid.UUID
	Phone             string // normalized digits-only contact identifier
	LeadName          string // copied from the matched dispatch at write time
	Message           string
	FromMe            bool
	MessageID         string // provider message id, dedup key with Instance
	Instance          string
	MessageType       string
	ProviderTimestamp int64
	Status            string
	CreatedAt         time.Time
}

// EntryFilter bounds a range read over the conversation log.
type EntryFilter struct {
	Phone  string     // normalized; empty matches all contacts
	FromMe *bool      // nil matches both directions
	Since  *time.Time // nil means no lower bound on creation time
	Limit  int        // 0 means no limit
}

// Thread is the derived per-contact rollup. Never persisted; recomputed from
// the log on each read.
type Thread struct {
	Phone         string `json:"phone"`
	RawPhone      string `json:"rawPhone"`
	DisplayPhone  string `json:"displayPhone"`
	LeadName      string `json:"leadName"`
	LastMessage   string `json:"lastMessage"`
	LastTimestamp int64  `json:"lastTimestamp"`
	MessageCount  int    `json:"messageCount"`
	UnreadCount   int    `json:"unreadCount"`
}

// Stats is the cross-contact rollup over the full conversation log.
type Stats struct {
	TotalMessages    int     `json:"totalMessages"`
	DistinctContacts int     `json:"distinctContacts"`
	Sent             int     `json:"sent"`
	Received         int     `json:"received"`
	ReplyRate        float64 `json:"replyRate"` // percent; 0 when nothing was sent
}

// OutcomeKind tags the result of processing one provider event.
type OutcomeKind int

const (
	// OutcomeRecorded means exactly one conversation entry was appended.
	OutcomeRecorded OutcomeKind = iota
	// OutcomeDiscarded means the event was deliberately dropped (unroutable,
	// empty body, or unsupported event type). Not an error.
	OutcomeDiscarded
	// OutcomeDuplicate means an entry with the same (instance, message id)
	// already exists. Not an error.
	OutcomeDuplicate
)

// Outcome is the tagged result of the record pipeline. Routine no-op paths are
// modeled here rather than as errors; only storage failures surface as errors.
type Outcome struct {
	Kind   OutcomeKind
	Reason string // set for OutcomeDiscarded
	Entry  *Entry // set for OutcomeRecorded
}
