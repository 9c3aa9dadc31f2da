package conversations

import (
	"context"
	"errors"
	"strings"

	"prospecta_backend/internal/events"
	"prospecta_backend/platform/apperr"
	"prospecta_backend/platform/logger"
	"prospecta_backend/platform/phone"

	"github.com/google/uuid"
)

// DispatchFinder correlates a raw channel identifier to a scheduled dispatch.
type DispatchFinder interface {
	FindDispatchByPhone(ctx context.Context, rawPhone string) (Dispatch, error)
}

// EntryStore persists and reads conversation-log rows.
type EntryStore interface {
	AppendEntry(ctx context.Context, e Entry) (bool, error)
	ListEntries(ctx context.Context, f EntryFilter) ([]Entry, error)
}

// StatsCache is an optional read-through cache for the stats rollup.
type StatsCache interface {
	Get(ctx context.Context) (Stats, bool)
}

// Service drives the correlate → record chain and serves the derived views.
type Service struct {
	dispatches DispatchFinder
	store      EntryStore
	cache      StatsCache
	bus        events.Bus
	log        *logger.Logger
}

// NewService creates a new conversations service. cache may be nil.
func NewService(dispatches DispatchFinder, store EntryStore, cache StatsCache, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		dispatches: dispatches,
		store:      store,
		cache:      cache,
		bus:        bus,
		log:        log,
	}
}

// Record processes one provider event end to end. Routine no-op paths
// (unsupported event, empty body, unroutable contact, duplicate delivery)
// come back as tagged outcomes; only storage failures return an error.
func (s *Service) Record(ctx context.Context, payload WebhookPayload) (Outcome, error) {
	if payload.Event != EventMessagesUpsert {
		return s.discard(payload, "unsupported event type"), nil
	}

	body := strings.TrimSpace(payload.Data.Message.Conversation)
	if body == "" {
		// media-only messages with no caption carry nothing worth logging
		return s.discard(payload, "empty message body"), nil
	}

	rawJID := payload.Data.Key.RemoteJID
	dispatch, err := s.dispatches.FindDispatchByPhone(ctx, rawJID)
	if err != nil {
		if errors.Is(err, ErrDispatchNotFound) {
			// deliberate policy: only contacts we dispatched to are tracked
			return s.discard(payload, "no dispatch for contact"), nil
		}
		s.log.DatabaseError("find dispatch", err)
		return Outcome{}, apperr.Wrap(apperr.KindInternal, "failed to correlate event", err)
	}

	entry := Entry{
		ID:                uuid.New(),
		Phone:             phone.NormalizeJID(rawJID),
		LeadName:          dispatch.LeadName,
		Message:           body,
		FromMe:            payload.Data.Key.FromMe,
		MessageID:         payload.Data.Key.ID,
		Instance:          payload.Instance,
		MessageType:       payload.Data.MessageType,
		ProviderTimestamp: payload.Data.MessageTimestamp,
		Status:            payload.Data.Status,
	}

	inserted, err := s.store.AppendEntry(ctx, entry)
	if err != nil {
		s.log.DatabaseError("append conversation entry", err)
		return Outcome{}, apperr.Wrap(apperr.KindInternal, "failed to record message", err)
	}
	if !inserted {
		s.log.WebhookEvent(payload.Event, payload.Instance, "duplicate", "")
		return Outcome{Kind: OutcomeDuplicate}, nil
	}

	s.log.WebhookEvent(payload.Event, payload.Instance, "recorded", "")
	s.publishRecorded(ctx, entry)

	return Outcome{Kind: OutcomeRecorded, Entry: &entry}, nil
}

// Threads returns the per-contact thread summaries, most recent first.
func (s *Service) Threads(ctx context.Context) ([]Thread, error) {
	entries, err := s.store.ListEntries(ctx, EntryFilter{})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to read conversation log", err)
	}
	return BuildThreads(entries), nil
}

// Stats returns the cross-contact statistics, preferring the snapshot cache
// maintained by the background worker and falling back to a fresh fold.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			return cached, nil
		}
	}

	entries, err := s.store.ListEntries(ctx, EntryFilter{})
	if err != nil {
		return Stats{}, apperr.Wrap(apperr.KindInternal, "failed to read conversation log", err)
	}
	return BuildStats(entries), nil
}

// ThreadMessages returns the ordered log for one contact. The identifier is
// normalized before lookup so callers may pass any raw form.
func (s *Service) ThreadMessages(ctx context.Context, rawPhone string) ([]Entry, error) {
	normalized := phone.NormalizeJID(rawPhone)
	if normalized == "" {
		return nil, apperr.Validation("invalid contact identifier")
	}

	entries, err := s.store.ListEntries(ctx, EntryFilter{Phone: normalized})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to read conversation log", err)
	}
	return entries, nil
}

func (s *Service) discard(payload WebhookPayload, reason string) Outcome {
	s.log.WebhookEvent(payload.Event, payload.Instance, "discarded", reason)
	return Outcome{Kind: OutcomeDiscarded, Reason: reason}
}

func (s *Service) publishRecorded(ctx context.Context, entry Entry) {
	if s.bus == nil {
		return
	}

	if entry.FromMe {
		s.bus.Publish(ctx, events.OutboundMessageRecorded{
			BaseEvent: events.NewBaseEvent(),
			EntryID:   entry.ID,
			Phone:     entry.Phone,
			LeadName:  entry.LeadName,
			Instance:  entry.Instance,
		})
		return
	}

	s.bus.Publish(ctx, events.InboundMessageRecorded{
		BaseEvent: events.NewBaseEvent(),
		EntryID:   entry.ID,
		Phone:     entry.Phone,
		LeadName:  entry.LeadName,
		Message:   entry.Message,
		Instance:  entry.Instance,
		MessageID: entry.MessageID,
	})
}
