package conversations

import (
	"context"
	"errors"
	"sync"
	"testing"

	"prospecta_backend/platform/logger"
)

type fakeDispatches struct {
	byPhone map[string]Dispatch
}

func (f *fakeDispatches) FindDispatchByPhone(ctx context.Context, rawPhone string) (Dispatch, error) {
	d, ok := f.byPhone[rawPhone]
	if !ok {
		return Dispatch{}, ErrDispatchNotFound
	}
	return d, nil
}

type fakeStore struct {
	mu        sync.Mutex
	entries   []Entry
	appendErr error
}

func (f *fakeStore) AppendEntry(ctx context.Context, e Entry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.appendErr != nil {
		return false, f.appendErr
	}
	for _, existing := range f.entries {
		if existing.Instance == e.Instance && existing.MessageID == e.MessageID {
			return false, nil
		}
	}
	f.entries = append(f.entries, e)
	return true, nil
}

func (f *fakeStore) ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Entry, 0, len(f.entries))
	for _, e := range f.entries {
		if filter.Phone != "" && e.Phone != filter.Phone {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func newTestService(dispatches *fakeDispatches, store *fakeStore) *Service {
	return NewService(dispatches, store, nil, nil, logger.New("development"))
}

func upsertPayload(remoteJID, messageID, body string, fromMe bool) WebhookPayload {
	p := WebhookPayload{Event: EventMessagesUpsert, Instance: "prospecta-main"}
	p.Data.Key.RemoteJID = remoteJID
	p.Data.Key.FromMe = fromMe
	p.Data.Key.ID = messageID
	p.Data.Message.Conversation = body
	p.Data.MessageType = "conversation"
	p.Data.MessageTimestamp = 1700000000
	return p
}

func TestRecordCorrelatesAndStoresEntry(t *testing.T) {
	dispatches := &fakeDispatches{byPhone: map[string]Dispatch{
		"5541999998888@s.whatsapp.net": {LeadName: "Padaria Central", Status: "sent"},
	}}
	store := &fakeStore{}
	svc := newTestService(dispatches, store)

	outcome, err := svc.Record(context.Background(), upsertPayload("5541999998888@s.whatsapp.net", "MSG-1", "tenho interesse", false))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if outcome.Kind != OutcomeRecorded {
		t.Fatalf("outcome = %v, want recorded", outcome.Kind)
	}

	if len(store.entries) != 1 {
		t.Fatalf("stored %d entries, want 1", len(store.entries))
	}
	e := store.entries[0]
	if e.Phone != "5541999998888" {
		t.Errorf("phone = %q, want normalized digits", e.Phone)
	}
	if e.LeadName != "Padaria Central" {
		t.Errorf("lead name = %q, want copied from dispatch", e.LeadName)
	}
	if e.FromMe {
		t.Error("from_me = true, want false")
	}
	if e.Message != "tenho interesse" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestRecordIsIdempotentAcrossRedeliveries(t *testing.T) {
	dispatches := &fakeDispatches{byPhone: map[string]Dispatch{
		"5541999998888@s.whatsapp.net": {LeadName: "Padaria Central"},
	}}
	store := &fakeStore{}
	svc := newTestService(dispatches, store)

	payload := upsertPayload("5541999998888@s.whatsapp.net", "MSG-1", "oi", false)
	for i := 0; i < 5; i++ {
		outcome, err := svc.Record(context.Background(), payload)
		if err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
		want := OutcomeRecorded
		if i > 0 {
			want = OutcomeDuplicate
		}
		if outcome.Kind != want {
			t.Errorf("delivery %d: outcome = %v, want %v", i, outcome.Kind, want)
		}
	}

	if len(store.entries) != 1 {
		t.Errorf("stored %d entries after 5 deliveries, want 1", len(store.entries))
	}
}

func TestRecordDiscards(t *testing.T) {
	tests := []struct {
		name    string
		payload WebhookPayload
		reason  string
	}{
		{
			name:    "unsupported event type",
			payload: WebhookPayload{Event: "connection.update", Instance: "prospecta-main"},
			reason:  "unsupported event type",
		},
		{
			name:    "empty message body",
			payload: upsertPayload("5541999998888@s.whatsapp.net", "MSG-1", "   ", false),
			reason:  "empty message body",
		},
		{
			name:    "no dispatch for contact",
			payload: upsertPayload("5599000000000@s.whatsapp.net", "MSG-2", "quem fala?", false),
			reason:  "no dispatch for contact",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatches := &fakeDispatches{byPhone: map[string]Dispatch{
				"5541999998888@s.whatsapp.net": {LeadName: "Padaria Central"},
			}}
			store := &fakeStore{}
			svc := newTestService(dispatches, store)

			outcome, err := svc.Record(context.Background(), tt.payload)
			if err != nil {
				t.Fatalf("Record: %v", err)
			}
			if outcome.Kind != OutcomeDiscarded {
				t.Fatalf("outcome = %v, want discarded", outcome.Kind)
			}
			if outcome.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", outcome.Reason, tt.reason)
			}
			if len(store.entries) != 0 {
				t.Errorf("stored %d entries, want none", len(store.entries))
			}
		})
	}
}

func TestRecordReturnsErrorOnStorageFailure(t *testing.T) {
	dispatches := &fakeDispatches{byPhone: map[string]Dispatch{
		"5541999998888@s.whatsapp.net": {LeadName: "Padaria Central"},
	}}
	store := &fakeStore{appendErr: errors.New("connection refused")}
	svc := newTestService(dispatches, store)

	_, err := svc.Record(context.Background(), upsertPayload("5541999998888@s.whatsapp.net", "MSG-1", "oi", false))
	if err == nil {
		t.Fatal("expected error on storage failure")
	}
}

func TestThreadMessagesNormalizesLookup(t *testing.T) {
	store := &fakeStore{entries: []Entry{
		{Phone: "5541999998888", Message: "oi", Instance: "prospecta-main", MessageID: "MSG-1"},
	}}
	svc := newTestService(&fakeDispatches{}, store)

	entries, err := svc.ThreadMessages(context.Background(), "5541999998888@s.whatsapp.net")
	if err != nil {
		t.Fatalf("ThreadMessages: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	if _, err := svc.ThreadMessages(context.Background(), "@broadcast"); err == nil {
		t.Error("expected validation error for identifier without digits")
	}
}

type staticStatsCache struct {
	stats Stats
	ok    bool
}

func (c *staticStatsCache) Get(ctx context.Context) (Stats, bool) { return c.stats, c.ok }

func TestStatsPrefersCachedSnapshot(t *testing.T) {
	store := &fakeStore{entries: []Entry{
		{Phone: "5541999998888", FromMe: true},
	}}
	cache := &staticStatsCache{stats: Stats{TotalMessages: 42, Sent: 40, Received: 2, ReplyRate: 5}, ok: true}
	svc := NewService(&fakeDispatches{}, store, cache, nil, logger.New("development"))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalMessages != 42 {
		t.Errorf("total = %d, want cached snapshot", stats.TotalMessages)
	}

	cache.ok = false
	stats, err = svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats fallback: %v", err)
	}
	if stats.TotalMessages != 1 || stats.Sent != 1 {
		t.Errorf("fallback stats = %+v, want fresh fold", stats)
	}
}
