package conversations

import (
	"testing"
	"time"
)

func entry(phone string, fromMe bool, msg string, ts int64) Entry {
	return Entry{
		Phone:             phone,
		FromMe:            fromMe,
		Message:           msg,
		ProviderTimestamp: ts,
		CreatedAt:         time.Unix(ts, 0),
	}
}

func TestBuildThreadsGroupsByNormalizedIdentifier(t *testing.T) {
	// The same contact stored under two raw forms must collapse into one thread.
	entries := []Entry{
		entry("5541999998888@s.whatsapp.net", true, "hello", 100),
		entry("5541999998888", false, "hi there", 200),
	}

	threads := BuildThreads(entries)
	if len(threads) != 1 {
		t.Fatalf("expected 1 thread, got %d", len(threads))
	}

	th := threads[0]
	if th.Phone != "5541999998888" {
		t.Errorf("thread key = %q, want normalized digits", th.Phone)
	}
	if th.MessageCount != 2 {
		t.Errorf("message count = %d, want 2", th.MessageCount)
	}
	if th.LastMessage != "hi there" {
		t.Errorf("last message = %q, want %q", th.LastMessage, "hi there")
	}
}

func TestBuildThreadsLastMessageTieBreak(t *testing.T) {
	// Equal provider timestamps resolve to the later row (insertion order).
	entries := []Entry{
		entry("551100001111", false, "first", 500),
		entry("551100001111", false, "second", 500),
	}

	threads := BuildThreads(entries)
	if threads[0].LastMessage != "second" {
		t.Errorf("last message = %q, want %q", threads[0].LastMessage, "second")
	}
}

func TestBuildThreadsLeadNameIsFirstNonEmpty(t *testing.T) {
	entries := []Entry{
		{Phone: "551100001111", Message: "a", ProviderTimestamp: 1},
		{Phone: "551100001111", Message: "b", ProviderTimestamp: 2, LeadName: "Padaria Central"},
		{Phone: "551100001111", Message: "c", ProviderTimestamp: 3, LeadName: "Renamed"},
	}

	threads := BuildThreads(entries)
	if threads[0].LeadName != "Padaria Central" {
		t.Errorf("lead name = %q, want first non-empty", threads[0].LeadName)
	}
}

func TestBuildThreadsUnreadCount(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    int
	}{
		{
			name: "inbound after last outbound",
			entries: []Entry{
				entry("551100001111", true, "ping", 1),
				entry("551100001111", false, "pong", 2),
				entry("551100001111", false, "still there?", 3),
			},
			want: 2,
		},
		{
			name: "outbound resets unread",
			entries: []Entry{
				entry("551100001111", false, "hi", 1),
				entry("551100001111", true, "answered", 2),
			},
			want: 0,
		},
		{
			name: "no outbound counts all inbound",
			entries: []Entry{
				entry("551100001111", false, "a", 1),
				entry("551100001111", false, "b", 2),
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			threads := BuildThreads(tt.entries)
			if got := threads[0].UnreadCount; got != tt.want {
				t.Errorf("unread = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildThreadsSortedByLastActivity(t *testing.T) {
	entries := []Entry{
		entry("551100001111", false, "old", 100),
		entry("552200002222", false, "new", 200),
	}

	threads := BuildThreads(entries)
	if threads[0].Phone != "552200002222" {
		t.Errorf("most recent thread first, got %q", threads[0].Phone)
	}
}

func TestBuildThreadsSkipsEntriesWithoutDigits(t *testing.T) {
	entries := []Entry{
		entry("@broadcast", false, "noise", 1),
		entry("551100001111", false, "real", 2),
	}

	if got := len(BuildThreads(entries)); got != 1 {
		t.Errorf("expected 1 thread, got %d", got)
	}
}

func TestBuildStatsReplyRate(t *testing.T) {
	tests := []struct {
		name     string
		sent     int
		received int
		want     float64
	}{
		{"empty log", 0, 0, 0},
		{"no outbound", 0, 5, 0},
		{"ten out three in", 10, 3, 30},
		{"more replies than sends", 2, 4, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []Entry
			for i := 0; i < tt.sent; i++ {
				entries = append(entries, entry("551100001111", true, "out", int64(i)))
			}
			for i := 0; i < tt.received; i++ {
				entries = append(entries, entry("551100001111", false, "in", int64(i)))
			}

			stats := BuildStats(entries)
			if stats.ReplyRate != tt.want {
				t.Errorf("reply rate = %v, want %v", stats.ReplyRate, tt.want)
			}
			if stats.Sent != tt.sent || stats.Received != tt.received {
				t.Errorf("sent/received = %d/%d, want %d/%d", stats.Sent, stats.Received, tt.sent, tt.received)
			}
		})
	}
}

func TestBuildStatsDistinctContacts(t *testing.T) {
	entries := []Entry{
		entry("5541999998888@s.whatsapp.net", false, "a", 1),
		entry("5541999998888", false, "b", 2),
		entry("552200002222", true, "c", 3),
	}

	stats := BuildStats(entries)
	if stats.DistinctContacts != 2 {
		t.Errorf("distinct contacts = %d, want 2", stats.DistinctContacts)
	}
	if stats.TotalMessages != 3 {
		t.Errorf("total = %d, want 3", stats.TotalMessages)
	}
}
