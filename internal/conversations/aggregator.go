package conversations

import (
	"sort"

	"prospecta_backend/platform/phone"
)

// BuildThreads folds the conversation log into per-contact thread summaries.
// Entries must be ordered by creation time ascending (the repository's range
// read guarantees this). Grouping keys on the normalized identifier so the
// same logical contact collapses into one thread even when historical rows
// carry differently formatted raw identifiers; the most recent stored form is
// kept for user-facing actions like opening the external chat.
//
// The last message is the entry with the highest provider timestamp; equal
// timestamps resolve to the later row. Unread counts inbound messages after
// the thread's most recent outbound message — a thread we never wrote to
// counts every inbound message as unread.
func BuildThreads(entries []Entry) []Thread {
	byPhone := make(map[string]*Thread)
	order := make([]string, 0)

	for _, e := range entries {
		key := phone.NormalizeJID(e.Phone)
		if key == "" {
			continue
		}

		t, ok := byPhone[key]
		if !ok {
			t = &Thread{Phone: key}
			byPhone[key] = t
			order = append(order, key)
		}

		t.RawPhone = e.Phone
		t.MessageCount++

		if t.LeadName == "" && e.LeadName != "" {
			t.LeadName = e.LeadName
		}

		if e.ProviderTimestamp >= t.LastTimestamp {
			t.LastTimestamp = e.ProviderTimestamp
			t.LastMessage = e.Message
		}

		if e.FromMe {
			t.UnreadCount = 0
		} else {
			t.UnreadCount++
		}
	}

	threads := make([]Thread, 0, len(order))
	for _, key := range order {
		t := byPhone[key]
		t.DisplayPhone = phone.FormatDisplay(t.Phone)
		threads = append(threads, *t)
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].LastTimestamp > threads[j].LastTimestamp
	})

	return threads
}

// BuildStats folds the conversation log into cross-contact statistics.
// Purely derived: recomputable from the log alone at any time.
func BuildStats(entries []Entry) Stats {
	s := Stats{TotalMessages: len(entries)}

	contacts := make(map[string]struct{})
	for _, e := range entries {
		if key := phone.NormalizeJID(e.Phone); key != "" {
			contacts[key] = struct{}{}
		}
		if e.FromMe {
			s.Sent++
		} else {
			s.Received++
		}
	}
	s.DistinctContacts = len(contacts)

	if s.Sent > 0 {
		s.ReplyRate = float64(s.Received) / float64(s.Sent) * 100
	}

	return s
}
