package present

import (
	"testing"
	"time"

	"github.com/matheus3301/wpp-client/internal/api"
)

func TestFilterChats(t *testing.T) {
	chats := []api.Chat{
		{WaID: "111", ProfileName: "Alice"},
		{WaID: "222"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"111", "222"}},
		{"ali", nil},
		{"Ali", []string{"111"}},
		{"22", []string{"222"}},
		{"1", []string{"111"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		t.Run("query="+tt.query, func(t *testing.T) {
			got := FilterChats(chats, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("FilterChats(%q) returned %d chats, want %d", tt.query, len(got), len(tt.want))
			}
			for i, c := range got {
				if c.WaID != tt.want[i] {
					t.Errorf("FilterChats(%q)[%d] = %s, want %s", tt.query, i, c.WaID, tt.want[i])
				}
			}
		})
	}
}

func TestGroupByDayStableAndFirstOccurrenceOrder(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	today := func(h int) api.Timestamp { return api.At(time.Date(2026, 10, 19, h, 0, 0, 0, time.UTC)) }
	yesterday := func(h int) api.Timestamp { return api.At(time.Date(2026, 10, 18, h, 0, 0, 0, time.UTC)) }
	older := func(h int) api.Timestamp { return api.At(time.Date(2026, 10, 10, h, 0, 0, 0, time.UTC)) }

	// Scrambled across three days.
	msgs := []api.Message{
		{ID: "y1", Timestamp: yesterday(9)},
		{ID: "t1", Timestamp: today(8)},
		{ID: "o1", Timestamp: older(7)},
		{ID: "y2", Timestamp: yesterday(8)},
		{ID: "t2", Timestamp: today(11)},
		{ID: "o2", Timestamp: older(6)},
		{ID: "t3", Timestamp: today(1)},
	}

	got := GroupByDay(msgs, now)

	want := []struct {
		label string
		ids   []string
	}{
		{"Yesterday", []string{"y1", "y2"}},
		{"Today", []string{"t1", "t2", "t3"}},
		{"Oct 10", []string{"o1", "o2"}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d buckets, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Label != w.label {
			t.Errorf("bucket %d label = %q, want %q", i, got[i].Label, w.label)
		}
		if len(got[i].Messages) != len(w.ids) {
			t.Fatalf("bucket %q has %d messages, want %d", w.label, len(got[i].Messages), len(w.ids))
		}
		for j, id := range w.ids {
			if got[i].Messages[j].ID != id {
				t.Errorf("bucket %q[%d] = %s, want %s", w.label, j, got[i].Messages[j].ID, id)
			}
		}
	}
}

func TestGroupByDayEmpty(t *testing.T) {
	if got := GroupByDay(nil, time.Now()); len(got) != 0 {
		t.Errorf("GroupByDay(nil) = %v, want empty", got)
	}
}

func TestUnreadTotal(t *testing.T) {
	chats := []api.Chat{{UnreadCount: 2}, {UnreadCount: 0}, {UnreadCount: 5}}
	if got := UnreadTotal(chats); got != 7 {
		t.Errorf("UnreadTotal() = %d, want 7", got)
	}
}
