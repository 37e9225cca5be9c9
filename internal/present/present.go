package present

import (
	"strings"
	"time"

	"github.com/matheus3301/wpp-client/internal/api"
	"github.com/matheus3301/wpp-client/internal/format"
	"github.com/samber/lo"
)

// FilterChats returns the chats whose profile name or wa_id contains query.
// Matching is case-sensitive; an empty query keeps every chat.
func FilterChats(chats []api.Chat, query string) []api.Chat {
	if query == "" {
		return chats
	}
	return lo.Filter(chats, func(c api.Chat, _ int) bool {
		return strings.Contains(c.ProfileName, query) || strings.Contains(c.WaID, query)
	})
}

// DayBucket is a run of messages rendered under one date separator.
type DayBucket struct {
	Label    string
	Messages []api.Message
}

// GroupByDay buckets msgs by their relative day label. Buckets appear in the
// order their label first occurs and keep input order inside each bucket.
func GroupByDay(msgs []api.Message, now time.Time) []DayBucket {
	var buckets []DayBucket
	index := make(map[string]int)
	for _, m := range msgs {
		label := format.Date(m.Timestamp.Time, now)
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, DayBucket{Label: label})
		}
		buckets[i].Messages = append(buckets[i].Messages, m)
	}
	return buckets
}

// UnreadTotal sums the unread counters of chats.
func UnreadTotal(chats []api.Chat) int {
	return lo.SumBy(chats, func(c api.Chat) int { return c.UnreadCount })
}
