package format

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/matheus3301/wpp-client/internal/api"
)

const noMessagesPreview = "No messages yet"

// Time renders t as a two-digit, 24-hour clock time ("05:09").
func Time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("15:04")
}

// TimeIn renders t as a clock time in loc.
func TimeIn(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("15:04")
}

// Date returns a relative day label for t as seen from now: "Today",
// "Yesterday", "Jan 2", or "Jan 2, 2006" when the year differs from now's.
// Days are compared by calendar components in now's location.
func Date(t, now time.Time) string {
	t = t.In(now.Location())
	if sameDay(t, now) {
		return "Today"
	}
	if sameDay(t, now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}
	if t.Year() != now.Year() {
		return t.Format("Jan 2, 2006")
	}
	return t.Format("Jan 2")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DisplayName returns the profile name, falling back to the wa_id.
func DisplayName(c api.Chat) string {
	if c.ProfileName != "" {
		return c.ProfileName
	}
	return c.WaID
}

// Avatar returns the upper-cased first letter of the profile name, or the
// last two characters of the wa_id when there is no name.
func Avatar(c api.Chat) string {
	if c.ProfileName != "" {
		r, _ := utf8.DecodeRuneInString(c.ProfileName)
		return string(unicode.ToUpper(r))
	}
	runes := []rune(c.WaID)
	if len(runes) <= 2 {
		return c.WaID
	}
	return string(runes[len(runes)-2:])
}

// Preview returns the last message text of a chat.
func Preview(c api.Chat) string {
	if c.LastMessage == nil || c.LastMessage.Text == "" {
		return noMessagesPreview
	}
	return strings.Join(strings.Fields(c.LastMessage.Text), " ")
}

// LastActivity returns the clock time of the chat's last message, or "".
func LastActivity(c api.Chat) string {
	if c.LastMessage == nil {
		return ""
	}
	return Time(c.LastMessage.Timestamp.Time)
}

// Glyph is a delivery status mark for an outgoing message.
type Glyph struct {
	Mark string
	Read bool
}

// StatusGlyph returns the delivery mark of m. Inbound messages have none.
func StatusGlyph(m api.Message) (Glyph, bool) {
	if !m.IsOutgoing() {
		return Glyph{}, false
	}
	switch m.Status {
	case api.StatusDelivered:
		return Glyph{Mark: "✓✓"}, true
	case api.StatusRead:
		return Glyph{Mark: "✓✓", Read: true}, true
	default:
		return Glyph{Mark: "✓"}, true
	}
}
