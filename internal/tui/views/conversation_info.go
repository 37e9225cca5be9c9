package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/wpp-client/internal/api"
	"github.com/matheus3301/wpp-client/internal/format"
	"github.com/matheus3301/wpp-client/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationInfo displays detailed information about a conversation.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
	name  string
	now   func() time.Time
}

func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Conversation Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
		now:      time.Now,
	}
}

func (ci *ConversationInfo) Name() string { return "details" }

func (ci *ConversationInfo) Title() string {
	if ci.name == "" {
		return "Details"
	}
	return ci.name + " Details"
}

func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// Update renders chat.
func (ci *ConversationInfo) Update(chat api.Chat) {
	ci.Clear()
	ci.name = format.DisplayName(chat)
	_, _ = fmt.Fprint(ci, ci.details(chat))
	ci.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(ci.Title()))))
}

func (ci *ConversationInfo) details(chat api.Chat) string {
	fg := ui.ColorName(ci.theme.FgColor)
	ct := ui.ColorName(ci.theme.CounterColor)

	name := chat.ProfileName
	if name == "" {
		name = "-"
	}
	lastActive, lastStatus := "-", "-"
	if m := chat.LastMessage; m != nil && !m.Timestamp.IsZero() {
		lastActive = format.Date(m.Timestamp.Time, ci.now()) + " " + format.Time(m.Timestamp.Time)
		if m.Status != "" {
			lastStatus = string(m.Status)
		}
	}

	row := func(label, value string) string {
		return fmt.Sprintf(" [%s::b]%-14s[-:-:-] [%s]%s[-]\n", fg, label, ct, tview.Escape(sanitizeForTerminal(value)))
	}
	return "\n" +
		row("Avatar:", format.Avatar(chat)) +
		row("Name:", name) +
		row("wa_id:", chat.WaID) +
		row("Unread:", fmt.Sprint(chat.UnreadCount)) +
		row("Last Active:", lastActive) +
		row("Last Status:", lastStatus) +
		row("Last Message:", format.Preview(chat))
}
