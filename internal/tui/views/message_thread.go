package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wpp-client/internal/api"
	"github.com/matheus3301/wpp-client/internal/format"
	"github.com/matheus3301/wpp-client/internal/present"
	"github.com/matheus3301/wpp-client/internal/tui/ui"
	"github.com/rivo/tview"
)

const composerPlaceholder = "Type a message"

// MessageThread shows one conversation: a header, the messages grouped by
// day, and a multi-line composer.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	header   *tview.TextView
	messages *tview.TextView
	composer *tview.TextArea

	chat   *api.Chat
	msgs   []api.Message
	rev    uint64
	width  int
	onSend func(text string)
	now    func() time.Time
}

func NewMessageThread(theme *ui.Theme) *MessageThread {
	header := tview.NewTextView().
		SetDynamicColors(true)
	header.SetBackgroundColor(theme.BgColor)
	header.SetBorderPadding(0, 0, 1, 1)

	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewTextArea().
		SetPlaceholder(composerPlaceholder)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetTitle(" Compose (i to focus, Enter to send, Alt+Enter for newline) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 4, 0, false)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		header:   header,
		messages: messages,
		composer: composer,
		now:      time.Now,
	}

	composer.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Key() {
		case tcell.KeyEnter:
			if ev.Modifiers()&(tcell.ModShift|tcell.ModAlt) != 0 {
				return ev
			}
			mt.submit()
			return nil
		}
		return ev
	})

	return mt
}

func (mt *MessageThread) Name() string { return "thread" }

// Title returns the display name of the open chat.
func (mt *MessageThread) Title() string {
	if mt.chat == nil {
		return "Messages"
	}
	return format.DisplayName(*mt.chat)
}

func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "Enter", Description: "Send"},
		{Key: "d", Description: "Details"},
		{Key: "Tab", Description: "Switch pane"},
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// SetOnSend sets the callback receiving submitted composer text.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// Composer returns the composer (for focus management).
func (mt *MessageThread) Composer() *tview.TextArea { return mt.composer }

// Messages returns the message pane (for focus management).
func (mt *MessageThread) Messages() *tview.TextView { return mt.messages }

// ChatID returns the wa_id of the chat on display, or "".
func (mt *MessageThread) ChatID() string {
	if mt.chat == nil {
		return ""
	}
	return mt.chat.WaID
}

// Update shows chat with msgs. The pane scrolls to the newest message when
// the chat or rev changes; otherwise the scroll position is kept.
func (mt *MessageThread) Update(chat api.Chat, msgs []api.Message, rev uint64) {
	scroll := mt.chat == nil || mt.chat.WaID != chat.WaID || mt.rev != rev
	if mt.chat != nil && mt.chat.WaID != chat.WaID {
		mt.composer.SetText("", false)
	}
	c := chat
	mt.chat = &c
	mt.msgs = msgs
	mt.rev = rev

	mt.renderHeader()
	mt.renderMessages(scroll)
}

func (mt *MessageThread) submit() {
	text := mt.composer.GetText()
	if strings.TrimSpace(text) == "" {
		return
	}
	if mt.onSend != nil {
		mt.onSend(text)
	}
	mt.composer.SetText("", false)
}

// Draw re-lays out the bubbles when the pane width changes.
func (mt *MessageThread) Draw(screen tcell.Screen) {
	mt.Flex.Draw(screen)
	_, _, w, _ := mt.messages.GetInnerRect()
	if w != mt.width && mt.chat != nil {
		mt.width = w
		mt.renderMessages(false)
		mt.Flex.Draw(screen)
	}
}

func (mt *MessageThread) renderHeader() {
	mt.header.Clear()
	chat := *mt.chat
	_, _ = fmt.Fprintf(mt.header, "[%s:%s:b] %s [-:-:-] [%s::b]%s[-:-:-]  [%s]%s[-]",
		ui.ColorName(mt.theme.BadgeFg), ui.ColorName(mt.theme.SeparatorColor), tview.Escape(format.Avatar(chat)),
		ui.ColorName(mt.theme.IncomingColor), tview.Escape(sanitizeForTerminal(format.DisplayName(chat))),
		ui.ColorName(mt.theme.MetaColor), tview.Escape(chat.WaID),
	)
	mt.messages.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(format.DisplayName(chat)))))
}

func (mt *MessageThread) renderMessages(scrollToEnd bool) {
	row, col := mt.messages.GetScrollOffset()
	width := mt.width
	if width <= 0 {
		_, _, width, _ = mt.messages.GetInnerRect()
	}

	lines := layoutThread(present.GroupByDay(mt.msgs, mt.now()), width, mt.theme)
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.tagged())
		b.WriteString("\n")
	}
	mt.messages.SetText(b.String())

	if scrollToEnd {
		mt.messages.ScrollToEnd()
	} else {
		mt.messages.ScrollTo(row, col)
	}
}
