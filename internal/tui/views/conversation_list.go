package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wpp-client/internal/api"
	"github.com/matheus3301/wpp-client/internal/format"
	"github.com/matheus3301/wpp-client/internal/present"
	"github.com/matheus3301/wpp-client/internal/tui/ui"
	"github.com/rivo/tview"
)

const emptyListText = "No chats available"

// ConversationList is the chat list table. Row 0 is the header; visible
// chats start at row 1.
type ConversationList struct {
	*tview.Table
	theme      *ui.Theme
	chats      []api.Chat
	visible    []api.Chat
	filter     string
	selectedID string
	onOpen     func(api.Chat)
}

func NewConversationList(theme *ui.Theme) *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Conversations ")
	table.SetTitleColor(theme.TitleColor)

	cl := &ConversationList{
		Table: table,
		theme: theme,
	}
	table.SetSelectedFunc(func(row, _ int) {
		if chat, ok := cl.VisibleChat(row); ok && cl.onOpen != nil {
			cl.onOpen(chat)
		}
	})
	cl.render()
	return cl
}

func (cl *ConversationList) Name() string { return "conversations" }

func (cl *ConversationList) Title() string { return "Conversations" }

func (cl *ConversationList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Search"},
		{Key: "r", Description: "Refresh"},
		{Key: "d", Description: "Details"},
		{Key: ":", Description: "Command"},
		{Key: "Tab", Description: "Switch pane"},
		{Key: "?", Description: "Help"},
		{Key: "q", Description: "Quit"},
		{Key: "1-9", Description: "Jump", Numeric: true},
		{Key: "0", Description: "Show all", Numeric: true},
	}
}

// SetOnOpen sets the callback fired when Enter is pressed on a chat.
func (cl *ConversationList) SetOnOpen(fn func(api.Chat)) {
	cl.onOpen = fn
}

// Update replaces the chats and the id of the open chat. The cursor stays
// on the chat it was on when that chat is still visible.
func (cl *ConversationList) Update(chats []api.Chat, selectedID string) {
	cl.chats = chats
	cl.selectedID = selectedID
	cl.render()
}

// SetFilter narrows the list to chats whose name or wa_id contains q.
func (cl *ConversationList) SetFilter(q string) {
	cl.filter = q
	cl.render()
}

func (cl *ConversationList) Filter() string { return cl.filter }

// Visible returns the chats currently listed.
func (cl *ConversationList) Visible() []api.Chat { return cl.visible }

// VisibleChat returns the chat drawn at table row.
func (cl *ConversationList) VisibleChat(row int) (api.Chat, bool) {
	idx := row - 1
	if idx < 0 || idx >= len(cl.visible) {
		return api.Chat{}, false
	}
	return cl.visible[idx], true
}

// CursorChat returns the chat under the cursor.
func (cl *ConversationList) CursorChat() (api.Chat, bool) {
	row, _ := cl.GetSelection()
	return cl.VisibleChat(row)
}

// ChatAt returns the Nth visible chat, 1-based.
func (cl *ConversationList) ChatAt(n int) (api.Chat, bool) {
	return cl.VisibleChat(n)
}

func (cl *ConversationList) render() {
	cursorID := ""
	if c, ok := cl.CursorChat(); ok {
		cursorID = c.WaID
	}

	cl.Clear()
	cl.visible = present.FilterChats(cl.chats, cl.filter)

	headers := []struct {
		text string
		exp  int
	}{
		{"", 0},
		{" NAME", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
		{" UNREAD", 0},
	}
	for col, h := range headers {
		cell := tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp)
		cl.SetCell(0, col, cell)
	}

	if len(cl.visible) == 0 {
		cl.SetCell(1, 1, tview.NewTableCell(" "+emptyListText).
			SetSelectable(false).
			SetTextColor(cl.theme.MetaColor))
	}

	cursorRow := 1
	for i, chat := range cl.visible {
		row := i + 1
		if chat.WaID == cursorID {
			cursorRow = row
		}
		cl.setRow(row, chat)
	}
	if len(cl.visible) > 0 {
		cl.Select(cursorRow, 0)
	}

	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Conversations (%d/%d) search: %s ", len(cl.visible), len(cl.chats), tview.Escape(cl.filter)))
	} else {
		cl.SetTitle(fmt.Sprintf(" Conversations (%d) ", len(cl.chats)))
	}
}

func (cl *ConversationList) setRow(row int, chat api.Chat) {
	fg := cl.theme.FgColor
	attrs := tcell.AttrNone
	marker := " "
	if chat.WaID == cl.selectedID {
		fg = cl.theme.OutgoingColor
		attrs = tcell.AttrBold
		marker = "▌"
	}

	cl.SetCell(row, 0, tview.NewTableCell(marker+" "+tview.Escape(format.Avatar(chat))+" ").
		SetTextColor(cl.theme.BadgeFg).
		SetBackgroundColor(cl.theme.SeparatorColor))
	cl.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(format.DisplayName(chat)))).
		SetExpansion(1).
		SetTextColor(fg).
		SetAttributes(attrs))
	cl.SetCell(row, 2, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(format.Preview(chat)))).
		SetExpansion(2).
		SetMaxWidth(48).
		SetTextColor(cl.theme.MetaColor))
	cl.SetCell(row, 3, tview.NewTableCell(" "+format.LastActivity(chat)).
		SetAlign(tview.AlignRight).
		SetTextColor(cl.theme.MetaColor))

	badge := tview.NewTableCell("")
	if chat.UnreadCount > 0 {
		badge = tview.NewTableCell(fmt.Sprintf(" %d ", chat.UnreadCount)).
			SetTextColor(cl.theme.BadgeFg).
			SetBackgroundColor(cl.theme.BadgeBg).
			SetAttributes(tcell.AttrBold)
	}
	cl.SetCell(row, 4, badge.SetAlign(tview.AlignRight))
}
