package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wpp-client/internal/status"
	"github.com/rivo/tview"
)

// ConnectionData is what the header shows about the backend connection.
type ConnectionData struct {
	Profile    string
	BackendURI string
	State      status.State
	Chats      int
	Unread     int
}

// ConnectionInfo displays profile and connection metadata in the header.
type ConnectionInfo struct {
	*tview.TextView
	theme *Theme
}

func NewConnectionInfo(theme *Theme) *ConnectionInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &ConnectionInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders data.
func (ci *ConnectionInfo) Update(data ConnectionData) {
	ci.Clear()

	fgColor := colorName(ci.theme.FgColor)
	counterColor := colorName(ci.theme.CounterColor)
	stateColor := colorName(ci.theme.StateColor(data.State))

	state := string(data.State)
	if state == "" {
		state = string(status.Idle)
	}

	_, _ = fmt.Fprintf(ci,
		"[%s::b]Profile:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]Backend:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]Channel:[-:-:-] [%s::b]%s[-:-:-]\n"+
			"[%s::b]Chats:[-:-:-]   [%s]%d[-]\n"+
			"[%s::b]Unread:[-:-:-]  [%s]%d[-]",
		fgColor, counterColor, tview.Escape(data.Profile),
		fgColor, counterColor, tview.Escape(data.BackendURI),
		fgColor, stateColor, state,
		fgColor, counterColor, data.Chats,
		fgColor, counterColor, data.Unread,
	)
}

// StateColor maps a connection state to its display color.
func (t *Theme) StateColor(s status.State) tcell.Color {
	switch s {
	case status.Connected:
		return t.OnlineColor
	case status.Connecting, status.Reconnecting:
		return t.FlashWarnColor
	case status.Closed:
		return t.OfflineColor
	default:
		return t.FgColor
	}
}
