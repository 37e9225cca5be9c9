package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/wpp-client/internal/status"
	"github.com/matheus3301/wpp-client/internal/tui/ui"
	"github.com/rivo/tview"
)

// StatusBar is the bottom line: profile, channel state, unread total, clock.
type StatusBar struct {
	*tview.TextView
	theme   *ui.Theme
	profile string
	state   status.State
	unread  int
	now     func() time.Time
}

func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme, state: status.Idle, now: time.Now}
}

func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

func (sb *StatusBar) SetState(s status.State) {
	sb.state = s
	sb.render()
}

func (sb *StatusBar) SetUnread(n int) {
	sb.unread = n
	sb.render()
}

// Refresh redraws the line so the clock stays current.
func (sb *StatusBar) Refresh() {
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()
	_, _ = fmt.Fprint(sb, sb.line())
}

func (sb *StatusBar) line() string {
	dot := "●"
	if sb.state != status.Connected {
		dot = "○"
	}
	line := fmt.Sprintf(" [::b]%s[-:-:-] | [%s]%s %s[-] | %s",
		tview.Escape(sb.profile),
		ui.ColorName(sb.theme.StateColor(sb.state)), dot, sb.state,
		sb.now().Format("15:04"))
	if sb.unread > 0 {
		line += fmt.Sprintf(" | [%s::b]%d unread[-:-:-]", ui.ColorName(sb.theme.BadgeBg), sb.unread)
	}
	return line
}
