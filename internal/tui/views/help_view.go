package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/wpp-client/internal/tui/ui"
	"github.com/rivo/tview"
)

type helpEntry struct{ key, desc string }

type helpSection struct {
	title   string
	entries []helpEntry
}

var helpSections = []helpSection{
	{"Global Keys", []helpEntry{
		{":", "Command mode"},
		{"/", "Search conversations"},
		{"?", "Help"},
		{"Tab", "Switch between list and conversation"},
		{"Esc", "Cancel / Go back / Close conversation"},
		{"q", "Quit (Back on inner pages)"},
		{"Ctrl-C", "Quit immediately"},
	}},
	{"Conversation List", []helpEntry{
		{"Enter", "Open conversation"},
		{"1-9", "Open Nth listed conversation"},
		{"0", "Show all (clear search)"},
		{"r", "Refresh conversations"},
		{"d", "Conversation details"},
		{"j/Down k/Up", "Move"},
	}},
	{"Conversation", []helpEntry{
		{"i", "Focus composer"},
		{"Enter", "Send message (in composer)"},
		{"Alt-Enter", "New line (in composer)"},
		{"Esc", "Leave composer"},
		{"d", "Conversation details"},
	}},
	{"Commands (: mode)", []helpEntry{
		{":chat <name|wa_id>", "Open the first matching conversation"},
		{":filter <text>", "Search conversations (:f)"},
		{":refresh", "Reload conversations (:r)"},
		{":details", "Conversation details"},
		{":help", "Show this help (:h)"},
		{":quit", "Quit application (:q)"},
	}},
}

// HelpView displays the key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	_, _ = fmt.Fprint(hv, hv.text())
	return hv
}

func (hv *HelpView) Name() string { return "help" }

func (hv *HelpView) Title() string { return "Help" }

func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
		{Key: "q", Description: "Back"},
	}
}

func (hv *HelpView) text() string {
	kc := ui.ColorName(hv.theme.MenuKeyColor)
	var b strings.Builder
	for _, s := range helpSections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, e := range s.entries {
			fmt.Fprintf(&b, "  [%s]%-20s[-:-:-] %s\n", kc, tview.Escape(e.key), e.desc)
		}
	}
	return b.String()
}
