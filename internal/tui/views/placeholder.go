package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wpp-client/internal/tui/ui"
	"github.com/rivo/tview"
)

// Placeholder is a centered message used for the empty conversation pane
// and the loading screen.
type Placeholder struct {
	*tview.TextView
}

func newPlaceholder(theme *ui.Theme, title, subtitle string) *Placeholder {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)

	p := &Placeholder{TextView: tv}
	p.SetDrawFunc(func(_ tcell.Screen, x, y, w, h int) (int, int, int, int) {
		ix, iy, iw, ih := x+1, y+1, w-2, h-2
		pad := max((ih-3)/2, 0)
		return ix, iy + pad, iw, ih - pad
	})
	_, _ = fmt.Fprintf(tv, "[%s::b]%s[-:-:-]\n\n[%s]%s[-]",
		ui.ColorName(theme.FgColor), title, ui.ColorName(theme.MetaColor), subtitle)
	return p
}

// NewEmptyThread is shown in the conversation pane when no chat is open.
func NewEmptyThread(theme *ui.Theme) *Placeholder {
	return newPlaceholder(theme, "WhatsApp Web", "Select a chat to start messaging")
}

// NewLoading is shown until the first conversation fetch completes.
func NewLoading(theme *ui.Theme) *Placeholder {
	return newPlaceholder(theme, "Loading conversations…", "")
}
