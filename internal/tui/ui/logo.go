package ui

import (
	"strings"

	"github.com/rivo/tview"
)

// bubbleArt is a speech bubble drawn in the outgoing bubble color.
var bubbleArt = []string{
	"╭──────╮",
	"│ wpp  │",
	"╰─╮────╯",
}

// Logo sits in the top-right corner of the header.
type Logo struct {
	*tview.TextView
}

// NewLogo draws the bubble with caption underneath.
func NewLogo(theme *Theme, caption string) *Logo {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(1, 0, 1, 0)

	var b strings.Builder
	for _, row := range bubbleArt {
		b.WriteString("[" + colorName(theme.OutgoingColor) + "::b]" + row + "[-:-:-]\n")
	}
	b.WriteString("[" + colorName(theme.MetaColor) + "]" + tview.Escape(caption) + "[-]")
	tv.SetText(b.String())

	return &Logo{TextView: tv}
}
