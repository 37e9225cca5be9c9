package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Crumbs shows where the user is, e.g. "Conversations › Alice".
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

func NewCrumbs(theme *Theme) *Crumbs {
	c := &Crumbs{TextView: tview.NewTextView().SetDynamicColors(true), theme: theme}
	c.SetBackgroundColor(theme.BgColor)
	return c
}

// Update redraws the bar. The last label is highlighted.
func (c *Crumbs) Update(labels []string) {
	c.SetText(c.trail(labels))
}

func (c *Crumbs) trail(labels []string) string {
	var b strings.Builder
	last := len(labels) - 1
	for i, label := range labels {
		if i > 0 {
			b.WriteString(" › ")
		}
		style := colorName(c.theme.CrumbInactiveFg) + ":" + colorName(c.theme.CrumbInactiveBg) + ":"
		if i == last {
			style = colorName(c.theme.CrumbActiveFg) + ":" + colorName(c.theme.CrumbActiveBg) + ":b"
		}
		b.WriteString("[" + style + "] " + tview.Escape(label) + " [-:-:-]")
	}
	return b.String()
}

// colorName turns c into something a style tag accepts.
func colorName(c tcell.Color) string {
	if c == tcell.ColorDefault {
		return "-"
	}
	for name, v := range tcell.ColorNames {
		if v == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}
