package ui

import (
	"strings"

	"github.com/rivo/tview"
)

// menuRows is the height of the header, so hints wrap into a new column
// every menuRows entries.
const menuRows = 5

// Menu lists the key hints of the page on top.
type Menu struct {
	*tview.TextView
	theme *Theme
}

func NewMenu(theme *Theme) *Menu {
	m := &Menu{TextView: tview.NewTextView().SetDynamicColors(true), theme: theme}
	m.SetBackgroundColor(theme.BgColor)
	m.SetBorderPadding(0, 0, 2, 0)
	return m
}

func (m *Menu) Update(hints []MenuHint) {
	m.SetText(m.layout(hints))
}

// layout fills columns top to bottom and pads every cell to the widest hint.
func (m *Menu) layout(hints []MenuHint) string {
	cellWidth := 0
	for _, h := range hints {
		cellWidth = max(cellWidth, len(h.Key)+len(h.Description)+5)
	}

	rows := make([]strings.Builder, min(len(hints), menuRows))
	for i, h := range hints {
		color := m.theme.MenuKeyColor
		if h.Numeric {
			color = m.theme.NumericKeyColor
		}
		row := &rows[i%menuRows]
		row.WriteString("[" + colorName(color) + "::b]<" + tview.Escape(h.Key) + ">[-:-:-] " + h.Description)
		row.WriteString(strings.Repeat(" ", cellWidth-len(h.Key)-len(h.Description)-3))
	}

	var out strings.Builder
	for i := range rows {
		out.WriteString(rows[i].String())
		out.WriteByte('\n')
	}
	return out.String()
}
