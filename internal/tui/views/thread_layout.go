package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wpp-client/internal/api"
	"github.com/matheus3301/wpp-client/internal/format"
	"github.com/matheus3301/wpp-client/internal/present"
	"github.com/matheus3301/wpp-client/internal/tui/ui"
	"github.com/rivo/tview"
	"github.com/rivo/uniseg"
)

const (
	minBubbleWidth = 16
	defaultWidth   = 60
)

type segment struct {
	text  string
	color tcell.Color
	bold  bool
}

// threadLine is one rendered row of the message pane.
type threadLine []segment

func (l threadLine) plain() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.text)
	}
	return b.String()
}

func (l threadLine) tagged() string {
	var b strings.Builder
	for _, s := range l {
		if s.color == tcell.ColorDefault {
			b.WriteString(tview.Escape(s.text))
			continue
		}
		attr := ""
		if s.bold {
			attr = "b"
		}
		fmt.Fprintf(&b, "[%s::%s]%s[-:-:-]", ui.ColorName(s.color), attr, tview.Escape(s.text))
	}
	return b.String()
}

// layoutThread renders day separators and bubbles for a pane width columns
// wide. Outgoing bubbles are right-aligned.
func layoutThread(buckets []present.DayBucket, width int, theme *ui.Theme) []threadLine {
	if width <= 0 {
		width = defaultWidth
	}
	bubbleWidth := max(width*3/4, min(minBubbleWidth, width))

	var out []threadLine
	for _, bucket := range buckets {
		out = append(out, separator(bucket.Label, width, theme), nil)
		for _, m := range bucket.Messages {
			out = append(out, bubble(m, width, bubbleWidth, theme)...)
			out = append(out, nil)
		}
	}
	return out
}

func separator(label string, width int, theme *ui.Theme) threadLine {
	text := " " + label + " "
	side := max((width-uniseg.StringWidth(text))/2, 2)
	rule := strings.Repeat("─", side)
	return threadLine{{text: rule + text + rule, color: theme.SeparatorColor}}
}

func bubble(m api.Message, width, bubbleWidth int, theme *ui.Theme) []threadLine {
	out := m.IsOutgoing()
	color := theme.IncomingColor
	if out {
		color = theme.OutgoingColor
	}

	var lines []threadLine
	for _, text := range wrapText(sanitizeForTerminal(m.Text), bubbleWidth) {
		lines = append(lines, align(threadLine{{text: text, color: color}}, width, out))
	}

	footer := threadLine{{text: format.Time(m.Timestamp.Time), color: theme.MetaColor}}
	if g, ok := format.StatusGlyph(m); ok {
		glyph := segment{text: " " + g.Mark, color: theme.MetaColor}
		if g.Read {
			glyph.color = theme.ReadMarkColor
			glyph.bold = true
		}
		footer = append(footer, glyph)
	}
	return append(lines, align(footer, width, out))
}

func align(l threadLine, width int, right bool) threadLine {
	if !right {
		return append(threadLine{{text: " "}}, l...)
	}
	pad := width - uniseg.StringWidth(l.plain()) - 1
	if pad <= 0 {
		return l
	}
	return append(threadLine{{text: strings.Repeat(" ", pad)}}, l...)
}

// wrapText breaks s into lines at most width cells wide. Existing line
// breaks are kept; words longer than width are split.
func wrapText(s string, width int) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line, lineW := "", 0
		for _, w := range words {
			for _, piece := range splitWide(w, width) {
				pw := uniseg.StringWidth(piece)
				switch {
				case lineW == 0:
					line, lineW = piece, pw
				case lineW+1+pw <= width:
					line += " " + piece
					lineW += 1 + pw
				default:
					out = append(out, line)
					line, lineW = piece, pw
				}
			}
		}
		out = append(out, line)
	}
	return out
}

func splitWide(word string, width int) []string {
	if uniseg.StringWidth(word) <= width {
		return []string{word}
	}
	var parts []string
	var cur strings.Builder
	curW := 0
	g := uniseg.NewGraphemes(word)
	for g.Next() {
		cw := g.Width()
		if curW+cw > width && curW > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curW = 0
		}
		cur.WriteString(g.Str())
		curW += cw
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}
