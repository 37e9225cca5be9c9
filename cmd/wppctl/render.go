package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/matheus3301/wpp-client/internal/api"
	"github.com/matheus3301/wpp-client/internal/bus"
	"github.com/matheus3301/wpp-client/internal/format"
	"github.com/matheus3301/wpp-client/internal/present"
	"github.com/matheus3301/wpp-client/internal/status"
	"github.com/olekukonko/tablewriter"
)

const previewWidth = 48

func renderChats(w io.Writer, chats []api.Chat) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "Name", "WA ID", "Last Message", "Time", "Unread"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetTablePadding("  ")
	for _, c := range chats {
		unread := ""
		if c.UnreadCount > 0 {
			unread = strconv.Itoa(c.UnreadCount)
		}
		table.Append([]string{
			format.Avatar(c),
			format.DisplayName(c),
			c.WaID,
			truncate(format.Preview(c), previewWidth),
			format.LastActivity(c),
			unread,
		})
	}
	table.Render()
}

// renderMessages prints msgs under relative day headers, oldest first.
func renderMessages(w io.Writer, msgs []api.Message, now time.Time, colorize bool) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages yet")
		return
	}
	for i, bucket := range present.GroupByDay(msgs, now) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "─── %s ───\n", paint(colorize, color.FgGray, bucket.Label))
		for _, m := range bucket.Messages {
			fmt.Fprintln(w, messageLine(m, colorize))
		}
	}
}

func messageLine(m api.Message, colorize bool) string {
	dir := "←"
	if m.IsOutgoing() {
		dir = "→"
	}
	line := fmt.Sprintf("%s %s  %s", format.Time(m.Timestamp.Time), dir, oneLine(m.Text))
	if g, ok := format.StatusGlyph(m); ok {
		mark := g.Mark
		if g.Read {
			mark = paint(colorize, color.FgLightBlue, mark)
		}
		line += " " + mark
	}
	return line
}

func renderEvent(w io.Writer, evt bus.Event, colorize bool) {
	stamp := evt.Timestamp.Local().Format("15:04:05")
	switch p := evt.Payload.(type) {
	case status.StatusChange:
		line := fmt.Sprintf("%s %s %s -> %s", stamp, evt.Kind, p.From, stateLabel(p.To, colorize))
		if p.Err != nil {
			line += " (" + p.Err.Error() + ")"
		}
		fmt.Fprintln(w, line)
	case api.Message:
		fmt.Fprintf(w, "%s %s [%s] %s\n", stamp, evt.Kind, p.WaID, messageLine(p, colorize))
	default:
		body, err := json.Marshal(p)
		if err != nil {
			body = []byte(fmt.Sprint(p))
		}
		fmt.Fprintf(w, "%s %s %s\n", stamp, evt.Kind, body)
	}
}

func stateLabel(s status.State, colorize bool) string {
	switch s {
	case status.Connected:
		return paint(colorize, color.FgGreen, string(s))
	case status.Reconnecting, status.Closed:
		return paint(colorize, color.FgRed, string(s))
	default:
		return paint(colorize, color.FgYellow, string(s))
	}
}

func paint(colorize bool, c color.Color, s string) string {
	if !colorize {
		return s
	}
	return color.New(c).Render(s)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	s = oneLine(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
