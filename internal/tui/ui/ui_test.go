package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wpp-client/internal/status"
	"github.com/rivo/tview"
)

func TestFlashModelExpiry(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	f := NewFlashModel()
	f.now = func() time.Time { return now }

	if f.Current() != nil {
		t.Fatal("new model should have no message")
	}

	f.Info("refreshing")
	msg := f.Current()
	if msg == nil || msg.Text != "refreshing" || msg.Level != FlashInfo {
		t.Fatalf("Current() = %+v", msg)
	}
	if got := <-f.Watch(); got.Text != "refreshing" {
		t.Errorf("Watch() = %q", got.Text)
	}

	now = now.Add(FlashInfo.ttl() + time.Second)
	if f.Current() != nil {
		t.Error("message should have expired")
	}

	f.Err(errors.New("boom"))
	if msg := f.Current(); msg == nil || msg.Level != FlashErr {
		t.Errorf("Current() = %+v, want error level", msg)
	}
	f.Clear()
	if f.Current() != nil {
		t.Error("Clear() should drop the message")
	}
}

func TestPagesStack(t *testing.T) {
	p := NewPages()
	for _, name := range []string{"conversations", "help", "details"} {
		p.AddPage(name, tview.NewBox(), true, false)
	}

	var changes [][]string
	p.SetOnChange(func(stack []string) { changes = append(changes, stack) })

	p.Reset("conversations")
	p.Push("help")
	p.Push("help")
	if got := strings.Join(p.Stack(), ","); got != "conversations,help" {
		t.Fatalf("stack = %s", got)
	}

	p.Push("details")
	p.Push("help")
	if got := strings.Join(p.Stack(), ","); got != "conversations,details,help" {
		t.Fatalf("stack after re-push = %s", got)
	}

	if top := p.Pop(); top != "help" {
		t.Errorf("Pop() = %q, want help", top)
	}
	p.Pop()
	if top := p.Pop(); top != "" {
		t.Errorf("root should not pop, got %q", top)
	}
	if p.Current() != "conversations" {
		t.Errorf("Current() = %q", p.Current())
	}
	if len(changes) != 6 {
		t.Errorf("got %d change notifications, want 6", len(changes))
	}
}

func TestMenuLayoutColumns(t *testing.T) {
	m := NewMenu(DefaultTheme())
	hints := []MenuHint{
		{Key: "a", Description: "One"},
		{Key: "b", Description: "Two"},
		{Key: "c", Description: "Three"},
		{Key: "d", Description: "Four"},
		{Key: "e", Description: "Five"},
		{Key: "1-9", Description: "Jump", Numeric: true},
	}
	lines := strings.Split(strings.TrimRight(m.layout(hints), "\n"), "\n")
	if len(lines) != menuRows {
		t.Fatalf("got %d rows, want %d", len(lines), menuRows)
	}
	if !strings.Contains(lines[0], "One") || !strings.Contains(lines[0], "Jump") {
		t.Errorf("first row should hold both columns: %q", lines[0])
	}
	if strings.Contains(lines[1], "Jump") {
		t.Errorf("second row should have one column: %q", lines[1])
	}
}

func TestCrumbsActiveIsLast(t *testing.T) {
	c := NewCrumbs(DefaultTheme())
	trail := c.trail([]string{"Conversations", "Alice"})
	want := "[" + colorName(c.theme.CrumbActiveFg) + ":" + colorName(c.theme.CrumbActiveBg) + ":b] Alice [-:-:-]"
	if !strings.HasSuffix(trail, want) {
		t.Errorf("trail = %q", trail)
	}
	if !strings.Contains(trail, " › ") {
		t.Errorf("labels should be joined by a separator: %q", trail)
	}
	if c.trail(nil) != "" {
		t.Error("empty trail should render nothing")
	}
}

func TestStateColor(t *testing.T) {
	th := DefaultTheme()
	tests := []struct {
		state status.State
		want  string
	}{
		{status.Connected, colorName(th.OnlineColor)},
		{status.Reconnecting, colorName(th.FlashWarnColor)},
		{status.Closed, colorName(th.OfflineColor)},
		{status.Idle, colorName(th.FgColor)},
	}
	for _, tt := range tests {
		if got := colorName(th.StateColor(tt.state)); got != tt.want {
			t.Errorf("StateColor(%s) = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestPromptCommandHistory(t *testing.T) {
	p := NewPrompt(DefaultTheme())
	var submitted []string
	p.SetOnSubmit(func(_ PromptMode, text string) { submitted = append(submitted, text) })

	p.Activate(PromptCommand, "")
	p.done(tcell.KeyEnter)
	if len(submitted) != 0 {
		t.Fatal("empty command should not submit")
	}
	for _, cmd := range []string{"help", "chat Bob"} {
		p.Activate(PromptCommand, cmd)
		p.done(tcell.KeyEnter)
	}

	p.Activate(PromptCommand, "")
	up := tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
	if p.recall(up) != nil {
		t.Fatal("Up should be consumed")
	}
	if p.GetText() != "chat Bob" {
		t.Errorf("first Up = %q", p.GetText())
	}
	p.recall(up)
	p.recall(up)
	if p.GetText() != "help" {
		t.Errorf("Up stops at the oldest entry, got %q", p.GetText())
	}
	p.recall(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	p.recall(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	if p.GetText() != "" {
		t.Errorf("Down past the newest entry should clear, got %q", p.GetText())
	}

	p.Activate(PromptFilter, "")
	p.done(tcell.KeyEnter)
	if got := submitted[len(submitted)-1]; got != "" || len(submitted) != 3 {
		t.Errorf("empty filter should submit, got %v", submitted)
	}
}
