package ui

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// FlashLevel is the severity of a feedback line.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
)

// ttl reports how long a message of level l stays on screen.
func (l FlashLevel) ttl() time.Duration {
	switch l {
	case FlashWarn:
		return 6 * time.Second
	case FlashErr:
		return 8 * time.Second
	default:
		return 4 * time.Second
	}
}

// FlashMessage is one feedback line.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// FlashModel holds the feedback line shown after a command. Messages expire
// on their own; Watch wakes the screen when a new one is posted.
type FlashModel struct {
	mu      sync.RWMutex
	current *FlashMessage
	posted  chan FlashMessage
	now     func() time.Time
}

func NewFlashModel() *FlashModel {
	return &FlashModel{posted: make(chan FlashMessage, 8), now: time.Now}
}

func (f *FlashModel) Info(msg string) { f.post(msg, FlashInfo) }

func (f *FlashModel) Warn(msg string) { f.post(msg, FlashWarn) }

func (f *FlashModel) Err(err error) { f.post(err.Error(), FlashErr) }

// Clear removes the line immediately.
func (f *FlashModel) Clear() {
	f.mu.Lock()
	f.current = nil
	f.mu.Unlock()
	f.wake(FlashMessage{})
}

func (f *FlashModel) post(text string, level FlashLevel) {
	m := FlashMessage{Text: text, Level: level, Expires: f.now().Add(level.ttl())}
	f.mu.Lock()
	f.current = &m
	f.mu.Unlock()
	f.wake(m)
}

func (f *FlashModel) wake(m FlashMessage) {
	select {
	case f.posted <- m:
	default:
	}
}

// Current returns a copy of the live message, or nil once it expired.
func (f *FlashModel) Current() *FlashMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current == nil || !f.now().Before(f.current.Expires) {
		return nil
	}
	m := *f.current
	return &m
}

func (f *FlashModel) Watch() <-chan FlashMessage { return f.posted }

// FlashBar draws the current FlashMessage.
type FlashBar struct {
	*tview.TextView
	colors map[FlashLevel]tcell.Color
}

func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &FlashBar{
		TextView: tv,
		colors: map[FlashLevel]tcell.Color{
			FlashInfo: theme.FlashInfoColor,
			FlashWarn: theme.FlashWarnColor,
			FlashErr:  theme.FlashErrColor,
		},
	}
}

// Update shows msg; nil empties the bar.
func (fb *FlashBar) Update(msg *FlashMessage) {
	if msg == nil {
		fb.SetText("")
		return
	}
	fb.SetText(" [" + colorName(fb.colors[msg.Level]) + "]" + tview.Escape(msg.Text) + "[-]")
}
