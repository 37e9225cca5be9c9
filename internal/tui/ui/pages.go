package ui

import (
	"slices"

	"github.com/rivo/tview"
)

// Pages shows one named page at a time and remembers how the user got there.
// The first entry of the history is the root and is never popped.
type Pages struct {
	*tview.Pages
	history  []string
	onChange func(history []string)
}

func NewPages() *Pages {
	return &Pages{Pages: tview.NewPages()}
}

// SetOnChange registers fn to run with a copy of the history after every move.
func (p *Pages) SetOnChange(fn func(history []string)) {
	p.onChange = fn
}

// Push switches to name. Pushing the visible page changes nothing; a page
// already in the history is moved to the top instead of appearing twice.
func (p *Pages) Push(name string) {
	if p.Current() == name {
		return
	}
	if i := slices.Index(p.history, name); i >= 0 {
		p.history = slices.Delete(p.history, i, i+1)
	}
	p.switchTo(append(p.history, name))
}

// Pop goes back one page and returns the page it left. Nothing happens at
// the root, and Pop returns "".
func (p *Pages) Pop() string {
	n := len(p.history)
	if n < 2 {
		return ""
	}
	left := p.history[n-1]
	p.switchTo(p.history[:n-1])
	return left
}

// Reset forgets the history and makes name the new root.
func (p *Pages) Reset(name string) {
	p.switchTo([]string{name})
}

// Current returns the visible page, or "" before the first Push or Reset.
func (p *Pages) Current() string {
	if len(p.history) == 0 {
		return ""
	}
	return p.history[len(p.history)-1]
}

// Stack returns the history, root first.
func (p *Pages) Stack() []string {
	return slices.Clone(p.history)
}

func (p *Pages) switchTo(history []string) {
	p.history = history
	p.SwitchToPage(p.Current())
	if p.onChange != nil {
		p.onChange(p.Stack())
	}
}
