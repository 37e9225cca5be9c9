package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// PromptMode selects what the input bar is used for.
type PromptMode int

const (
	PromptCommand PromptMode = iota
	PromptFilter
)

type promptLook struct {
	label string
	title string
	// allowEmpty submits an empty line, which for the filter means "show all".
	allowEmpty bool
}

var promptLooks = map[PromptMode]promptLook{
	PromptCommand: {label: ":", title: " Command "},
	PromptFilter:  {label: "/", title: " Search or start new chat ", allowEmpty: true},
}

const historySize = 20

// Prompt is the one-line input bar shared by ":" commands and "/" search.
// Every edit is reported, so the conversation list narrows while typing.
// Up and Down walk through earlier commands.
type Prompt struct {
	*tview.InputField
	mode PromptMode

	history []string
	cursor  int

	onSubmit func(PromptMode, string)
	onChange func(PromptMode, string)
	onCancel func()
}

func NewPrompt(theme *Theme) *Prompt {
	p := &Prompt{InputField: tview.NewInputField()}
	p.SetBorder(true).
		SetBorderColor(theme.PromptBorderColor).
		SetBackgroundColor(theme.BgColor)
	p.SetFieldBackgroundColor(theme.BgColor).
		SetFieldTextColor(theme.FgColor).
		SetLabelColor(theme.MenuKeyColor)

	p.SetChangedFunc(func(text string) {
		if p.onChange != nil {
			p.onChange(p.mode, text)
		}
	})
	p.SetDoneFunc(p.done)
	p.SetInputCapture(p.recall)
	return p
}

func (p *Prompt) done(key tcell.Key) {
	switch key {
	case tcell.KeyEnter:
		text := p.GetText()
		if text == "" && !promptLooks[p.mode].allowEmpty {
			return
		}
		if p.mode == PromptCommand {
			p.remember(text)
		}
		if p.onSubmit != nil {
			p.onSubmit(p.mode, text)
		}
	case tcell.KeyEscape:
		if p.onCancel != nil {
			p.onCancel()
		}
	}
}

func (p *Prompt) recall(ev *tcell.EventKey) *tcell.EventKey {
	if p.mode != PromptCommand || len(p.history) == 0 {
		return ev
	}
	switch ev.Key() {
	case tcell.KeyUp:
		p.cursor = max(p.cursor-1, 0)
	case tcell.KeyDown:
		p.cursor = min(p.cursor+1, len(p.history))
	default:
		return ev
	}
	if p.cursor == len(p.history) {
		p.SetText("")
	} else {
		p.SetText(p.history[p.cursor])
	}
	return nil
}

func (p *Prompt) remember(cmd string) {
	if n := len(p.history); n == 0 || p.history[n-1] != cmd {
		p.history = append(p.history, cmd)
	}
	if len(p.history) > historySize {
		p.history = p.history[len(p.history)-historySize:]
	}
}

func (p *Prompt) SetOnSubmit(fn func(mode PromptMode, text string)) { p.onSubmit = fn }

func (p *Prompt) SetOnChange(fn func(mode PromptMode, text string)) { p.onChange = fn }

func (p *Prompt) SetOnCancel(fn func()) { p.onCancel = fn }

// Activate switches the bar to mode with text already typed in.
func (p *Prompt) Activate(mode PromptMode, text string) {
	look := promptLooks[mode]
	p.mode = mode
	p.cursor = len(p.history)
	p.SetLabel(look.label)
	p.SetTitle(look.title)
	p.SetText(text)
}

func (p *Prompt) Mode() PromptMode { return p.mode }
