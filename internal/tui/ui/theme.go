package ui

import "github.com/gdamore/tcell/v2"

// Theme is the palette every widget draws with.
type Theme struct {
	// Chrome.
	BgColor           tcell.Color
	FgColor           tcell.Color
	BorderColor       tcell.Color
	BorderFocusColor  tcell.Color
	TitleColor        tcell.Color
	CounterColor      tcell.Color
	PromptBorderColor tcell.Color

	// Conversation list.
	TableHeaderFg tcell.Color
	TableHeaderBg tcell.Color
	TableCursorFg tcell.Color
	TableCursorBg tcell.Color
	BadgeFg       tcell.Color
	BadgeBg       tcell.Color

	// Breadcrumbs and key hints.
	CrumbActiveFg   tcell.Color
	CrumbActiveBg   tcell.Color
	CrumbInactiveFg tcell.Color
	CrumbInactiveBg tcell.Color
	MenuKeyColor    tcell.Color
	NumericKeyColor tcell.Color

	// Feedback line.
	FlashInfoColor tcell.Color
	FlashWarnColor tcell.Color
	FlashErrColor  tcell.Color

	// Conversation view.
	OutgoingColor  tcell.Color
	IncomingColor  tcell.Color
	ReadMarkColor  tcell.Color
	MetaColor      tcell.Color
	SeparatorColor tcell.Color

	// Event channel indicator.
	OnlineColor  tcell.Color
	OfflineColor tcell.Color
}

// DefaultTheme follows the WhatsApp dark palette: teal chrome, green
// outgoing bubbles and blue read marks.
func DefaultTheme() *Theme {
	teal := tcell.NewHexColor(0x00a884)
	panel := tcell.NewHexColor(0x202c33)
	text := tcell.NewHexColor(0xe9edef)
	muted := tcell.NewHexColor(0x8696a0)

	return &Theme{
		BgColor:           tcell.ColorDefault,
		FgColor:           text,
		BorderColor:       panel,
		BorderFocusColor:  teal,
		TitleColor:        text,
		CounterColor:      muted,
		PromptBorderColor: teal,

		TableHeaderFg: muted,
		TableHeaderBg: tcell.ColorDefault,
		TableCursorFg: text,
		TableCursorBg: tcell.NewHexColor(0x2a3942),
		BadgeFg:       tcell.NewHexColor(0x111b21),
		BadgeBg:       teal,

		CrumbActiveFg:   tcell.NewHexColor(0x111b21),
		CrumbActiveBg:   teal,
		CrumbInactiveFg: text,
		CrumbInactiveBg: panel,
		MenuKeyColor:    teal,
		NumericKeyColor: tcell.NewHexColor(0x53bdeb),

		FlashInfoColor: text,
		FlashWarnColor: tcell.NewHexColor(0xffd279),
		FlashErrColor:  tcell.NewHexColor(0xf15c6d),

		OutgoingColor:  tcell.NewHexColor(0x25d366),
		IncomingColor:  text,
		ReadMarkColor:  tcell.NewHexColor(0x53bdeb),
		MetaColor:      muted,
		SeparatorColor: muted,

		OnlineColor:  teal,
		OfflineColor: tcell.NewHexColor(0xf15c6d),
	}
}

// ColorName returns the tview style tag for c.
func ColorName(c tcell.Color) string {
	return colorName(c)
}
